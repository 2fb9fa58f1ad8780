// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package series_test covers the pair selector: permutation properties,
// selection order, exhaustion, reset and persistence across simulated process
// restarts.
package series_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
)

var (
	images = []string{"a", "b", "c", "d", "e"}
	audio  = []string{"x", "y", "z", "w", "v"}
)

// failingStore fails every save after the first `allow` saves.
type failingStore struct {
	progress.MemoryStore
	allow int
}

func (f *failingStore) Save(ctx context.Context, p model.Progress) error {
	if f.allow <= 0 {
		return errors.New("disk full")
	}
	f.allow--
	return f.MemoryStore.Save(ctx, p)
}

func TestPermuteIsBijection(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 17, 100, 365} {
		for _, seed := range []int64{1, 42, 1234, 999_999} {
			perm := series.Permute(n, seed)
			require.Len(t, perm, n)

			sorted := append([]int(nil), perm...)
			sort.Ints(sorted)
			for i, v := range sorted {
				assert.Equal(t, i, v, "n=%d seed=%d", n, seed)
			}
		}
	}
}

func TestPermuteIsDeterministic(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 500_000} {
		first := series.Permute(50, seed)
		for range 5 {
			assert.Equal(t, first, series.Permute(50, seed))
		}
	}
}

func TestPermuteDependsOnSeed(t *testing.T) {
	// Two seeds agreeing on a 50-element shuffle would be a broken generator.
	assert.NotEqual(t, series.Permute(50, 1), series.Permute(50, 2))
}

func TestPermuteEmpty(t *testing.T) {
	assert.Empty(t, series.Permute(0, 42))
	assert.Empty(t, series.Permute(-3, 42))
}

func TestFiveSelectionsThenExhausted(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	require.NoError(t, store.Save(ctx, model.NewProgress().WithSeed(42)))
	selector := series.NewSelector(store, series.FixedSeed(7))

	want := map[[2]string]bool{
		{"a", "x"}: true, {"b", "y"}: true, {"c", "z"}: true, {"d", "w"}: true, {"e", "v"}: true,
	}
	seen := make(map[[2]string]bool)
	days := make([]int, 0, 5)

	for range 5 {
		sel, err := selector.Next(ctx, images, audio)
		require.NoError(t, err)
		pair := [2]string{sel.Image, sel.Audio}
		assert.True(t, want[pair], "unexpected pair %v", pair)
		assert.False(t, seen[pair], "pair %v repeated", pair)
		assert.Equal(t, int64(42), sel.Seed)
		seen[pair] = true
		days = append(days, sel.Day)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, days)
	assert.Len(t, seen, 5)

	before, _ := store.Load(ctx)
	saves := store.Saves

	_, err := selector.Next(ctx, images, audio)
	assert.ErrorIs(t, err, series.ErrPoolExhausted)

	after, _ := store.Load(ctx)
	assert.Equal(t, before, after)
	assert.Equal(t, saves, store.Saves)
	assert.Equal(t, 5, after.Index)
}

func TestFullCoverageWithoutRepeats(t *testing.T) {
	ctx := context.Background()
	n := 37
	imgs := make([]string, n)
	auds := make([]string, n+4) // extra audio is ignored
	for i := range imgs {
		imgs[i] = filepath.Join("images", string(rune('A'+i%26)), string(rune('a'+i/26)))
	}
	for i := range auds {
		auds[i] = filepath.Join("audio", string(rune('A'+i%26)), string(rune('a'+i/26)))
	}

	selector := series.NewSelector(progress.NewMemoryStore(), series.FixedSeed(31337))
	indices := make(map[int]bool)
	for i := 0; i < n; i++ {
		sel, err := selector.Next(ctx, imgs, auds)
		require.NoError(t, err)
		assert.False(t, indices[sel.PairIndex])
		assert.Equal(t, imgs[sel.PairIndex], sel.Image)
		assert.Equal(t, auds[sel.PairIndex], sel.Audio)
		assert.Equal(t, n-i-1, sel.Remaining)
		indices[sel.PairIndex] = true
	}
	assert.Len(t, indices, n)

	_, err := selector.Next(ctx, imgs, auds)
	assert.ErrorIs(t, err, series.ErrPoolExhausted)
}

func TestEmptyPool(t *testing.T) {
	ctx := context.Background()
	for name, seeded := range map[string]bool{"unseeded": false, "seeded": true} {
		t.Run(name, func(t *testing.T) {
			store := progress.NewMemoryStore()
			if seeded {
				require.NoError(t, store.Save(ctx, model.Progress{Index: 2}.WithSeed(9)))
			}
			saves := store.Saves
			selector := series.NewSelector(store, series.FixedSeed(1))

			_, err := selector.Next(ctx, nil, audio)
			assert.ErrorIs(t, err, series.ErrEmptyPool)
			_, err = selector.Next(ctx, images, []string{})
			assert.ErrorIs(t, err, series.ErrEmptyPool)
			assert.Equal(t, saves, store.Saves)
		})
	}
}

func TestSelectionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", ".history.json")

	first := series.NewSelector(progress.NewFileStore(path), series.FixedSeed(4242))
	sel, err := first.Next(ctx, images, audio)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Day)

	// A fresh store simulates a new process.
	loaded, err := progress.NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Index)
	require.True(t, loaded.IsSeeded())
	assert.Equal(t, int64(4242), loaded.Seed())

	second := series.NewSelector(progress.NewFileStore(path), series.FixedSeed(1))
	sel2, err := second.Next(ctx, images, audio)
	require.NoError(t, err)
	assert.Equal(t, 2, sel2.Day)
	assert.Equal(t, int64(4242), sel2.Seed)
	assert.NotEqual(t, sel.PairIndex, sel2.PairIndex)

	loaded, err = progress.NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Index)
	assert.Equal(t, int64(4242), loaded.Seed())
}

func TestSeedIsPersistedBeforeSelection(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	selector := series.NewSelector(store, series.FixedSeed(77))

	_, err := selector.Next(ctx, images, audio)
	require.NoError(t, err)
	// One save for the seed, one for the advanced index.
	assert.Equal(t, 2, store.Saves)
}

func TestSeedSavedEvenWhenAdvanceFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{allow: 1}
	selector := series.NewSelector(store, series.FixedSeed(77))

	_, err := selector.Next(ctx, images, audio)
	require.Error(t, err)

	p, _ := store.Load(ctx)
	assert.Equal(t, 0, p.Index)
	assert.Equal(t, int64(77), p.Seed())
}

func TestResetThenReseed(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	selector := series.NewSelector(store, series.FixedSeed(11))

	for range 3 {
		_, err := selector.Next(ctx, images, audio)
		require.NoError(t, err)
	}
	require.NoError(t, selector.Reset(ctx))

	p, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Index)
	assert.False(t, p.IsSeeded())

	reseeded := series.NewSelector(store, series.FixedSeed(12))
	sel, err := reseeded.Next(ctx, images, audio)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Day)
	assert.Equal(t, int64(12), sel.Seed)
}

func TestPickDoesNotMutateInput(t *testing.T) {
	p := model.Progress{Index: 1}.WithSeed(42)
	sel, next, err := series.Pick(images, audio, p)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Index)
	assert.Equal(t, 2, next.Index)
	assert.Equal(t, 5, next.PoolSize)
	assert.Equal(t, 2, sel.Day)
	assert.Equal(t, series.Permute(5, 42)[1], sel.PairIndex)

	*next.ShuffleSeed = 1
	assert.Equal(t, int64(42), p.Seed())
}

func TestPickRejectsUnseeded(t *testing.T) {
	_, _, err := series.Pick(images, audio, model.NewProgress())
	assert.ErrorIs(t, err, series.ErrUnseeded)
}

func TestLowStock(t *testing.T) {
	p := model.Progress{Index: 2}.WithSeed(42)
	sel, _, err := series.Pick(images, audio, p)
	require.NoError(t, err)

	assert.Equal(t, 2, sel.Remaining)
	assert.True(t, sel.IsLowStock(3))
	assert.False(t, sel.IsLowStock(1))
	assert.Equal(t, "Day 3/365", sel.DayLabel(365))
}

func TestRandomSeedsInRange(t *testing.T) {
	var seeds series.RandomSeeds
	for range 1000 {
		assert.True(t, model.ValidSeed(seeds.NewSeed()))
	}
}

func TestRejectsOutOfRangeSeedSource(t *testing.T) {
	selector := series.NewSelector(progress.NewMemoryStore(), series.FixedSeed(0))
	_, err := selector.Next(context.Background(), images, audio)
	assert.Error(t, err)
}
