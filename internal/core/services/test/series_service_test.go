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

// Package services_test covers the status, reset and reel listing operations
// used by the CLI and the status API.
package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/services"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
	test "github.com/jaycherian/gcp-go-daily-reels/internal/testutil"
	"github.com/zeebo/assert"
)

func TestStatusOfNewSeries(t *testing.T) {
	svc := &services.SeriesService{
		Selector:  series.NewSelector(progress.NewMemoryStore(), series.FixedSeed(9)),
		Scanner:   test.NewPool(t, 6, 4),
		Threshold: 3,
	}

	status, err := svc.Status(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, status.Index, 0)
	assert.Equal(t, status.NextDay, 1)
	assert.Equal(t, status.Images, 6)
	assert.Equal(t, status.Audio, 4)
	assert.Equal(t, status.PoolSize, 4)
	assert.Equal(t, status.Remaining, 4)
	assert.Nil(t, status.Seed)
	assert.False(t, status.Exhausted)
	assert.False(t, status.LowStock)
}

func TestStatusAfterSelections(t *testing.T) {
	store := progress.NewMemoryStore()
	selector := series.NewSelector(store, series.FixedSeed(9))
	scanner := test.NewPool(t, 3, 3)
	svc := &services.SeriesService{Selector: selector, Scanner: scanner, Threshold: 1}

	p, err := scanner.Scan()
	assert.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := selector.Next(context.Background(), p.Images, p.Audio)
		assert.NoError(t, err)
	}

	status, err := svc.Status(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, status.Index, 3)
	assert.Equal(t, status.NextDay, 0)
	assert.Equal(t, status.Remaining, 0)
	assert.Equal(t, status.RecordedPoolSize, 3)
	assert.NotNil(t, status.Seed)
	assert.Equal(t, *status.Seed, int64(9))
	assert.True(t, status.Exhausted)
	assert.True(t, status.LowStock)
}

func TestReset(t *testing.T) {
	store := progress.NewMemoryStore()
	seed := int64(5)
	assert.NoError(t, store.Save(context.Background(), model.Progress{Index: 2, ShuffleSeed: &seed}))

	lock := progress.NewLock(filepath.Join(t.TempDir(), "reels.lock"))
	svc := &services.SeriesService{Selector: series.NewSelector(store, nil), Scanner: test.NewPool(t, 2, 2), Lock: lock}
	assert.NoError(t, svc.Reset(context.Background()))

	p, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.DeepEqual(t, p, model.NewProgress())
}

func TestResetRefusedWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reels.lock")
	unlock, err := progress.NewLock(path).TryLock()
	assert.NoError(t, err)
	defer unlock()

	svc := &services.SeriesService{
		Selector: series.NewSelector(progress.NewMemoryStore(), nil),
		Scanner:  test.NewPool(t, 1, 1),
		Lock:     progress.NewLock(path),
	}
	assert.Error(t, svc.Reset(context.Background()))
}

func TestReelListAndSign(t *testing.T) {
	store := objectstore.NewMemoryStore("ig-reels")
	store.PutBytes("reel_2025-02-14.mp4", []byte("a"))
	store.PutBytes("reel_2025-02-15.mp4", []byte("bb"))
	store.PutBytes("reel_draft.mp4", []byte("c"))
	svc := &services.ReelService{Store: store, ObjectPrefix: "reel_", SignedURLTTL: time.Hour}

	reels, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, len(reels), 2)
	assert.Equal(t, reels[0].Key, "reel_2025-02-15.mp4")
	assert.Equal(t, reels[0].Size, int64(2))

	url, err := svc.GenerateSignedURL(context.Background(), "2025-02-14")
	assert.NoError(t, err)
	assert.That(t, len(url) > 0)

	_, err = svc.GenerateSignedURL(context.Background(), "2025-02-01")
	assert.Error(t, err)
	_, err = svc.GenerateSignedURL(context.Background(), "yesterday")
	assert.Error(t, err)
}
