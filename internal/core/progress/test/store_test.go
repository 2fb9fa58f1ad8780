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

// Package progress_test covers the progress stores: default record on missing
// or corrupt state, exact round trips and atomic overwrite.
package progress_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
)

func TestMissingFileYieldsDefault(t *testing.T) {
	store := progress.NewFileStore(filepath.Join(t.TempDir(), ".history.json"))
	p, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NewProgress(), p)
	assert.Nil(t, p.ShuffleSeed)
}

func TestCorruptFileYieldsDefault(t *testing.T) {
	for name, content := range map[string]string{
		"truncated":     `{"index": 3, "shuffle_se`,
		"not json":      "index=3\n",
		"empty":         "",
		"wrong types":   `{"index": "three", "shuffle_seed": 42}`,
		"negative":      `{"index": -1, "shuffle_seed": 42}`,
		"seed too big":  `{"index": 1, "shuffle_seed": 1000000}`,
		"seed is zero":  `{"index": 1, "shuffle_seed": 0}`,
		"json array":    `[1, 2]`,
		"binary":        "\x00\xff\xfe",
		"whitespace":    "  \n\t",
		"trailing junk": `{"index": 1, "shuffle_seed": 42} extra`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".history.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			p, err := progress.NewFileStore(path).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, p.Index)
			assert.False(t, p.IsSeeded())
		})
	}
}

func TestUnreadableFileYieldsDefault(t *testing.T) {
	// A directory where the file should be cannot be read as a file.
	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.Mkdir(path, 0o755))

	p, err := progress.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NewProgress(), p)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", ".history.json")
	store := progress.NewFileStore(path)

	for _, want := range []model.Progress{
		model.NewProgress(),
		model.NewProgress().WithSeed(1),
		{Index: 12, PoolSize: 40},
		model.Progress{Index: 365, PoolSize: 365}.WithSeed(999_999),
	} {
		require.NoError(t, store.Save(ctx, want))
		got, err := progress.NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReadsLegacyHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".history.json")
	legacy := "{\n  \"index\": 7,\n  \"shuffle_seed\": 583920\n}"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	p, err := progress.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, p.Index)
	assert.Equal(t, int64(583920), p.Seed())
	assert.Equal(t, 0, p.PoolSize)
}

func TestEncodeWritesNullSeed(t *testing.T) {
	data, err := progress.Encode(model.NewProgress())
	require.NoError(t, err)
	assert.JSONEq(t, `{"index": 0, "shuffle_seed": null}`, string(data))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := progress.NewFileStore(filepath.Join(dir, ".history.json"))

	for i := range 10 {
		require.NoError(t, store.Save(ctx, model.Progress{Index: i}.WithSeed(5)))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".history.json", entries[0].Name())
}

func TestSaveIntoNewDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state", "reels")
	path := filepath.Join(dir, ".history.json")

	require.NoError(t, progress.NewFileStore(path).Save(ctx, model.Progress{Index: 7}.WithSeed(11)))

	p, err := progress.NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Index)
	assert.Equal(t, int64(11), p.Seed())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveFailsWhenDirectoryIsAFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))

	err := progress.NewFileStore(filepath.Join(parent, ".history.json")).Save(context.Background(), model.NewProgress())
	assert.Error(t, err)
}

func TestResetOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".history.json")
	store := progress.NewFileStore(path)
	require.NoError(t, store.Save(ctx, model.Progress{Index: 9, PoolSize: 20}.WithSeed(123)))

	require.NoError(t, progress.Reset(ctx, store))

	p, err := progress.NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Index)
	assert.False(t, p.IsSeeded())
}

func TestMemoryStoreCorruptRaw(t *testing.T) {
	store := progress.NewMemoryStore()
	store.SetRaw([]byte("{oops"))
	p, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NewProgress(), p)
}
