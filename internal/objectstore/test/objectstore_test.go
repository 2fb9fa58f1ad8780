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

package objectstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
	'a', 'v', 'c', '1', 'm', 'p', '4', '1',
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func day(s string) time.Time {
	t, err := time.Parse(objectstore.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestReelKeyRoundTrip(t *testing.T) {
	key := objectstore.ReelKey("reel_", day("2025-01-31"))
	assert.Equal(t, "reel_2025-01-31.mp4", key)

	got, ok := objectstore.ParseReelDate("reel_", key)
	require.True(t, ok)
	assert.Equal(t, day("2025-01-31"), got)
}

func TestParseReelDateRejects(t *testing.T) {
	for _, key := range []string{
		"reel_latest.mp4",
		"reel_2025-13-01.mp4",
		"reel_2025-01-31.mov",
		"clip_2025-01-31.mp4",
		"reel_.mp4",
	} {
		_, ok := objectstore.ParseReelDate("reel_", key)
		assert.False(t, ok, key)
	}
}

func TestExpired(t *testing.T) {
	keys := []string{
		"reel_2025-01-01.mp4", // 45 days old
		"reel_2025-01-15.mp4", // 31 days old
		"reel_2025-01-16.mp4", // exactly on the cutoff, kept
		"reel_2025-02-14.mp4",
		"reel_broken.mp4",
		"notes.txt",
	}
	got := objectstore.Expired("reel_", keys, day("2025-02-15"), 30)
	assert.Equal(t, []string{"reel_2025-01-01.mp4", "reel_2025-01-15.mp4"}, got)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("ig-reels")
	store.PutBytes("reel_2024-12-01.mp4", []byte("old"))
	store.PutBytes("reel_2025-02-10.mp4", []byte("new"))
	store.PutBytes("reel_garbage.mp4", []byte("?"))

	deleted, err := objectstore.Cleanup(ctx, store, "reel_", day("2025-02-15"), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"reel_2024-12-01.mp4"}, deleted)
	assert.Equal(t, []string{"reel_2025-02-10.mp4", "reel_garbage.mp4"}, store.Keys())
}

func TestCleanupDisabled(t *testing.T) {
	store := objectstore.NewMemoryStore("ig-reels")
	store.PutBytes("reel_2000-01-01.mp4", []byte("old"))

	deleted, err := objectstore.Cleanup(context.Background(), store, "reel_", day("2025-02-15"), 0)
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Len(t, store.Keys(), 1)
}

type failingDeletes struct {
	*objectstore.MemoryStore
}

func (f failingDeletes) Delete(_ context.Context, key string) error {
	return errors.New("permission denied")
}

func TestCleanupJoinsDeleteErrors(t *testing.T) {
	store := failingDeletes{objectstore.NewMemoryStore("ig-reels")}
	store.PutBytes("reel_2000-01-01.mp4", []byte("a"))
	store.PutBytes("reel_2000-01-02.mp4", []byte("b"))

	deleted, err := objectstore.Cleanup(context.Background(), store, "reel_", day("2025-02-15"), 30)
	require.Error(t, err)
	assert.Empty(t, deleted)
	assert.Contains(t, err.Error(), "reel_2000-01-01.mp4")
	assert.Contains(t, err.Error(), "reel_2000-01-02.mp4")
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", objectstore.DetectContentType(writeFile(t, "a.mp4", mp4Header)))
	assert.Equal(t, objectstore.DefaultContentType, objectstore.DetectContentType(writeFile(t, "b.mp4", []byte("not a video"))))
	assert.Equal(t, objectstore.DefaultContentType, objectstore.DetectContentType(filepath.Join(t.TempDir(), "missing.mp4")))
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("ig-reels")
	path := writeFile(t, "reel_2025-02-15.mp4", mp4Header)

	reel, err := objectstore.Publish(ctx, store, path, "reel_2025-02-15.mp4", 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "ig-reels", reel.Bucket)
	assert.Equal(t, "reel_2025-02-15.mp4", reel.Key)
	assert.Equal(t, "video/mp4", reel.ContentType)
	assert.Equal(t, int64(len(mp4Header)), reel.Size)
	assert.True(t, strings.HasPrefix(reel.URL, "memory://ig-reels/reel_2025-02-15.mp4?"))
	assert.Contains(t, reel.URL, "attachment")
	assert.Equal(t, "video/mp4", store.ContentType("reel_2025-02-15.mp4"))
}

func TestPublishMissingFile(t *testing.T) {
	store := objectstore.NewMemoryStore("ig-reels")
	_, err := objectstore.Publish(context.Background(), store, filepath.Join(t.TempDir(), "nope.mp4"), "k.mp4", time.Hour)
	require.Error(t, err)
	assert.Empty(t, store.Keys())
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, `attachment; filename="reel_2025-02-15.mp4"`, objectstore.Attachment("reels/reel_2025-02-15.mp4"))
}
