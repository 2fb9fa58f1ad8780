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

package pool_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/pool"
	test "github.com/jaycherian/gcp-go-daily-reels/internal/testutil"
)

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "c.jpeg", "notes.txt", ".DS_Store", "d.gif"} {
		test.Touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e.jpg"), 0o755))

	got, err := pool.List(dir, pool.DefaultImageExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.jpeg"),
	}, got)
}

func TestListMissingDirectory(t *testing.T) {
	_, err := pool.List(filepath.Join(t.TempDir(), "missing"), pool.DefaultAudioExtensions)
	assert.Error(t, err)
}

func TestScanPoolSize(t *testing.T) {
	p, err := test.NewPool(t, 7, 4).Scan()
	require.NoError(t, err)
	assert.Len(t, p.Images, 7)
	assert.Len(t, p.Audio, 4)
	assert.Equal(t, 4, p.Size())
	assert.Equal(t, "image_00.jpg", filepath.Base(p.Images[0]))
	assert.Equal(t, "audio_03.mp3", filepath.Base(p.Audio[3]))
}

func TestScanEmptyPool(t *testing.T) {
	p, err := test.NewPool(t, 0, 3).Scan()
	require.NoError(t, err)
	assert.Equal(t, 0, p.Size())
}

func TestScanCustomExtensions(t *testing.T) {
	s := test.NewPool(t, 2, 2)
	test.Touch(t, filepath.Join(s.AudioDir, "extra.flac"))
	s.AudioExtensions = []string{".flac"}

	p, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(s.AudioDir, "extra.flac")}, p.Audio)
	assert.Equal(t, 1, p.Size())
}
