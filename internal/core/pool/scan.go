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

// Package pool lists the source material of a series. A pool is two sorted
// directory listings, images and audio clips, filtered by file extension.
// The listings are recomputed on every run and never persisted; only the
// file names matter, contents are not opened.
package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Default extensions accepted in each directory. Matching is case-insensitive.
var (
	DefaultImageExtensions = []string{".jpg", ".jpeg", ".png"}
	DefaultAudioExtensions = []string{".mp3", ".wav", ".m4a"}
)

// Pool is the pair of sorted listings a selection draws from.
type Pool struct {
	Images []string
	Audio  []string
}

// Size returns N, the number of usable pairs: min(|images|, |audio|).
func (p *Pool) Size() int {
	return min(len(p.Images), len(p.Audio))
}

// Scanner builds a Pool from two directories.
type Scanner struct {
	ImagesDir       string
	AudioDir        string
	ImageExtensions []string
	AudioExtensions []string
}

// Scan lists both directories. A missing directory is an error; an empty one
// is not, the selector reports empty pools itself.
//
// Outputs:
//   - *Pool: The sorted listings.
//   - error: An error if either directory cannot be read.
func (s *Scanner) Scan() (*Pool, error) {
	imageExt := s.ImageExtensions
	if len(imageExt) == 0 {
		imageExt = DefaultImageExtensions
	}
	audioExt := s.AudioExtensions
	if len(audioExt) == 0 {
		audioExt = DefaultAudioExtensions
	}

	images, err := List(s.ImagesDir, imageExt)
	if err != nil {
		return nil, err
	}
	audio, err := List(s.AudioDir, audioExt)
	if err != nil {
		return nil, err
	}
	return &Pool{Images: images, Audio: audio}, nil
}

// List returns the paths of regular files in dir whose lower-cased extension
// is one of extensions, sorted lexicographically. Paths are joined with dir.
//
// Inputs:
//   - dir: The directory to list (not recursive).
//   - extensions: Accepted extensions including the leading dot.
//
// Outputs:
//   - []string: Sorted file paths.
//   - error: An error if the directory cannot be read.
func List(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	accept := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		accept[strings.ToLower(ext)] = struct{}{}
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := accept[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}
