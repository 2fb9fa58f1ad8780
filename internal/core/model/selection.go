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

// Package model defines the core data structures for the application.
// This file, `selection.go`, contains the transient structures produced while a
// daily run is executing. They are passed between commands in the chain of
// responsibility and are not persisted in this form.
package model

import "fmt"

// Selection is the outcome of one successful pair selection. It carries the
// chosen files, the human-facing day number and the pool bookkeeping needed by
// downstream commands (low-stock alerting, the run ledger).
type Selection struct {
	Image     string // Path of the selected image.
	Audio     string // Path of the selected audio clip.
	PairIndex int    // Position of the pair in the sorted pool, before shuffling.
	Day       int    // 1-based day number: index before the increment plus one.
	PoolSize  int    // N = min(|images|, |audio|).
	Remaining int    // N minus the advanced index.
	Seed      int64  // Shuffle seed used for this selection.
}

// IsLowStock reports whether the remaining pairs are at or below threshold.
//
// Inputs:
//   - threshold: The low-stock threshold from configuration.
//
// Outputs:
//   - bool: True when the caller should raise a low-stock notification.
func (s *Selection) IsLowStock(threshold int) bool {
	return s.Remaining <= threshold
}

// DayLabel renders the day number against the series length, e.g. "Day 12/365".
func (s *Selection) DayLabel(seriesLength int) string {
	return fmt.Sprintf("Day %d/%d", s.Day, seriesLength)
}

// ReelFormat describes the target frame and codecs of a rendered reel. The
// values are handed to the transcoder unchanged.
type ReelFormat struct {
	Width        int    // Output width in pixels, e.g. 1080.
	Height       int    // Output height in pixels, e.g. 1920.
	VideoCodec   string // e.g. "libx264".
	Preset       string // e.g. "veryfast".
	AudioCodec   string // e.g. "aac".
	AudioBitrate string // e.g. "192k".
}

// DefaultReelFormat returns the vertical 1080x1920 H.264/AAC format used for
// short-form reels.
func DefaultReelFormat() ReelFormat {
	return ReelFormat{
		Width:        1080,
		Height:       1920,
		VideoCodec:   "libx264",
		Preset:       "veryfast",
		AudioCodec:   "aac",
		AudioBitrate: "192k",
	}
}

// PublishedReel is the result of uploading a rendered reel to object storage.
type PublishedReel struct {
	Bucket      string // Destination bucket name.
	Key         string // Object key, e.g. "reel_2025-01-31.mp4".
	ContentType string // MIME type recorded on the object.
	URL         string // Time-limited download URL.
	Size        int64  // Bytes uploaded.
}

// Caption is the outcome of caption generation. When the language model
// cannot be reached Fallback is true, Text holds the caller-supplied fallback
// and Err records why.
type Caption struct {
	Text     string
	Theme    string
	Source   string // Generator that produced Text, or "fallback".
	Fallback bool
	Err      error
}
