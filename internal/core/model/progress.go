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
// This file, `progress.go`, contains the persisted progress record that makes
// pair selection reproducible across runs of a stateless process.
//
// The record is intentionally tiny. It holds the next unconsumed position in
// the shuffled pool and the seed that fixes the shuffle order. The JSON form
// matches the `.history.json` file written by earlier versions of the
// automation, so existing deployments keep their position when upgraded:
//
//	{ "index": 3, "shuffle_seed": 421337 }
package model

// Seed bounds. A seed is drawn once from this closed range on the first
// selection and never changes until an explicit reset.
const (
	MinShuffleSeed int64 = 1
	MaxShuffleSeed int64 = 999_999
)

// Progress is the persisted state of a series. A nil ShuffleSeed means the
// record is uninitialized and will be seeded on the next selection.
type Progress struct {
	Index       int    `json:"index"`               // Next unconsumed position in the shuffled pool, in [0, N].
	ShuffleSeed *int64 `json:"shuffle_seed"`        // Seed of the pool permutation; null until the first selection.
	PoolSize    int    `json:"pool_size,omitempty"` // N observed at the last selection. Diagnostic only.
}

// NewProgress returns the default record: index 0 and no seed. It is used for
// the first run, after a reset, and whenever persisted state is unreadable.
//
// Outputs:
//   - Progress: The uninitialized progress record.
func NewProgress() Progress {
	return Progress{Index: 0, ShuffleSeed: nil}
}

// IsSeeded reports whether a shuffle seed has been assigned.
func (p Progress) IsSeeded() bool {
	return p.ShuffleSeed != nil
}

// Seed returns the shuffle seed, or 0 when the record is unseeded.
func (p Progress) Seed() int64 {
	if p.ShuffleSeed == nil {
		return 0
	}
	return *p.ShuffleSeed
}

// WithSeed returns a copy of the record carrying the given seed. The pointer is
// freshly allocated so copies never alias each other's seed.
//
// Inputs:
//   - seed: The shuffle seed to assign.
//
// Outputs:
//   - Progress: A copy of p with ShuffleSeed set.
func (p Progress) WithSeed(seed int64) Progress {
	s := seed
	p.ShuffleSeed = &s
	return p
}

// Remaining returns how many pairs are left in a pool of size n, never
// negative.
func (p Progress) Remaining(n int) int {
	if r := n - p.Index; r > 0 {
		return r
	}
	return 0
}

// IsExhausted reports whether every pair of a pool of size n has been used.
func (p Progress) IsExhausted(n int) bool {
	return p.Index >= n
}

// ValidSeed reports whether seed lies in the accepted seed range.
func ValidSeed(seed int64) bool {
	return seed >= MinShuffleSeed && seed <= MaxShuffleSeed
}
