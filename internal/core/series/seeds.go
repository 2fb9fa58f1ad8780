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

package series

import (
	"math/rand/v2"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// SeedSource supplies the shuffle seed of a new series.
type SeedSource interface {
	NewSeed() int64
}

// RandomSeeds draws seeds uniformly from [1, 999999].
type RandomSeeds struct{}

// NewSeed returns a fresh random seed.
func (RandomSeeds) NewSeed() int64 {
	return model.MinShuffleSeed + rand.Int64N(model.MaxShuffleSeed-model.MinShuffleSeed+1)
}

// FixedSeed always returns the same seed. Used by tests and by operators who
// want to replay a known order.
type FixedSeed int64

// NewSeed returns the fixed value.
func (f FixedSeed) NewSeed() int64 {
	return int64(f)
}
