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

// Package series implements the pair selector. Given the sorted image and
// audio listings of a pool and the persisted progress record, it decides which
// pair a run consumes so that a fixed pool is used without repetition across
// arbitrarily many runs of a stateless process.
//
// Logic Flow:
//  1. N = min(|images|, |audio|); an empty listing fails with ErrEmptyPool.
//  2. An unseeded record is assigned a random seed in [1, 999999] which is
//     persisted at once and never changes for the life of the pool.
//  3. range(N) is permuted with the seed as the only entropy source.
//  4. index >= N fails with ErrPoolExhausted and leaves the record untouched.
//  5. day = index + 1; pair = permutation[index].
//  6. The advanced record (index + 1) is persisted before the selection is
//     returned, so a crash in a later step never reuses a pair.
package series

import "math/rand/v2"

// permutationStream is the PCG stream selector. It is part of the permutation
// definition: changing it reorders every existing series.
const permutationStream uint64 = 0x5eed_da11_7ee1_5000

// Permute returns a permutation of 0..n-1 determined solely by seed. The
// shuffle is Fisher–Yates driven by a PCG generator with unbiased bounded
// draws, so the result is identical on every host and Go release.
//
// Inputs:
//   - n: The pool size. n <= 0 yields an empty slice.
//   - seed: The shuffle seed from the progress record.
//
// Outputs:
//   - []int: A bijection on {0, ..., n-1}.
func Permute(n int, seed int64) []int {
	if n <= 0 {
		return []int{}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	src := rand.NewPCG(uint64(seed), permutationStream)
	for i := n - 1; i > 0; i-- {
		j := int(bounded(src, uint64(i+1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// bounded draws uniformly from [0, bound) by rejecting the low values that
// would bias a plain modulo.
func bounded(src *rand.PCG, bound uint64) uint64 {
	threshold := -bound % bound
	for {
		if v := src.Uint64(); v >= threshold {
			return v % bound
		}
	}
}
