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
	"context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
)

// Pick is the pure part of a selection. It maps a seeded record onto the pool
// and returns the selection together with the advanced record. Nothing is
// persisted and p is not modified.
//
// Inputs:
//   - images: Sorted image paths.
//   - audio: Sorted audio paths.
//   - p: A seeded progress record.
//
// Outputs:
//   - *model.Selection: The chosen pair and its bookkeeping.
//   - model.Progress: p with Index advanced by one.
//   - error: ErrEmptyPool, ErrUnseeded or ErrPoolExhausted.
func Pick(images []string, audio []string, p model.Progress) (*model.Selection, model.Progress, error) {
	n := min(len(images), len(audio))
	if n == 0 {
		return nil, p, ErrEmptyPool
	}
	if !p.IsSeeded() {
		return nil, p, ErrUnseeded
	}
	i := p.Index
	if p.IsExhausted(n) {
		return nil, p, fmt.Errorf("%w: %d of %d pairs used, add more images/audio or reset progress", ErrPoolExhausted, i, n)
	}

	pair := Permute(n, p.Seed())[i]

	next := p.WithSeed(p.Seed())
	next.Index = i + 1
	next.PoolSize = n

	return &model.Selection{
		Image:     images[pair],
		Audio:     audio[pair],
		PairIndex: pair,
		Day:       i + 1,
		PoolSize:  n,
		Remaining: next.Remaining(n),
		Seed:      p.Seed(),
	}, next, nil
}

// Selector runs selections against a progress store.
type Selector struct {
	store progress.Store
	seeds SeedSource
}

// NewSelector returns a selector persisting through store. A nil seed source
// falls back to RandomSeeds.
//
// Inputs:
//   - store: Where the progress record lives.
//   - seeds: Supplies the seed of a new series.
//
// Outputs:
//   - *Selector: The configured selector.
func NewSelector(store progress.Store, seeds SeedSource) *Selector {
	if seeds == nil {
		seeds = RandomSeeds{}
	}
	return &Selector{store: store, seeds: seeds}
}

// Next selects the pair for this run and durably advances the record before
// returning. Empty and exhausted pools fail without touching the record
// (apart from first-time seeding, which is saved as soon as it happens).
//
// Inputs:
//   - ctx: The context for store access.
//   - images: Sorted image paths.
//   - audio: Sorted audio paths.
//
// Outputs:
//   - *model.Selection: The chosen pair.
//   - error: ErrEmptyPool, ErrPoolExhausted, or a store error.
func (s *Selector) Next(ctx context.Context, images []string, audio []string) (*model.Selection, error) {
	n := min(len(images), len(audio))
	if n == 0 {
		return nil, ErrEmptyPool
	}

	p, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	if !p.IsSeeded() {
		seed := s.seeds.NewSeed()
		if !model.ValidSeed(seed) {
			return nil, fmt.Errorf("seed source returned %d, outside [%d, %d]", seed, model.MinShuffleSeed, model.MaxShuffleSeed)
		}
		p = p.WithSeed(seed)
		if err := s.store.Save(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to persist shuffle seed: %w", err)
		}
		slog.InfoContext(ctx, "assigned shuffle seed", "seed", seed, "pool_size", n)
	}

	if p.PoolSize != 0 && p.PoolSize != n {
		slog.WarnContext(ctx, "pool size changed since last run, order of unused pairs may differ",
			"previous", p.PoolSize, "current", n, "index", p.Index)
	}

	sel, next, err := Pick(images, audio, p)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist progress: %w", err)
	}
	slog.InfoContext(ctx, "selected pair",
		"day", sel.Day, "pair_index", sel.PairIndex, "remaining", sel.Remaining,
		"image", sel.Image, "audio", sel.Audio)
	return sel, nil
}

// Reset overwrites the record with the default record. The next selection
// draws a new seed and may produce a different order.
func (s *Selector) Reset(ctx context.Context) error {
	if err := progress.Reset(ctx, s.store); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	slog.InfoContext(ctx, "progress reset to day 1")
	return nil
}

// Peek returns the persisted record without changing it.
func (s *Selector) Peek(ctx context.Context) (model.Progress, error) {
	return s.store.Load(ctx)
}
