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

// Package services contains the read and maintenance operations shared by the
// CLI and the status API. This file defines SeriesService, which reports where
// the series stands and resets it.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/pool"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
)

// Status is a snapshot of the series.
type Status struct {
	Index            int    `json:"index"`              // Pairs consumed so far.
	NextDay          int    `json:"next_day"`           // Day number the next run will publish; 0 when exhausted.
	Images           int    `json:"images"`             // Images currently in the pool.
	Audio            int    `json:"audio"`              // Audio clips currently in the pool.
	PoolSize         int    `json:"pool_size"`          // min(images, audio).
	RecordedPoolSize int    `json:"recorded_pool_size"` // Pool size seen by the last selection, 0 if unknown.
	Remaining        int    `json:"remaining"`          // Unused pairs.
	Seed             *int64 `json:"shuffle_seed"`       // nil until the first run.
	Exhausted        bool   `json:"exhausted"`          // The next run will fail until content is added or progress reset.
	LowStock         bool   `json:"low_stock"`          // Remaining is at or below the threshold.
	Threshold        int    `json:"low_stock_threshold"`
}

// SeriesService reads and resets the progress record.
type SeriesService struct {
	Selector  *series.Selector
	Scanner   *pool.Scanner
	Lock      *progress.Lock // Optional; guards Reset against a concurrent run.
	Threshold int
}

// Status combines the stored record with a fresh scan of the pool.
//
// Inputs:
//   - ctx: The context for store access.
//
// Outputs:
//   - *Status: The snapshot.
//   - error: The pool or the record could not be read.
func (s *SeriesService) Status(ctx context.Context) (*Status, error) {
	p, err := s.Selector.Peek(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	scanned, err := s.Scanner.Scan()
	if err != nil {
		return nil, err
	}
	n := scanned.Size()
	out := &Status{
		Index:            p.Index,
		Images:           len(scanned.Images),
		Audio:            len(scanned.Audio),
		PoolSize:         n,
		RecordedPoolSize: p.PoolSize,
		Remaining:        p.Remaining(n),
		Seed:             p.ShuffleSeed,
		Exhausted:        p.IsExhausted(n),
		Threshold:        s.Threshold,
	}
	out.LowStock = out.Remaining <= s.Threshold
	if !out.Exhausted {
		out.NextDay = p.Index + 1
	}
	return out, nil
}

// Reset restarts the series at day 1, holding the lock when configured.
func (s *SeriesService) Reset(ctx context.Context) error {
	if s.Lock != nil {
		unlock, err := s.Lock.TryLock()
		if err != nil {
			return err
		}
		defer unlock()
	}
	if err := s.Selector.Reset(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "series reset")
	return nil
}
