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

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DateLayout is the date format embedded in reel keys.
const DateLayout = "2006-01-02"

// ReelExtension is the extension of reel keys.
const ReelExtension = ".mp4"

// ReelKey returns the key of the reel rendered on day, e.g.
// "reel_2025-01-31.mp4".
func ReelKey(prefix string, day time.Time) string {
	return prefix + day.Format(DateLayout) + ReelExtension
}

// ParseReelDate extracts the date from a key produced by ReelKey. Keys that
// do not match report false.
func ParseReelDate(prefix string, key string) (time.Time, bool) {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, ReelExtension) {
		return time.Time{}, false
	}
	d := strings.TrimSuffix(strings.TrimPrefix(key, prefix), ReelExtension)
	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Cutoff returns the first date that is kept when keeping days of reels
// before today.
func Cutoff(today time.Time, days int) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
}

// Expired returns the keys whose embedded date is strictly before the cutoff.
// Keys without a parseable date are never returned.
func Expired(prefix string, keys []string, today time.Time, days int) []string {
	cutoff := Cutoff(today, days)
	var out []string
	for _, key := range keys {
		t, ok := ParseReelDate(prefix, key)
		if !ok {
			continue
		}
		if t.Before(cutoff) {
			out = append(out, key)
		}
	}
	return out
}

// Cleanup deletes reels older than days. Individual delete failures do not
// stop the sweep; they are joined into the returned error.
//
// Inputs:
//   - ctx: Cancels listing and deletion.
//   - store: The bucket to sweep.
//   - prefix: The reel key prefix.
//   - today: The run date.
//   - days: How many days of reels to keep.
//
// Outputs:
//   - []string: The deleted keys.
//   - error: Listing failure or joined delete failures.
func Cleanup(ctx context.Context, store Store, prefix string, today time.Time, days int) ([]string, error) {
	if days <= 0 {
		return nil, nil
	}
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", store.Bucket(), err)
	}
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}

	var deleted []string
	var errs []error
	for _, key := range Expired(prefix, keys, today, days) {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
			continue
		}
		deleted = append(deleted, key)
	}
	slog.InfoContext(ctx, "retention cleanup finished", "bucket", store.Bucket(), "deleted", len(deleted), "failed", len(errs))
	return deleted, errors.Join(errs...)
}
