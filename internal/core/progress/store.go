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

// Package progress persists the series progress record between runs.
//
// Every store shares one policy: a missing or malformed record is replaced by
// the default record (index 0, no seed) instead of failing the run. Crashing
// the whole automation over a damaged bookkeeping file is worse than starting
// the series over. Saves are full overwrites and must never leave a partial
// record visible to a later Load. Stores assume a single writer; concurrent
// runs against the same record are an operational misuse.
package progress

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// Store loads and saves the progress record.
type Store interface {
	// Load returns the persisted record, or the default record when nothing
	// usable is persisted.
	Load(ctx context.Context) (model.Progress, error)
	// Save overwrites the persisted record.
	Save(ctx context.Context, p model.Progress) error
}

// Encode renders a record as indented JSON terminated by a newline.
func Encode(p model.Progress) ([]byte, error) {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// Decode parses a persisted record. It returns the default record and false
// when data is malformed JSON or carries values no selector could have
// written (a negative index or a seed outside [1, 999999]).
//
// Inputs:
//   - data: The raw persisted bytes.
//
// Outputs:
//   - model.Progress: The decoded record or the default record.
//   - bool: False when the default was substituted for corrupt data.
func Decode(data []byte) (model.Progress, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.NewProgress(), false
	}
	var p model.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return model.NewProgress(), false
	}
	if p.Index < 0 || p.PoolSize < 0 {
		return model.NewProgress(), false
	}
	if p.ShuffleSeed != nil && !model.ValidSeed(*p.ShuffleSeed) {
		return model.NewProgress(), false
	}
	return p, true
}

// Reset unconditionally overwrites the record with the default record,
// discarding the current permutation.
//
// Inputs:
//   - ctx: The context for the save.
//   - store: The store to reset.
//
// Outputs:
//   - error: An error if the save fails.
func Reset(ctx context.Context, store Store) error {
	return store.Save(ctx, model.NewProgress())
}
