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

package progress

import (
	"context"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// MemoryStore holds the encoded record in memory. It round-trips through the
// same codec as the persistent stores, which makes it a faithful stand-in for
// dry runs and tests.
type MemoryStore struct {
	data  []byte
	Saves int // Number of successful saves.
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the held record, or returns the default record.
func (s *MemoryStore) Load(_ context.Context) (model.Progress, error) {
	if s.data == nil {
		return model.NewProgress(), nil
	}
	p, _ := Decode(s.data)
	return p, nil
}

// Save encodes and holds the record.
func (s *MemoryStore) Save(_ context.Context, p model.Progress) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	s.data = data
	s.Saves++
	return nil
}

// SetRaw replaces the held bytes, e.g. to simulate a corrupt record.
func (s *MemoryStore) SetRaw(data []byte) {
	s.data = data
}
