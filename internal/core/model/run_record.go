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
// This file, `run_record.go`, contains the persistent ledger row written for
// every daily run. Rows are appended to BigQuery when a ledger table is
// configured, giving operators a history of which pair went out on which day.
package model

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunRecord is a single row of the run ledger.
type RunRecord struct {
	RunId       string    `json:"run_id" bigquery:"run_id"`             // Unique identifier of the run.
	Day         int       `json:"day" bigquery:"day"`                   // Human-facing day number.
	PairIndex   int       `json:"pair_index" bigquery:"pair_index"`     // Pool position that was consumed.
	PoolSize    int       `json:"pool_size" bigquery:"pool_size"`       // N at selection time.
	Remaining   int       `json:"remaining" bigquery:"remaining"`       // Pairs left after this run.
	ShuffleSeed int64     `json:"shuffle_seed" bigquery:"shuffle_seed"` // Seed of the permutation in use.
	Image       string    `json:"image" bigquery:"image"`               // Base name of the image file.
	Audio       string    `json:"audio" bigquery:"audio"`               // Base name of the audio file.
	ObjectKey   string    `json:"object_key" bigquery:"object_key"`     // Key of the published reel, if any.
	Caption     string    `json:"caption" bigquery:"caption"`           // Caption text sent to the operator.
	CaptionFrom string    `json:"caption_from" bigquery:"caption_from"` // Generator name or "fallback".
	CreateDate  time.Time `json:"create_date" bigquery:"create_date"`   // When the row was created.
}

// NewRunRecord builds a ledger row from a selection. The run id is a UUIDv5 of
// the seed and day so re-inserting the same run produces the same id.
//
// Inputs:
//   - sel: The selection made by the run.
//
// Outputs:
//   - *RunRecord: A row with identifiers and selection fields populated.
func NewRunRecord(sel *Selection) *RunRecord {
	return &RunRecord{
		RunId:       RunId(sel.Seed, sel.Day).String(),
		Day:         sel.Day,
		PairIndex:   sel.PairIndex,
		PoolSize:    sel.PoolSize,
		Remaining:   sel.Remaining,
		ShuffleSeed: sel.Seed,
		Image:       filepath.Base(sel.Image),
		Audio:       filepath.Base(sel.Audio),
		CreateDate:  time.Now(),
	}
}

// RunId derives the deterministic identifier of the run that consumed a given
// day of the series started with seed.
func RunId(seed int64, day int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("seed-%d/day-%d", seed, day)))
}

// ReelPublishedEvent names the event announced after a reel is published.
const ReelPublishedEvent = "reel.published"

// ReelPublished is the message announced on the events topic.
type ReelPublished struct {
	RunId     string    `json:"run_id"`
	Day       int       `json:"day"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	Remaining int       `json:"remaining"`
	Published time.Time `json:"published"`
}

// NewReelPublished builds the event for a run.
func NewReelPublished(sel *Selection, reel *PublishedReel, caption string) ReelPublished {
	return ReelPublished{
		RunId:     RunId(sel.Seed, sel.Day).String(),
		Day:       sel.Day,
		Bucket:    reel.Bucket,
		Key:       reel.Key,
		URL:       reel.URL,
		Caption:   caption,
		Remaining: sel.Remaining,
		Published: time.Now().UTC(),
	}
}
