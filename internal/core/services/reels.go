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

// Package services. This file defines ReelService, which lists published reels
// and signs fresh download links for them, e.g. when the emailed link has
// expired.
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// Reel is a published reel found in the bucket.
type Reel struct {
	Key  string    `json:"key"`
	Date time.Time `json:"date"`
	Size int64     `json:"size"`
}

// ReelService reads the reel bucket.
type ReelService struct {
	Store        objectstore.Store
	ObjectPrefix string
	SignedURLTTL time.Duration
}

// List returns the reels in the bucket, newest first. Objects whose keys do
// not carry a date are skipped.
func (s *ReelService) List(ctx context.Context) ([]Reel, error) {
	objects, err := s.Store.List(ctx, s.ObjectPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Reel, 0, len(objects))
	for _, o := range objects {
		d, ok := objectstore.ParseReelDate(s.ObjectPrefix, o.Key)
		if !ok {
			continue
		}
		out = append(out, Reel{Key: o.Key, Date: d, Size: o.Size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// GenerateSignedURL returns a download link for the reel of date.
//
// Inputs:
//   - ctx: The context for the request.
//   - date: The run date, YYYY-MM-DD.
//
// Outputs:
//   - string: The signed URL.
//   - error: The date is invalid or signing failed.
func (s *ReelService) GenerateSignedURL(ctx context.Context, date string) (string, error) {
	d, err := time.Parse(objectstore.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	key := objectstore.ReelKey(s.ObjectPrefix, d)
	return s.Store.SignedURL(ctx, key, objectstore.DefaultContentType, s.SignedURLTTL)
}
