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

// Package objectstore publishes rendered reels to a bucket and hands out
// time-limited download links. Two backends exist: Google Cloud Storage and
// Cloudflare R2 through its S3-compatible API.
package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// DefaultContentType is used when a file's type cannot be detected.
const DefaultContentType = "video/mp4"

// Object is a listed object.
type Object struct {
	Key     string
	Size    int64
	Updated time.Time
}

// Store is a bucket that reels can be written to, linked, listed and removed
// from.
type Store interface {
	// Bucket returns the bucket name.
	Bucket() string

	// Put uploads the local file at path under key and returns the bytes
	// written.
	Put(ctx context.Context, key string, path string, contentType string) (int64, error)

	// SignedURL returns a GET link to key valid for ttl, served as an
	// attachment named after the key.
	SignedURL(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error)

	// List returns the objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// DetectContentType sniffs the file header. Unknown types map to
// DefaultContentType.
func DetectContentType(path string) string {
	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown || kind.MIME.Value == "" {
		return DefaultContentType
	}
	return kind.MIME.Value
}

// Attachment returns the Content-Disposition that makes browsers download key
// instead of playing it inline.
func Attachment(key string) string {
	return fmt.Sprintf("attachment; filename=%q", filepath.Base(key))
}

// Publish uploads the file at path under key and returns a download link.
//
// Inputs:
//   - ctx: Cancels the upload and signing.
//   - store: The destination.
//   - path: The rendered reel.
//   - key: The object key.
//   - ttl: Link lifetime.
//
// Outputs:
//   - *model.PublishedReel: Where the reel lives and how to fetch it.
//   - error: Any upload or signing failure.
func Publish(ctx context.Context, store Store, path string, key string, ttl time.Duration) (*model.PublishedReel, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reel not found: %w", err)
	}
	contentType := DetectContentType(path)

	size, err := store.Put(ctx, key, path, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to %s: %w", key, store.Bucket(), err)
	}
	url, err := store.SignedURL(ctx, key, contentType, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign url for %s: %w", key, err)
	}
	slog.InfoContext(ctx, "reel published", "bucket", store.Bucket(), "key", key, "bytes", size, "content_type", contentType)

	return &model.PublishedReel{
		Bucket:      store.Bucket(),
		Key:         key,
		ContentType: contentType,
		URL:         url,
		Size:        size,
	}, nil
}
