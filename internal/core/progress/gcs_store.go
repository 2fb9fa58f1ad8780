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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// GCSStore keeps the record in a Cloud Storage object. Scheduled runners are
// often ephemeral, so a bucket outlives the local disk. An object becomes
// visible only when its writer closes successfully, which gives the same
// all-or-nothing save as the file store's rename.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSStore returns a store backed by gs://bucket/object.
func NewGCSStore(client *storage.Client, bucket string, object string) *GCSStore {
	if object == "" {
		object = DefaultFileName
	}
	return &GCSStore{client: client, bucket: bucket, object: object}
}

// Load reads the object. A missing or corrupt object yields the default
// record. Transport errors are returned: treating an unreachable bucket as
// "no progress" would restart the series and overwrite real state.
func (s *GCSStore) Load(ctx context.Context) (model.Progress, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return model.NewProgress(), nil
	}
	if err != nil {
		return model.Progress{}, fmt.Errorf("failed to open gs://%s/%s: %w", s.bucket, s.object, err)
	}
	defer func(reader *storage.Reader) {
		_ = reader.Close()
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return model.Progress{}, fmt.Errorf("failed to read gs://%s/%s: %w", s.bucket, s.object, err)
	}
	p, ok := Decode(data)
	if !ok {
		slog.WarnContext(ctx, "progress object corrupt, starting over", "bucket", s.bucket, "object", s.object)
	}
	return p, nil
}

// Save overwrites the object with the encoded record.
func (s *GCSStore) Save(ctx context.Context, p model.Progress) error {
	data, err := Encode(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	writer := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", s.bucket, s.object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return nil
}
