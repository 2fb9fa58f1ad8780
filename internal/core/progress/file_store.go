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
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// DefaultFileName is the progress file name used when none is configured.
const DefaultFileName = ".history.json"

// FileStore keeps the record in a JSON file on the local disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. A missing, unreadable or corrupt file yields the
// default record and a nil error; the latter two are logged as warnings.
func (s *FileStore) Load(ctx context.Context) (model.Progress, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewProgress(), nil
	}
	if err != nil {
		slog.WarnContext(ctx, "progress file unreadable, starting over", "path", s.path, "error", err)
		return model.NewProgress(), nil
	}
	p, ok := Decode(data)
	if !ok {
		slog.WarnContext(ctx, "progress file corrupt, starting over", "path", s.path)
	}
	return p, nil
}

// Save writes the record to a temporary file in the same directory, syncs it
// and renames it over the target, so a reader sees either the old or the new
// record and never a partial one. The directory is synced after the rename so
// the new entry survives a power loss.
func (s *FileStore) Save(_ context.Context, p model.Progress) error {
	data, err := Encode(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create progress dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp progress file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close progress: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("failed to sync progress dir %s: %w", dir, err)
	}
	return nil
}

// syncDir flushes the directory entry of a rename. Windows cannot fsync a
// directory handle.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}
