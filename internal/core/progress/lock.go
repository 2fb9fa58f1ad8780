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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the progress lock.
var ErrLocked = errors.New("progress is locked by another run")

// Lock is an exclusive, non-blocking file lock serializing writers of the
// progress record across processes. Overlapping scheduled runs fail fast
// instead of racing on the record.
type Lock struct {
	f *flock.Flock
}

// NewLock returns a lock on path. The file is created on first use.
func NewLock(path string) *Lock {
	return &Lock{f: flock.New(path)}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.f.Path()
}

// TryLock takes the lock without waiting.
//
// Outputs:
//   - func(): Releases the lock.
//   - error: ErrLocked when held elsewhere, or the underlying failure.
func (l *Lock) TryLock() (func(), error) {
	if dir := filepath.Dir(l.f.Path()); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}
	}
	ok, err := l.f.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", l.f.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, l.f.Path())
	}
	return func() {
		if err := l.f.Unlock(); err != nil {
			slog.Warn("failed to release progress lock", "path", l.f.Path(), "error", err)
		}
	}, nil
}
