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

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
)

// CleanupOutput empties the local output directory once the reel is
// published. Subdirectories are left alone. Optional.
type CleanupOutput struct {
	cor.BaseCommand
	dir string
}

func NewCleanupOutput(name string, dir string) *CleanupOutput {
	return &CleanupOutput{BaseCommand: *cor.NewOptionalCommand(name), dir: dir}
}

func (c *CleanupOutput) IsExecutable(context cor.Context) bool {
	return hasAll(context)
}

func (c *CleanupOutput) Execute(context cor.Context) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		c.Succeed(context)
		return
	}
	if err != nil {
		c.Fail(context, err)
		return
	}
	var errs []error
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	slog.InfoContext(context.GetContext(), "local output cleaned", "dir", c.dir, "removed", removed)
	if len(errs) > 0 {
		c.Fail(context, fmt.Errorf("failed to clean %s: %w", c.dir, errors.Join(errs...)))
		return
	}
	c.Succeed(context)
}
