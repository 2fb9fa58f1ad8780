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
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// RetentionCleanup deletes published reels older than the retention window.
// Optional.
type RetentionCleanup struct {
	cor.BaseCommand
	store  objectstore.Store
	prefix string
	days   int
}

func NewRetentionCleanup(name string, store objectstore.Store, prefix string, days int) *RetentionCleanup {
	return &RetentionCleanup{BaseCommand: *cor.NewOptionalCommand(name), store: store, prefix: prefix, days: days}
}

func (c *RetentionCleanup) IsExecutable(context cor.Context) bool {
	return hasAll(context)
}

func (c *RetentionCleanup) Execute(context cor.Context) {
	if _, err := objectstore.Cleanup(context.GetContext(), c.store, c.prefix, RunDate(context), c.days); err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context)
}
