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
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
)

// ResetProgress restarts the series at day 1 before the selection runs. The
// next selection draws a new shuffle seed.
type ResetProgress struct {
	cor.BaseCommand
	selector *series.Selector
}

func NewResetProgress(name string, selector *series.Selector) *ResetProgress {
	return &ResetProgress{BaseCommand: *cor.NewBaseCommand(name), selector: selector}
}

func (c *ResetProgress) IsExecutable(context cor.Context) bool {
	return hasAll(context)
}

func (c *ResetProgress) Execute(context cor.Context) {
	if err := c.selector.Reset(context.GetContext()); err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context)
}
