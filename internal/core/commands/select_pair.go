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

// Package commands. This file defines the command that picks the day's pair.
//
// Logic Flow:
//  1. Scan the image and audio directories into sorted listings.
//  2. Ask the selector for the next pair; the selector persists the advanced
//     progress record before returning.
//  3. Store the selection on the context for the rest of the run.
//
// An empty or exhausted pool fails the command, which stops the run before
// anything is rendered.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/pool"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
)

// SelectPair selects the next unused pair.
type SelectPair struct {
	cor.BaseCommand
	scanner  *pool.Scanner
	selector *series.Selector
}

// NewSelectPair creates the selection command.
//
// Inputs:
//   - name: Command name.
//   - scanner: Lists the pool directories.
//   - selector: Chooses and persists the pair.
//
// Outputs:
//   - *SelectPair: The command.
func NewSelectPair(name string, scanner *pool.Scanner, selector *series.Selector) *SelectPair {
	out := &SelectPair{BaseCommand: *cor.NewBaseCommand(name), scanner: scanner, selector: selector}
	out.OutputParamName = ParamSelection
	return out
}

func (c *SelectPair) IsExecutable(context cor.Context) bool {
	return hasAll(context)
}

func (c *SelectPair) Execute(context cor.Context) {
	p, err := c.scanner.Scan()
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to scan pool: %w", err))
		return
	}
	sel, err := c.selector.Next(context.GetContext(), p.Images, p.Audio)
	if err != nil {
		c.Fail(context, err)
		return
	}
	context.Add(c.GetOutputParam(), sel)
	c.Succeed(context)
}
