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
	"log/slog"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
)

// LowStockAlert warns the operator when few unused pairs remain. It is
// optional: a failed alert never blocks the day's reel.
type LowStockAlert struct {
	cor.BaseCommand
	notifier  notify.Notifier
	threshold int
	imagesDir string
	audioDir  string
}

// NewLowStockAlert creates the alert command.
//
// Inputs:
//   - name: Command name.
//   - notifier: Delivers the alert.
//   - threshold: Alert when remaining <= threshold.
//   - imagesDir, audioDir: Shown in the alert as the upload locations.
//
// Outputs:
//   - *LowStockAlert: The optional command.
func NewLowStockAlert(name string, notifier notify.Notifier, threshold int, imagesDir string, audioDir string) *LowStockAlert {
	return &LowStockAlert{
		BaseCommand: *cor.NewOptionalCommand(name),
		notifier:    notifier,
		threshold:   threshold,
		imagesDir:   imagesDir,
		audioDir:    audioDir,
	}
}

func (c *LowStockAlert) IsExecutable(context cor.Context) bool {
	return hasAll(context, ParamSelection)
}

func (c *LowStockAlert) Execute(context cor.Context) {
	sel := GetSelection(context)
	if !sel.IsLowStock(c.threshold) {
		c.Succeed(context)
		return
	}
	slog.WarnContext(context.GetContext(), "content running low", "remaining", sel.Remaining, "threshold", c.threshold)
	err := c.notifier.LowStock(context.GetContext(), notify.LowStockMessage{
		Remaining: sel.Remaining,
		ImagesDir: c.imagesDir,
		AudioDir:  c.audioDir,
	})
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context)
}
