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
	"github.com/jaycherian/gcp-go-daily-reels/internal/caption"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
)

// NotifyReady sends the "reel ready" message with the download link, the
// caption and the names of the files used. It is the run's deliverable, so a
// failure fails the run.
type NotifyReady struct {
	cor.BaseCommand
	notifier     notify.Notifier
	seriesLength int
	signature    string
}

// NewNotifyReady creates the command. seriesLength and signature shape the
// fallback caption used if no caption was generated.
func NewNotifyReady(name string, notifier notify.Notifier, seriesLength int, signature string) *NotifyReady {
	return &NotifyReady{BaseCommand: *cor.NewBaseCommand(name), notifier: notifier, seriesLength: seriesLength, signature: signature}
}

func (c *NotifyReady) IsExecutable(context cor.Context) bool {
	return hasAll(context, ParamSelection, ParamPublished)
}

func (c *NotifyReady) Execute(context cor.Context) {
	sel := GetSelection(context)
	reel := GetPublished(context)

	text := caption.Fallback(sel.Day, c.seriesLength, c.signature)
	if generated := GetCaption(context); generated != nil {
		text = generated.Text
	}

	err := c.notifier.ReelReady(context.GetContext(), notify.ReadyMessage{
		Day:     sel.Day,
		URL:     reel.URL,
		Caption: text,
		Image:   sel.Image,
		Audio:   sel.Audio,
	})
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context)
}
