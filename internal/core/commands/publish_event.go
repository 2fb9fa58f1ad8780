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
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
)

// PublishEvent announces the published reel on the events topic. Optional.
type PublishEvent struct {
	cor.BaseCommand
	publisher notify.EventPublisher
}

func NewPublishEvent(name string, publisher notify.EventPublisher) *PublishEvent {
	return &PublishEvent{BaseCommand: *cor.NewOptionalCommand(name), publisher: publisher}
}

func (c *PublishEvent) IsExecutable(context cor.Context) bool {
	return hasAll(context, ParamSelection, ParamPublished)
}

func (c *PublishEvent) Execute(context cor.Context) {
	text := ""
	if generated := GetCaption(context); generated != nil {
		text = generated.Text
	}
	event := model.NewReelPublished(GetSelection(context), GetPublished(context), text)
	if err := c.publisher.Publish(context.GetContext(), event); err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context)
}
