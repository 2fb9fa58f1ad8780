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
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// PublishReel uploads the rendered reel as <prefix><YYYY-MM-DD>.mp4 and stores
// the published location, including a time-limited download link.
type PublishReel struct {
	cor.BaseCommand
	store  objectstore.Store
	prefix string
	ttl    time.Duration
}

// NewPublishReel creates the publish command.
//
// Inputs:
//   - name: Command name.
//   - store: The destination bucket.
//   - prefix: Object key prefix, e.g. "reel_".
//   - ttl: Download link lifetime.
//
// Outputs:
//   - *PublishReel: The command.
func NewPublishReel(name string, store objectstore.Store, prefix string, ttl time.Duration) *PublishReel {
	out := &PublishReel{BaseCommand: *cor.NewBaseCommand(name), store: store, prefix: prefix, ttl: ttl}
	out.InputParamName = ParamReelPath
	out.OutputParamName = ParamPublished
	return out
}

func (c *PublishReel) IsExecutable(context cor.Context) bool {
	return hasAll(context, c.GetInputParam())
}

func (c *PublishReel) Execute(context cor.Context) {
	path := context.Get(c.GetInputParam()).(string)
	key := objectstore.ReelKey(c.prefix, RunDate(context))

	reel, err := objectstore.Publish(context.GetContext(), c.store, path, key, c.ttl)
	if err != nil {
		c.Fail(context, err)
		return
	}
	context.Add(c.GetOutputParam(), reel)
	c.Succeed(context)
}
