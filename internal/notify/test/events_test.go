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

package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
	test "github.com/jaycherian/gcp-go-daily-reels/internal/testutil"
)

func TestPubSubPublisher(t *testing.T) {
	client, srv := test.NewPubSub(t)
	test.NewTopicSubscription(t, client, "reel-published", "")

	publisher := notify.NewPubSubPublisher(client, "reel-published")
	defer publisher.Stop()

	sel := &model.Selection{Day: 12, Remaining: 4, Seed: 4242, PoolSize: 20}
	reel := &model.PublishedReel{Bucket: "ig-reels", Key: "reel_2025-02-15.mp4", URL: "https://example.com/reel"}
	event := model.NewReelPublished(sel, reel, "Day 12/365")
	require.NoError(t, publisher.Publish(context.Background(), event))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.ReelPublishedEvent, msgs[0].Attributes["event"])
	assert.Equal(t, event.RunId, msgs[0].Attributes["run_id"])

	var got model.ReelPublished
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, 12, got.Day)
	assert.Equal(t, "reel_2025-02-15.mp4", got.Key)
	assert.Equal(t, 4, got.Remaining)
}

func TestPubSubPublisherMissingTopic(t *testing.T) {
	client, _ := test.NewPubSub(t)
	publisher := notify.NewPubSubPublisher(client, "no-such-topic")
	defer publisher.Stop()

	sel := &model.Selection{Day: 1, Seed: 7}
	err := publisher.Publish(context.Background(), model.NewReelPublished(sel, &model.PublishedReel{Key: "reel_2025-02-15.mp4"}, ""))
	assert.Error(t, err)
}
