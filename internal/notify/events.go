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

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// EventPublisher announces published reels to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event model.ReelPublished) error
}

// PubSubPublisher publishes ReelPublished events as JSON messages.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher publishes to topicID.
func NewPubSubPublisher(client *pubsub.Client, topicID string) *PubSubPublisher {
	return &PubSubPublisher{topic: client.Topic(topicID)}
}

// Publish sends event and waits for the server to accept it.
func (p *PubSubPublisher) Publish(ctx context.Context, event model.ReelPublished) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event":  model.ReelPublishedEvent,
			"run_id": event.RunId,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic.ID(), err)
	}
	slog.InfoContext(ctx, "event published", "topic", p.topic.ID(), "message_id", id)
	return nil
}

// Stop flushes pending messages.
func (p *PubSubPublisher) Stop() {
	p.topic.Stop()
}
