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

// Package cloud. This file defines the listener `reels serve` uses to start a
// daily run from a Pub/Sub message, e.g. one published by Cloud Scheduler.
//
// Logic Flow:
//  1. Listen starts a goroutine receiving from the trigger subscription.
//  2. Each message gets a span and a fresh chain context holding the message
//     data under cor.CtxIn.
//  3. The attached command (the daily reel workflow) runs to completion.
//  4. The message is acknowledged whether or not the run failed. A run that
//     failed after selecting its pair has already consumed that pair, so a
//     redelivery would skip a day instead of repeating it.
//  5. Warnings of optional steps and errors are logged.
package cloud

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener connects a subscription to a command.
type PubSubListener struct {
	subscription *pubsub.Subscription
	command      cor.Command
	timeout      time.Duration
	done         chan struct{}
	once         sync.Once
}

// NewPubSubListener creates a listener on subscriptionID. The command may be
// attached later with SetCommand.
//
// Inputs:
//   - pubsubClient: An authenticated Pub/Sub client.
//   - subscription: The subscription id and per-run timeout.
//   - command: The command run for every message, or nil.
//
// Outputs:
//   - *PubSubListener: The listener.
func NewPubSubListener(pubsubClient *pubsub.Client, subscription TopicSubscription, command cor.Command) *PubSubListener {
	sub := pubsubClient.Subscription(subscription.Name)
	// Runs are sequential; a second trigger waits for the first to finish.
	sub.ReceiveSettings.MaxOutstandingMessages = 1
	return &PubSubListener{
		subscription: sub,
		command:      command,
		timeout:      time.Duration(subscription.TimeoutInSeconds) * time.Second,
		done:         make(chan struct{}),
	}
}

// SetCommand attaches command unless one is already set.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Done is closed once the receive loop has stopped.
func (m *PubSubListener) Done() <-chan struct{} {
	return m.done
}

// Listen receives messages in the background until ctx is cancelled.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.InfoContext(ctx, "listening for run triggers", "subscription", m.subscription.String())

	go func() {
		defer m.once.Do(func() { close(m.done) })
		tracer := otel.Tracer("trigger-listener")

		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			runCtx := msgCtx
			if m.timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(msgCtx, m.timeout)
				defer cancel()
			}
			spanCtx, span := tracer.Start(runCtx, "receive-trigger")
			defer span.End()
			span.SetAttributes(attribute.String("message_id", msg.ID))

			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))
			defer chainCtx.Close()

			m.command.Execute(chainCtx)
			msg.Ack()
			cor.LogWarnings(chainCtx)

			if chainCtx.HasErrors() {
				span.SetStatus(codes.Error, "run failed")
				for name, e := range chainCtx.GetErrors() {
					slog.ErrorContext(spanCtx, "triggered run failed", "command", name, "error", e)
				}
				return
			}
			span.SetStatus(codes.Ok, "success")
		})
		if err != nil {
			slog.ErrorContext(ctx, "trigger subscription stopped", "error", err)
		}
	}()
}
