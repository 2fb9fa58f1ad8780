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
	"errors"
	"mime"
	"testing"

	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type recordingSender struct {
	messages []*mail.Msg
	err      error
}

func (r *recordingSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	r.messages = append(r.messages, messages...)
	return r.err
}

// subject returns the decoded Subject header; go-mail stores it as RFC 2047
// encoded words.
func subject(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	values := msg.GetGenHeader(mail.HeaderSubject)
	require.Len(t, values, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(values[0])
	require.NoError(t, err)
	return decoded
}

func TestReadyBody(t *testing.T) {
	body := notify.ReadyBody(notify.ReadyMessage{
		Day:     4,
		URL:     "https://example.com/reel_2025-02-15.mp4?sig=1",
		Caption: "Day 4/365 — \"Still\"",
		Image:   "images/sleep/moon.jpg",
		Audio:   "audio/sleep/rain.mp3",
	})
	assert.Contains(t, body, "https://example.com/reel_2025-02-15.mp4?sig=1")
	assert.Contains(t, body, "Day 4/365")
	assert.Contains(t, body, "📸 moon.jpg")
	assert.Contains(t, body, "🎵 rain.mp3")
}

func TestLowStockBody(t *testing.T) {
	body := notify.LowStockBody(notify.LowStockMessage{Remaining: 2, ImagesDir: "images/sleep", AudioDir: "audio/sleep"})
	assert.Contains(t, body, "Only 2 reels remain.")
	assert.Contains(t, body, "📁 images/sleep")
	assert.Contains(t, body, "📁 audio/sleep")
}

func TestEmailNotifierSends(t *testing.T) {
	sender := &recordingSender{}
	n := notify.NewEmailNotifier(sender, "bot@example.com", "me@example.com")

	require.NoError(t, n.LowStock(context.Background(), notify.LowStockMessage{Remaining: 1}))
	require.NoError(t, n.ReelReady(context.Background(), notify.ReadyMessage{Day: 1, URL: "u"}))

	require.Len(t, sender.messages, 2)
	assert.Equal(t, notify.LowStockSubject, subject(t, sender.messages[0]))
	assert.Equal(t, notify.ReadySubject, subject(t, sender.messages[1]))

	rcpts, err := sender.messages[1].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"me@example.com"}, rcpts)
}

func TestEmailNotifierSendFailure(t *testing.T) {
	boom := errors.New("535 authentication failed")
	n := notify.NewEmailNotifier(&recordingSender{err: boom}, "bot@example.com", "me@example.com")

	err := n.ReelReady(context.Background(), notify.ReadyMessage{})
	assert.ErrorIs(t, err, boom)
}

func TestEmailNotifierInvalidAddress(t *testing.T) {
	sender := &recordingSender{}
	n := notify.NewEmailNotifier(sender, "not an address", "me@example.com")

	assert.Error(t, n.LowStock(context.Background(), notify.LowStockMessage{}))
	assert.Empty(t, sender.messages)
}

func TestNoop(t *testing.T) {
	var n notify.Notifier = notify.Noop{}
	assert.NoError(t, n.ReelReady(context.Background(), notify.ReadyMessage{}))
	assert.NoError(t, n.LowStock(context.Background(), notify.LowStockMessage{}))
}
