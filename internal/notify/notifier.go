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

// Package notify tells the operator about a run: the "reel ready" email with
// the download link and caption, the "content running low" email, and an
// optional machine-readable ReelPublished event on Pub/Sub.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// ReadyMessage is the content of the daily "reel ready" notification.
type ReadyMessage struct {
	Day     int
	URL     string
	Caption string
	Image   string // Base name of the image used.
	Audio   string // Base name of the audio clip used.
}

// LowStockMessage is the content of the "content running low" notification.
type LowStockMessage struct {
	Remaining int
	ImagesDir string
	AudioDir  string
}

// Notifier delivers run notifications to a human.
type Notifier interface {
	ReelReady(ctx context.Context, msg ReadyMessage) error
	LowStock(ctx context.Context, msg LowStockMessage) error
}

// Subjects of the two notifications.
const (
	ReadySubject    = "🎥 Daily Instagram Reel Ready"
	LowStockSubject = "⚠️ Reels automation — content running low"
)

// ReadyBody renders the text of a ReadyMessage.
func ReadyBody(msg ReadyMessage) string {
	return fmt.Sprintf(`Your daily reel is ready 🎉

📥 Download:
%s

📝 Caption suggestion:
%s

Today used:
📸 %s
🎵 %s

Have a peaceful day 🙏
`, msg.URL, msg.Caption, filepath.Base(msg.Image), filepath.Base(msg.Audio))
}

// LowStockBody renders the text of a LowStockMessage.
func LowStockBody(msg LowStockMessage) string {
	return fmt.Sprintf(`Only %d reels remain.

Upload more:

📁 %s
📁 %s

– Automation bot
`, msg.Remaining, msg.ImagesDir, msg.AudioDir)
}

// Noop logs notifications instead of sending them.
type Noop struct{}

func (Noop) ReelReady(ctx context.Context, msg ReadyMessage) error {
	slog.InfoContext(ctx, "notifications disabled, reel ready", "day", msg.Day, "url", msg.URL)
	return nil
}

func (Noop) LowStock(ctx context.Context, msg LowStockMessage) error {
	slog.InfoContext(ctx, "notifications disabled, content running low", "remaining", msg.Remaining)
	return nil
}
