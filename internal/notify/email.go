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
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Sender delivers prepared messages; *mail.Client implements it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailNotifier sends notifications over SMTP.
type EmailNotifier struct {
	sender Sender
	from   string
	to     string
}

// NewSMTPClient returns a client for an implicit-TLS SMTP server with PLAIN
// authentication, e.g. smtp.gmail.com:465.
func NewSMTPClient(host string, port int, username string, password string) (*mail.Client, error) {
	c, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return c, nil
}

// NewEmailNotifier returns a notifier mailing from -> to through sender.
func NewEmailNotifier(sender Sender, from string, to string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from, to: to}
}

func (n *EmailNotifier) message(subject string, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(n.to); err != nil {
		return nil, fmt.Errorf("invalid receiver: %w", err)
	}
	m.Subject(subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func (n *EmailNotifier) send(ctx context.Context, subject string, body string) error {
	m, err := n.message(subject, body)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}
	slog.InfoContext(ctx, "email sent", "subject", subject)
	return nil
}

// ReelReady mails the download link and caption.
func (n *EmailNotifier) ReelReady(ctx context.Context, msg ReadyMessage) error {
	return n.send(ctx, ReadySubject, ReadyBody(msg))
}

// LowStock mails the remaining count and where to upload more content.
func (n *EmailNotifier) LowStock(ctx context.Context, msg LowStockMessage) error {
	return n.send(ctx, LowStockSubject, LowStockBody(msg))
}
