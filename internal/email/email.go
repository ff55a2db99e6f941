// Package email is the notification gateway: it sends transactional email
// for account-lifecycle events. Sends are blocking and awaited inline by the
// calling handler.
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// LogSender logs emails instead of sending them. Used in development and
// whenever no API key is configured.
type LogSender struct {
	Logger *zap.SugaredLogger
}

// Send logs the message and reports success.
func (s *LogSender) Send(_ context.Context, to, subject, html string) error {
	s.Logger.Infow("email (not sent, log sender active)",
		"to", to,
		"subject", subject,
		"body", html,
	)
	return nil
}

// ResendSender sends emails through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a ResendSender with the given API key and From address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send delivers the message via Resend.
func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a ResendSender when an API key is configured, a LogSender
// otherwise.
func NewSender(apiKey, from string, logger *zap.SugaredLogger) Sender {
	if apiKey == "" {
		return &LogSender{Logger: logger}
	}
	return NewResendSender(apiKey, from)
}
