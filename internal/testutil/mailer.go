package testutil

import (
	"context"
	"errors"

	"monetra/internal/email"
)

// SentEmail records one message handed to a RecordingSender.
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// RecordingSender captures outgoing emails for inspection instead of
// delivering them.
type RecordingSender struct {
	Sent []SentEmail
}

// Send records the message and reports success.
func (s *RecordingSender) Send(_ context.Context, to, subject, html string) error {
	s.Sent = append(s.Sent, SentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

// Last returns the most recently recorded email, or nil if none were sent.
func (s *RecordingSender) Last() *SentEmail {
	if len(s.Sent) == 0 {
		return nil
	}
	return &s.Sent[len(s.Sent)-1]
}

// FailingSender fails every send. Used to exercise delivery-failure paths.
type FailingSender struct{}

// Send always returns an error.
func (s *FailingSender) Send(_ context.Context, _, _, _ string) error {
	return errors.New("smtp unavailable")
}

// NewRecordingMailer returns a Mailer over a RecordingSender along with the
// sender for assertions.
func NewRecordingMailer() (*email.Mailer, *RecordingSender) {
	sender := &RecordingSender{}
	return email.NewMailer(sender, "http://localhost:3000"), sender
}

// NewFailingMailer returns a Mailer whose every send fails.
func NewFailingMailer() *email.Mailer {
	return email.NewMailer(&FailingSender{}, "http://localhost:3000")
}
