package email

import (
	"context"
	"fmt"
)

// Mailer composes the concrete account-lifecycle messages and hands them to
// the underlying Sender. Links embedded in emails are built from the
// configured frontend base URL.
type Mailer struct {
	sender      Sender
	frontendURL string
}

// NewMailer creates a Mailer over the given sender.
func NewMailer(sender Sender, frontendURL string) *Mailer {
	return &Mailer{sender: sender, frontendURL: frontendURL}
}

// SendVerification emails the address-verification link after registration
// or a resend request.
func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to Monetra. Please confirm your email address by clicking the link below. The link expires in 24 hours.</p>
<p><a href="%s">Verify my email</a></p>
<p>If you did not create an account, you can ignore this message.</p>`, name, link)
	return m.sender.Send(ctx, to, "Verify your Monetra email", html)
}

// SendPasswordReset emails the password-reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your Monetra password. The link below expires in 1 hour.</p>
<p><a href="%s">Reset my password</a></p>
<p>If you did not request this, you can ignore this message.</p>`, name, link)
	return m.sender.Send(ctx, to, "Reset your Monetra password", html)
}

// SendLoginOTP emails the 2FA login code.
func (m *Mailer) SendLoginOTP(ctx context.Context, to, name, code string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your Monetra login code is:</p>
<p><strong style="font-size:24px">%s</strong></p>
<p>The code expires in 10 minutes. If you did not try to log in, change your password immediately.</p>`, name, code)
	return m.sender.Send(ctx, to, "Your Monetra login code", html)
}

// SendEmailChangeOTP emails the confirmation code to the address the account
// is migrating to.
func (m *Mailer) SendEmailChangeOTP(ctx context.Context, to, name, code string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Use the code below to confirm this address for your Monetra account:</p>
<p><strong style="font-size:24px">%s</strong></p>
<p>The code expires in 10 minutes. If you did not request this change, you can ignore this message.</p>`, name, code)
	return m.sender.Send(ctx, to, "Confirm your new Monetra email", html)
}
