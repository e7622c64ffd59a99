// Package mail delivers transactional email, currently only OTP messages.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"ecomauth/internal/config"
)

// Sender delivers a single HTML email. Implementations must report delivery
// failure to the caller; the auth workflow treats a failed send as a failed
// operation.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail through an SMTP relay configured at construction.
type SMTPSender struct {
	cfg config.SMTP
}

// NewSMTPSender creates a sender bound to the given transport settings.
func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message, dialing a fresh SMTP session per call.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// VerificationEmail builds the subject and body for a signup/login OTP.
func VerificationEmail(name, code string) (subject, htmlBody string) {
	return "Your OTP for Email Verification",
		fmt.Sprintf("<h3>Hello %s,</h3><p>Your OTP is: <b>%s</b></p><p>It will expire in 5 minutes.</p>", name, code)
}

// RecoveryEmail builds the subject and body for a password recovery OTP.
func RecoveryEmail(name, code string) (subject, htmlBody string) {
	return "Your OTP for Password Recovery",
		fmt.Sprintf("<h3>Hello %s,</h3><p>Your OTP for password recovery is: <b>%s</b></p><p>It will expire in 5 minutes.</p>", name, code)
}
