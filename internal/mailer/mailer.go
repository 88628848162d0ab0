// Package mailer delivers outbound mail. The service depends only on the
// Mailer interface; issuing reset tokens and delivering them are separate
// concerns.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through a plain-auth SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// ResetBody renders the password-reset mail.
func ResetBody(resetLink string) string {
	return fmt.Sprintf(`Hi,

We received a request to reset your password. Click the link below to reset it:

%s

If you did not request a password reset, please ignore this email.
`, resetLink)
}
