package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk/internal/config"
)

// Mailer delivers account emails. The auth service depends on this interface
// so tests can swap in a recorder.
type Mailer interface {
	SendNewPassword(to, username, password string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) SendNewPassword(to, username, password string) error {
	subject := "Your Password Has Been Reset"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Password Reset</h2>
			<p>Hello %s,</p>
			<p>Your password has been reset. Your new temporary password is:</p>
			<p><strong>%s</strong></p>
			<p>Please sign in and change it as soon as possible.</p>
			<p>If you didn't request this reset, please contact support immediately.</p>
		</body>
		</html>
	`, username, password)

	plainBody := fmt.Sprintf(`
Password Reset

Hello %s,

Your password has been reset. Your new temporary password is:
%s

Please sign in and change it as soon as possible.

If you didn't request this reset, please contact support immediately.
	`, username, password)

	return m.sendEmail(to, subject, htmlBody, plainBody)
}

func (m *SMTPMailer) sendEmail(to, subject, htmlBody, plainBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
