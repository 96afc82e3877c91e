package mailer

import (
	"gopkg.in/gomail.v2"

	"github.com/suvadu/separation-api/pkg/config"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(toEmail, toName, subject, htmlBody string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTP builds an SMTP-backed mailer from config.
func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send delivers one message. Errors are returned for the caller to log;
// delivery is best-effort by contract.
func (m *SMTPMailer) Send(toEmail, toName, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
