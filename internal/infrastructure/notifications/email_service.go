package notifications

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// SMTPSender delivers plain-text email over authenticated SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   zerolog.Logger
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, username, password, from string, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// Send delivers an email to the given address.
func (s *SMTPSender) Send(to, subject, body string) error {
	// Without credentials (local development) log instead of sending.
	if s.username == "" {
		s.logger.Info().Str("to", to).Str("subject", subject).Msg("smtp sender not configured, message dropped")
		return nil
	}

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
