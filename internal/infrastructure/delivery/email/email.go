// Package email sends outbound mail for notifications.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxRetries = 3

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer delivers plain-text mail through an SMTP relay with a bounded
// number of retries.
type SMTPMailer struct {
	cfg     Config
	log     zerolog.Logger
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	backoff func(attempt int) time.Duration
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		log:  log,
		send: smtp.SendMail,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := m.message(to, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := m.send(addr, auth, m.cfg.From, []string{to}, msg)
		if err == nil {
			return nil
		}
		lastErr = err
		m.log.Warn().Err(err).
			Str("to", to).
			Int("attempt", attempt).
			Msg("smtp send failed")

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.backoff(attempt)):
			}
		}
	}
	return fmt.Errorf("send email after %d attempts: %w", maxRetries, lastErr)
}

func (m *SMTPMailer) message(to, subject, body string) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogMailer only logs the message. Used when no SMTP host is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Msg("smtp not configured, email logged only")
	return nil
}
