package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// Config holds SMTP settings for outbound mail.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Mailer sends HTML mail over SMTP. It implements ports.Mailer. Port 465
// uses implicit TLS; other ports go through smtp.SendMail (STARTTLS or
// plain).
type Mailer struct {
	cfg Config
	log zerolog.Logger
}

// NewMailer creates a Mailer with the given SMTP settings.
func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	if cfg.FromName == "" {
		cfg.FromName = "SimpleKeytime"
	}
	return &Mailer{cfg: cfg, log: log}
}

var _ ports.Mailer = (*Mailer)(nil)

// Send delivers one HTML message.
func (m *Mailer) Send(_ context.Context, to, subject, htmlBody string) error {
	from := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	message := []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			htmlBody + "\r\n",
	)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port

	var err error
	if m.cfg.Port == "465" {
		err = m.sendTLS(addr, auth, m.cfg.From, []string{to}, message)
	} else {
		err = smtp.SendMail(addr, auth, m.cfg.From, []string{to}, message)
	}
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.log.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// sendTLS sends over an implicit-TLS connection (port 465).
func (m *Mailer) sendTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("smtp sender: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("smtp recipient: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}
