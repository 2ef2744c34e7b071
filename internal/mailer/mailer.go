package mailer

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer is the single outbound-mail strategy. The notifier sends through
// it sequentially and treats a non-nil error as "dropped until the next
// tick" — there is no retry.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailerFromEnv builds the mailer from SMTP_HOST, SMTP_PORT,
// SMTP_USERNAME, SMTP_PASSWORD and MAIL_FROM. MAIL_FROM falls back to
// SMTP_USERNAME, matching the common transactional setup.
func NewSMTPMailerFromEnv() (*SMTPMailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST environment variable is not set")
	}

	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		parsed, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", portStr, err)
		}
		port = parsed
	}

	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")

	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = username
	}
	if from == "" {
		return nil, fmt.Errorf("MAIL_FROM environment variable is not set")
	}

	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}, nil
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	return nil
}
