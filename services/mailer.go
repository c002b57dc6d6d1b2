package services

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer sends notification email. A nil *SMTPMailer is a valid no-op
// sender, so callers never have to branch on whether SMTP is configured.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	host   string
	port   string
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(host, port, user, pass, from string, logger *slog.Logger) *SMTPMailer {
	if host == "" || from == "" {
		return nil
	}
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from, logger: logger}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m == nil {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	// Port 465 is implicit TLS; everything else goes through the STARTTLS
	// path net/smtp handles itself.
	if m.port == "465" {
		return m.sendTLS(addr, auth, to, []byte(msg))
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("failed to dial SMTP over TLS: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %w", err)
	}
	if err = client.Mail(m.from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
