package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

var errHeaderInjection = errors.New("smtp: recipient contains a line break")

// header values are single-line; a CR or LF would start a new header
var headerSafe = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// SMTPMailer sends HTML mail over implicit TLS (port 465 style).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
}

func NewSMTPMailer(host, port, user, pass string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: user, password: pass}
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\n", headerSafe.Replace(from)) +
			fmt.Sprintf("To: %s\r\n", headerSafe.Replace(to)) +
			fmt.Sprintf("Subject: %s\r\n", headerSafe.Replace(subject)) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)
}

func (m *SMTPMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") {
		return errHeaderInjection
	}
	addr := net.JoinHostPort(m.host, m.port)
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: m.host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return err
	}
	if err := client.Mail(m.username); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(m.username, to, subject, body)); err != nil {
		return err
	}
	return w.Close()
}

// NopMailer is used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendEmail(context.Context, string, string, string) error { return nil }
