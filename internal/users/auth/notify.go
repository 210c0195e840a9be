// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/config"
)

// # Message

const confirmationSubject = "YaMDb confirmation code"

// confirmationBody is the plain-text body carrying the code.
func confirmationBody(code string) string {
	return "Your YaMDb confirmation code: " + code
}

// buildMessage renders a minimal RFC 5322 plain-text message.
func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// # SMTP Notifier

// SMTPNotifier delivers confirmation codes through an SMTP relay.
//
// Security modes: "starttls" (upgrade when offered), "ssl" or "smtps"
// (implicit TLS) and "none".
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

// NewSMTPNotifier normalizes cfg and returns a notifier bound to it.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))

	logger.Info("smtp_notifier_enabled",
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("security", cfg.Security),
	)
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// Send delivers the code to email. The context deadline bounds the whole SMTP session.
func (notifier *SMTPNotifier) Send(ctx context.Context, email, code string) error {
	message := buildMessage(notifier.cfg.From, email, confirmationSubject, confirmationBody(code), time.Now())

	client, err := notifier.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp_dial_failed: %w", err)
	}
	defer client.Close()

	if err := notifier.deliver(client, email, message); err != nil {
		return fmt.Errorf("smtp_send_failed: %w", err)
	}
	return nil
}

// dial opens the connection and applies the configured transport security.
func (notifier *SMTPNotifier) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(notifier.cfg.Host, notifier.cfg.Port)
	tlsConfig := &tls.Config{ServerName: notifier.cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	switch notifier.cfg.Security {
	case "ssl", "smtps":
		dialer := &tls.Dialer{Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	default:
		var dialer net.Dialer
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, notifier.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if notifier.cfg.Security == "starttls" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return nil, err
			}
		}
	}

	return client, nil
}

// deliver authenticates when credentials are configured and sends one message.
func (notifier *SMTPNotifier) deliver(client *smtp.Client, to string, message []byte) error {
	if notifier.cfg.User != "" && notifier.cfg.Password != "" {
		plainAuth := smtp.PlainAuth("", notifier.cfg.User, notifier.cfg.Password, notifier.cfg.Host)
		if err := client.Auth(plainAuth); err != nil {
			return err
		}
	}

	if err := client.Mail(notifier.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(message); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// # Log Notifier

// LogNotifier writes the code to the structured log instead of sending mail.
//
// It is wired when no SMTP host is configured and is meant for local development only.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a [LogNotifier].
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message that would have been mailed.
func (notifier *LogNotifier) Send(ctx context.Context, email, code string) error {
	notifier.logger.WarnContext(ctx, "confirmation_code_not_mailed",
		slog.String("email", email),
		slog.String("message", confirmationBody(code)),
	)
	return nil
}
