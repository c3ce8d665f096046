// Package notify delivers email to users. Delivery is best-effort;
// callers must never let a send failure abort the action that triggered it.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"skillswap/cfg"
	"skillswap/pkg/logger"
)

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPNotifier sends plain-text mail through a configured SMTP relay.
type SMTPNotifier struct {
	conf cfg.SMTPConfig
}

func NewSMTPNotifier(conf cfg.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{conf: conf}
}

func (n *SMTPNotifier) Send(_ context.Context, to, subject, body string) error {
	addr := n.conf.Host + ":" + n.conf.Port

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.conf.From, to, subject, body))

	var auth smtp.Auth
	if n.conf.Username != "" {
		auth = smtp.PlainAuth("", n.conf.Username, n.conf.Password, n.conf.Host)
	}

	if err := smtp.SendMail(addr, auth, n.conf.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogNotifier writes would-be emails to the log. Used in development when
// no SMTP relay is configured.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(l logger.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.logger.Info(ctx, "email (log only)",
		logger.Field{Key: "to", Value: to},
		logger.Field{Key: "subject", Value: subject},
	)
	return nil
}
