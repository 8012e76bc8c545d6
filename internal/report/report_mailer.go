package report

import (
	"context"
	"net/http"

	"github.com/xnk3-aplus/360-Base/internal/shared/apperror"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers a rendered report.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string) error { return nil }

// SMTPMailer sends HTML mail over authenticated SMTP with STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPMailer(host string, port int, user, password, from string, logger ...*zap.Logger) *SMTPMailer {
	l := zap.L().Named("report.mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.mailer")
	}
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		logger: l,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warn("smtp send failed", zap.String("to", to), zap.Error(err))
		return apperror.Wrap(err, apperror.CodeServiceUnavailable, "Email delivery failed", http.StatusServiceUnavailable)
	}
	return nil
}
