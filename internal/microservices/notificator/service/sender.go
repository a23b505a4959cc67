package service

import (
	"context"
	"io"

	"gopkg.in/mail.v2"

	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

type Sender interface {
	Send(ctx context.Context, m dao.Mail) error
}

// NewSender picks the mail driver from cfg.
func NewSender(cfg config.MailConfig, lg *logger.Logger) Sender {
	if cfg.Driver == config.MailSMTP {
		return NewSMTPSender(cfg)
	}
	return &LogSender{lg: lg}
}

type SMTPSender struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, m dao.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(buildMessage(s.from, m))
}

func buildMessage(from string, m dao.Mail) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	for _, in := range m.Inline {
		data := in.Data
		msg.Embed(in.Filename,
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			mail.SetHeader(map[string][]string{"Content-ID": {"<" + in.ContentID + ">"}}),
		)
	}
	return msg
}

// LogSender only logs the mail; used when no SMTP relay is configured.
type LogSender struct {
	lg *logger.Logger
}

func (s *LogSender) Send(ctx context.Context, m dao.Mail) error {
	s.lg.For(ctx).Info("mail_logged", map[string]any{
		"to":      m.To,
		"subject": m.Subject,
		"bytes":   len(m.HTML),
		"inline":  len(m.Inline),
	})
	return nil
}
