// Package mailer sends plain-text mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwise1/upzunction/config"
	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(ctx context.Context, subject, body string, to ...string) error
}

type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	if cfg.SMTPHost == "" || cfg.SMTPPort == 0 {
		return nil, errors.New("SMTP host and port must be configured")
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	if from == "" {
		return nil, errors.New("SMTP sender address must be configured")
	}
	return &SMTPSender{
		from:   from,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, subject, body string, to ...string) error {
	m, err := s.message(subject, body, to...)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("sending mail cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending mail to %v: %w", to, err)
		}
		return nil
	}
}

func (s *SMTPSender) message(subject, body string, to ...string) (*gomail.Message, error) {
	if len(to) == 0 {
		return nil, errors.New("no recipients provided for email")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m, nil
}
