package notify

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

type EmailGateway struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailGateway(host string, port int, user, password, from string) *EmailGateway {
	return &EmailGateway{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (g *EmailGateway) Send(ctx context.Context, contact, template string, params map[string]any) error {
	if contact == "" {
		return errors.New("email: empty recipient")
	}

	subject, body, err := Render(template, params)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", contact)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- g.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Gateway = (*EmailGateway)(nil)
