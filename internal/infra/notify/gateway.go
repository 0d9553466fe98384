// Package notify entrega e-mails e mensagens ao cliente. Envio é sempre
// best-effort: quem dispara uma mudança de estado nunca falha por causa dele.
package notify

import (
	"context"
	"log"
)

// Gateway envia um template renderizado para um contato.
type Gateway interface {
	Send(ctx context.Context, contact, template string, params map[string]any) error
}

// LogGateway só registra; usado quando o canal não está configurado.
type LogGateway struct {
	Channel string
}

func (g LogGateway) Send(ctx context.Context, contact, template string, params map[string]any) error {
	subject, _, err := Render(template, params)
	if err != nil {
		return err
	}
	log.Printf("notify: [%s] %s -> %s: %s", g.Channel, template, contact, subject)
	return nil
}

var _ Gateway = LogGateway{}
