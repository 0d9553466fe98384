package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
)

const sendTimeout = 15 * time.Second

// Notifier escolhe o canal e roda envios assíncronos.
type Notifier struct {
	email   Gateway
	message Gateway
	wg      sync.WaitGroup
}

func NewNotifier(email, message Gateway) *Notifier {
	if email == nil {
		email = LogGateway{Channel: reminder.ChannelEmail}
	}
	if message == nil {
		message = LogGateway{Channel: reminder.ChannelMessage}
	}
	return &Notifier{email: email, message: message}
}

func (n *Notifier) gateway(channel string) (Gateway, error) {
	switch channel {
	case reminder.ChannelEmail:
		return n.email, nil
	case reminder.ChannelMessage:
		return n.message, nil
	}
	return nil, fmt.Errorf("unknown channel %q", channel)
}

// Send é síncrono; contato vazio é ignorado.
func (n *Notifier) Send(ctx context.Context, channel, contact, template string, params map[string]any) error {
	if contact == "" {
		return nil
	}
	gw, err := n.gateway(channel)
	if err != nil {
		return err
	}
	return gw.Send(ctx, contact, template, params)
}

// SendAsync dispara e esquece. Erros só vão para o log.
func (n *Notifier) SendAsync(channel, contact, template string, params map[string]any) {
	if n == nil || contact == "" {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.Send(ctx, channel, contact, template, params); err != nil {
			log.Printf("notify: %s %s to %s failed: %v", channel, template, contact, err)
		}
	}()
}

// Wait espera os envios em andamento (shutdown e testes).
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
