// Package events publica eventos voltados ao operador no RabbitMQ.
// Falhas são logadas e devolvidas; quem chama decide ignorar.
package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
)

const DefaultQueue = "institute.operator"

// OperatorEvent é o payload publicado.
type OperatorEvent struct {
	Action     string `json:"action"`
	Entity     string `json:"entity"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
	Metadata   any    `json:"metadata,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type AMQPPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPPublisher{url: url, queue: queue}
}

// channel reaproveita a conexão; redisca se caiu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			log.Printf("rabbitmq: dial failed: %v", err)
			return nil, err
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return nil, err
	}

	// Durable para sobreviver a restart do broker.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		_ = ch.Close()
		return nil, err
	}

	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(toOperatorEvent(ev, time.Now().UTC()))
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func toOperatorEvent(ev audit.Event, at time.Time) OperatorEvent {
	out := OperatorEvent{
		Action:     ev.Action,
		Entity:     ev.Entity,
		Metadata:   ev.Metadata,
		OccurredAt: at.Format(time.RFC3339),
	}
	if ev.EntityID != nil {
		out.EntityID = ev.EntityID.String()
	}
	if ev.ActorID != nil {
		out.ActorID = ev.ActorID.String()
	}
	return out
}

var _ audit.Publisher = (*AMQPPublisher)(nil)
