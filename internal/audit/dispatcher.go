package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ActorID  *uuid.UUID
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Metadata any

	// OperatorFacing também é publicado para o painel do operador.
	OperatorFacing bool
}

// Publisher encaminha eventos para fora do processo (fila).
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	sink      Sink
	publisher Publisher
	queue     chan Event
	done      sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(sink Sink, publisher Publisher) *Dispatcher {
	d := &Dispatcher{
		sink:      sink,
		publisher: publisher,
		queue:     make(chan Event, 100), // buffer seguro
	}

	d.done.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.done.Done()

	for ev := range d.queue {
		if err := d.sink.Log(ev); err != nil {
			log.Println("audit error:", err)
		}

		if ev.OperatorFacing && d.publisher != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := d.publisher.Publish(ctx, ev); err != nil {
				log.Printf("audit: publish %s: %v", ev.Action, err)
			}
			cancel()
		}
	}
}

// Dispatch nunca bloqueia. Dispatcher nil ignora o evento.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		log.Println("audit queue full, dropping event")
	}
}

// Close drena a fila e espera o worker.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() { close(d.queue) })
	d.done.Wait()
}
