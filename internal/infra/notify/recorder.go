package notify

import (
	"context"
	"errors"
	"sync"
)

var ErrRecorderFailure = errors.New("recorder: forced failure")

type Sent struct {
	Contact  string
	Template string
	Params   map[string]any
}

// Recorder guarda os envios em memória. Fail força erro em todo envio.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Fail bool
}

func (r *Recorder) Send(ctx context.Context, contact, template string, params map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Fail {
		return ErrRecorderFailure
	}
	r.sent = append(r.sent, Sent{Contact: contact, Template: template, Params: params})
	return nil
}

func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Sent(nil), r.sent...)
}

var _ Gateway = (*Recorder)(nil)
