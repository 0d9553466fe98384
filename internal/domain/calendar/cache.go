package calendar

import (
	"context"
	"sync"
	"time"
)

const DefaultCacheTTL = 30 * time.Second

// SlotCache guarda a projeção de horários ocupados. É só otimização de
// leitura: a checagem de conflito na escrita nunca passa por aqui.
type SlotCache interface {
	Get(ctx context.Context) ([]Interval, bool)
	Set(ctx context.Context, slots []Interval)
	Invalidate(ctx context.Context)
}

type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	slots   []Interval
	expires time.Time
	valid   bool
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now}
}

// WithClock troca o relógio (testes).
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.now = now
	return m
}

func (m *MemoryCache) Get(ctx context.Context) ([]Interval, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.valid || !m.now().Before(m.expires) {
		return nil, false
	}
	out := make([]Interval, len(m.slots))
	copy(out, m.slots)
	return out, true
}

func (m *MemoryCache) Set(ctx context.Context, slots []Interval) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots = make([]Interval, len(slots))
	copy(m.slots, slots)
	m.expires = m.now().Add(m.ttl)
	m.valid = true
}

func (m *MemoryCache) Invalidate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots = nil
	m.valid = false
}

var _ SlotCache = (*MemoryCache)(nil)
