package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
)

// Horizonte da projeção guardada no cache.
const occupiedHorizon = 2 * 365 * 24 * time.Hour

type ListOccupiedSlots struct {
	Deps
}

func NewListOccupiedSlots(deps Deps) *ListOccupiedSlots {
	return &ListOccupiedSlots{Deps: deps}
}

// Execute devolve os horários ocupados que terminam depois de from
// (ou de agora, se from for anterior). Leitura pode vir do cache.
func (uc *ListOccupiedSlots) Execute(
	ctx context.Context,
	from time.Time,
) ([]calendar.Interval, error) {

	now := uc.now()
	if from.Before(now) {
		from = now
	}

	if uc.Cache != nil {
		if slots, ok := uc.Cache.Get(ctx); ok {
			return calendar.After(slots, from), nil
		}
	}

	existing, err := uc.Repo.ListBlocking(ctx, now, now.Add(occupiedHorizon))
	if err != nil {
		return nil, err
	}

	slots := calendar.Occupied(existing, now)
	// Uma escrita que invalida entre o ListBlocking e este Set deixa a
	// projeção velha no cache até o TTL. Tolerado: a criação e o
	// reagendamento checam conflito no banco, nunca aqui.
	if uc.Cache != nil {
		uc.Cache.Set(ctx, slots)
	}

	return calendar.After(slots, from), nil
}
