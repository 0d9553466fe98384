package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
)

// CheckConflictInput aceita a duração direta ou um serviço do catálogo.
type CheckConflictInput struct {
	ServiceID   string
	ServiceSlug string
	DurationMin int
	Start       time.Time

	// ExcludeID ignora o próprio agendamento num reagendamento.
	ExcludeID string
}

type CheckConflict struct {
	Deps
}

func NewCheckConflict(deps Deps) *CheckConflict {
	return &CheckConflict{Deps: deps}
}

// Execute sempre consulta o repositório, nunca o cache.
func (uc *CheckConflict) Execute(
	ctx context.Context,
	in CheckConflictInput,
) ([]calendar.Conflict, error) {

	if in.Start.IsZero() {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "start required")
	}

	duration := in.DurationMin
	if duration < 0 {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "duration must be positive")
	}
	if duration == 0 {
		service, err := resolveService(ctx, uc.Repo, in.ServiceID, in.ServiceSlug)
		if err != nil {
			return nil, err
		}
		duration = service.DurationMin
	}

	var err error
	exclude := uuid.Nil
	if in.ExcludeID != "" {
		if exclude, err = parseID(in.ExcludeID); err != nil {
			return nil, err
		}
	}

	slot := uc.Calendar.Slot(in.Start, duration)
	existing, err := uc.Repo.ListBlocking(ctx, slot.Start, slot.End)
	if err != nil {
		return nil, err
	}

	conflicts := uc.Calendar.FindConflicts(existing, in.Start, duration, exclude)
	if conflicts == nil {
		conflicts = []calendar.Conflict{}
	}
	return conflicts, nil
}
