package loyalty

import (
	"context"
	"time"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

type RecordCompletion struct {
	repo       loyalty.Repository
	policy     loyalty.Policy
	classifier loyalty.Classifier
	audit      *audit.Dispatcher
	now        func() time.Time
}

func NewRecordCompletion(
	repo loyalty.Repository,
	policy loyalty.Policy,
	classifier loyalty.Classifier,
	audit *audit.Dispatcher,
) *RecordCompletion {
	return &RecordCompletion{
		repo:       repo,
		policy:     policy,
		classifier: classifier,
		audit:      audit,
		now:        time.Now,
	}
}

// WithClock troca o relógio (testes).
func (uc *RecordCompletion) WithClock(now func() time.Time) *RecordCompletion {
	uc.now = now
	return uc
}

// Execute contabiliza o agendamento concluído no máximo uma vez.
// applied=false quando já tinha sido contabilizado ou a categoria não conta.
func (uc *RecordCompletion) Execute(ctx context.Context, ap *models.Appointment) (bool, error) {
	if domain.Status(ap.Status) != domain.StatusCompleted {
		return false, nil
	}

	kind, counts := uc.classifier.Classify(ap.Service.Category, ap.Service.Price, ap.Package.IsPackage)
	if !counts {
		// só marca, para a varredura não voltar nele
		_, err := uc.repo.AccrueOnce(ctx, ap.ID, ap.ClientID, nil)
		return false, err
	}

	now := uc.now()
	applied, err := uc.repo.AccrueOnce(ctx, ap.ID, ap.ClientID, func(acct *models.LoyaltyAccount) error {
		uc.policy.ApplyCompletion(acct, kind, ap.Service.Name, ap.ID, now)
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		uc.audit.Dispatch(audit.Event{
			ActorID:  &ap.ClientID,
			Action:   "loyalty_accrued",
			Entity:   "appointment",
			EntityID: &ap.ID,
			Metadata: map[string]any{"kind": string(kind), "service": ap.Service.Name},
		})
	}
	return applied, nil
}
