package loyalty

import (
	"context"
	"log"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
)

const retryBatch = 100

// RetryAccruals reprocessa conclusões que ficaram sem fidelidade
// (ex.: banco indisponível no momento da conclusão).
type RetryAccruals struct {
	appointments domain.Repository
	record       *RecordCompletion
}

func NewRetryAccruals(appointments domain.Repository, record *RecordCompletion) *RetryAccruals {
	return &RetryAccruals{appointments: appointments, record: record}
}

// Execute devolve quantas contabilizações foram aplicadas.
func (uc *RetryAccruals) Execute(ctx context.Context) (int, error) {
	pending, err := uc.appointments.ListCompletedWithoutAccrual(ctx, retryBatch)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range pending {
		ok, err := uc.record.Execute(ctx, &pending[i])
		if err != nil {
			log.Printf("loyalty: retry accrual for %s: %v", pending[i].ID, err)
			continue
		}
		if ok {
			applied++
		}
	}

	if len(pending) > 0 {
		log.Printf("loyalty: retry sweep processed=%d applied=%d", len(pending), applied)
	}
	return applied, nil
}
