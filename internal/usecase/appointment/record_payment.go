package appointment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

type RecordPaymentInput struct {
	Actor         domain.Actor
	AppointmentID string
	Amount        decimal.Decimal
	Status        string
}

type RecordPayment struct {
	Deps
}

func NewRecordPayment(deps Deps) *RecordPayment {
	return &RecordPayment{Deps: deps}
}

// Execute registra um pagamento recebido; nada é cobrado aqui.
func (uc *RecordPayment) Execute(
	ctx context.Context,
	in RecordPaymentInput,
) (*models.Appointment, error) {

	if !in.Actor.IsOperator() {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}

	ap, err := loadAppointment(ctx, uc.Repo, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	from := domain.Status(ap.Status)
	if err := domain.RecordPayment(ap, in.Amount, in.Status, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.Repo.UpdateAppointmentIfStatus(ctx, ap, from); err != nil {
		if errors.Is(err, domain.ErrStaleStatus) {
			return nil, httperr.ErrBusinessDetail(httperr.CodeConcurrentUpdate, "status changed, reload and retry")
		}
		return nil, err
	}

	actorID := in.Actor.ClientID
	uc.Audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "payment_recorded",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"amount":    in.Amount.StringFixed(2),
			"status":    in.Status,
			"remaining": ap.Payment.RemainingAmount.StringFixed(2),
		},
	})

	return ap, nil
}
