package appointment

import (
	"context"
	"errors"
	"log"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// LoyaltyRecorder contabiliza uma conclusão na fidelidade.
type LoyaltyRecorder interface {
	Execute(ctx context.Context, ap *models.Appointment) (bool, error)
}

type UpdateStatusInput struct {
	Actor         domain.Actor
	AppointmentID string
	Status        string

	// Via entra na nota do admin (ex.: "message channel").
	Via string
}

type UpdateAppointmentStatus struct {
	Deps
	loyalty LoyaltyRecorder
}

func NewUpdateAppointmentStatus(deps Deps, loyalty LoyaltyRecorder) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{Deps: deps, loyalty: loyalty}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	ap, err := loadAppointment(ctx, uc.Repo, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanActOn(in.Actor, ap); err != nil {
		return nil, err
	}
	if domain.OperatorOnly(to) && !in.Actor.IsOperator() {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}

	return uc.Apply(ctx, ap, to, in.Actor, in.Via)
}

// Apply transita um agendamento já carregado (resposta a lembrete usa direto).
func (uc *UpdateAppointmentStatus) Apply(
	ctx context.Context,
	ap *models.Appointment,
	to domain.Status,
	actor domain.Actor,
	via string,
) (*models.Appointment, error) {

	from := domain.Status(ap.Status)
	now := uc.now()

	if err := domain.Transition(ap, to, now, via); err != nil {
		return nil, err
	}

	if err := uc.Repo.UpdateAppointmentIfStatus(ctx, ap, from); err != nil {
		if errors.Is(err, domain.ErrStaleStatus) {
			return nil, httperr.ErrBusinessDetail(httperr.CodeConcurrentUpdate, "status changed, reload and retry")
		}
		return nil, err
	}

	if to == domain.StatusCancelled {
		uc.invalidate(ctx)
	}

	// Fidelidade é efeito derivado: falha aqui fica para a varredura de retry.
	if to == domain.StatusCompleted && uc.loyalty != nil {
		if _, err := uc.loyalty.Execute(ctx, ap); err != nil {
			log.Printf("appointment: loyalty accrual for %s failed, will retry: %v", ap.ID, err)
		}
	}

	actorID := actor.ClientID
	uc.Audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "appointment_" + string(to),
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": string(from), "to": string(to), "via": via},
	})

	if from != to {
		uc.notifyClient(ap, notify.TemplateStatusChanged)
	}

	return ap, nil
}
