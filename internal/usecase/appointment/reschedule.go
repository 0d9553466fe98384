package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

type RescheduleAppointmentInput struct {
	Actor         domain.Actor
	AppointmentID string
	NewStart      time.Time
}

type RescheduleAppointment struct {
	Deps
}

func NewRescheduleAppointment(deps Deps) *RescheduleAppointment {
	return &RescheduleAppointment{Deps: deps}
}

// Execute move o agendamento. Em conflito nada é alterado.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, error) {

	if in.NewStart.IsZero() {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "new start required")
	}

	apID, err := parseID(in.AppointmentID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if !in.NewStart.After(now) {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "new start must be in the future")
	}

	var ap *models.Appointment
	var oldStart time.Time

	err = uc.Repo.InCalendarTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		current, err := tx.GetAppointment(ctx, apID)
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
		}
		if err != nil {
			return err
		}

		if err := domain.CanActOn(in.Actor, current); err != nil {
			return err
		}
		if domain.Status(current.Status).IsTerminal() {
			return httperr.ErrBusinessDetail(
				httperr.CodeInvalidTransition,
				current.Status+" cannot be rescheduled",
			)
		}

		// A duração vem do snapshot: o catálogo pode ter mudado.
		slot := uc.Calendar.Slot(in.NewStart, current.Service.DurationMin)

		existing, err := tx.ListBlocking(ctx, slot.Start, slot.End)
		if err != nil {
			return err
		}
		if conflicts := uc.Calendar.FindConflicts(existing, in.NewStart, current.Service.DurationMin, current.ID); len(conflicts) > 0 {
			return slotConflict(conflicts)
		}

		from := domain.Status(current.Status)
		oldStart = current.ScheduledStart

		if err := domain.ApplyReschedule(current, slot.Start, slot.End, now); err != nil {
			return err
		}

		// Novo lembrete substitui o anterior.
		current.ReminderDueAt = reminder.DueAt(slot.Start, now, uc.lead())
		current.ReminderSentAt = nil
		current.EmailReminderSent = false
		current.MessageReminderSent = false

		if err := tx.UpdateAppointmentIfStatus(ctx, current, from); err != nil {
			if errors.Is(err, domain.ErrStaleStatus) {
				return httperr.ErrBusiness(httperr.CodeConcurrentUpdate)
			}
			return err
		}

		ap = current
		return nil
	})
	if err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrBusinessDetail(httperr.CodeSlotConflict, "slot already taken")
		}
		return nil, err
	}

	uc.invalidate(ctx)

	actor := in.Actor.ClientID
	uc.Audit.Dispatch(audit.Event{
		ActorID:  &actor,
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"from": oldStart,
			"to":   ap.ScheduledStart,
		},
	})

	uc.notifyClient(ap, notify.TemplateRescheduled)

	return ap, nil
}
