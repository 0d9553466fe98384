package appointment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

var operator = domain.Actor{ClientID: uuid.New(), Role: models.RoleOperator}

type loyaltySpy struct {
	calls []uuid.UUID
}

func (s *loyaltySpy) Execute(ctx context.Context, ap *models.Appointment) (bool, error) {
	s.calls = append(s.calls, ap.ID)
	return true, nil
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	spy := &loyaltySpy{}
	uc := appointmentuc.NewUpdateAppointmentStatus(f.deps, spy)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), false)
	owner := domain.Actor{ClientID: ap.ClientID, Role: models.RoleClient}
	stranger := domain.Actor{ClientID: uuid.New(), Role: models.RoleClient}

	if _, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: stranger, AppointmentID: ap.ID.String(), Status: "confirmed"}); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Fatalf("stranger: got %v", err)
	}

	got, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: owner, AppointmentID: ap.ID.String(), Status: "confirmed"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "confirmed" {
		t.Fatalf("status = %s", got.Status)
	}

	if _, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: owner, AppointmentID: ap.ID.String(), Status: "completed"}); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Fatalf("client completing: got %v", err)
	}

	if _, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "completed"}); err != nil {
		t.Fatal(err)
	}
	if len(spy.calls) != 1 || spy.calls[0] != ap.ID {
		t.Errorf("loyalty calls = %v", spy.calls)
	}

	_, err = uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "cancelled"})
	if !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Fatalf("completed -> cancelled: got %v", err)
	}
}

func TestCancelledCannotComplete(t *testing.T) {
	f := newFixture(t)
	uc := appointmentuc.NewUpdateAppointmentStatus(f.deps, nil)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), true)

	if _, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "cancelled"}); err != nil {
		t.Fatal(err)
	}

	_, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "completed"})
	if !httperr.IsBusiness(err, httperr.CodeInvalidTransition) {
		t.Fatalf("want invalid_transition, got %v", err)
	}

	stored, _ := f.repo.GetAppointment(ctx, ap.ID)
	if stored.Status != "cancelled" || stored.CompletedAt != nil {
		t.Errorf("stored = %s completed_at=%v", stored.Status, stored.CompletedAt)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	f := newFixture(t)
	uc := appointmentuc.NewUpdateAppointmentStatus(f.deps, nil)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), false)
	if _, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "cancelled"}); err != nil {
		t.Fatal(err)
	}

	f.book(t, f.facial, tomorrow(10, 0), false)
}

func TestUpdateStatusStale(t *testing.T) {
	f := newFixture(t)
	uc := appointmentuc.NewUpdateAppointmentStatus(f.deps, nil)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), false)

	// cópia carregada antes de outra escrita
	stale, _ := f.repo.GetAppointment(ctx, ap.ID)

	if _, err := uc.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "confirmed"}); err != nil {
		t.Fatal(err)
	}

	_, err := uc.Apply(ctx, stale, domain.StatusCancelled, operator, "")
	if !httperr.IsBusiness(err, httperr.CodeConcurrentUpdate) {
		t.Fatalf("want concurrent_update, got %v", err)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	f := newFixture(t)
	uc := appointmentuc.NewUpdateAppointmentStatus(f.deps, nil)

	ap := f.book(t, f.facial, tomorrow(10, 0), false)

	_, err := uc.Execute(context.Background(), appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: "postponed"})
	if !httperr.IsBusiness(err, httperr.CodeValidation) {
		t.Fatalf("want validation_error, got %v", err)
	}
}
