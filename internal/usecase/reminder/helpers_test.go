package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *repository.Memory
	email    *notify.Recorder
	message  *notify.Recorder
	notifier *notify.Notifier
	deps     appointmentuc.Deps
	service  models.Service
	status   *appointmentuc.UpdateAppointmentStatus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewMemory()
	f := &fixture{
		repo:    repo,
		email:   &notify.Recorder{},
		message: &notify.Recorder{},
		service: repo.AddService(models.Service{
			Slug: "soin-visage", Name: "Soin visage", Category: "facial",
			DurationMin: 60, Price: decimal.NewFromInt(80), Active: true,
		}),
	}
	f.notifier = notify.NewNotifier(f.email, f.message)
	f.deps = appointmentuc.Deps{
		Repo:           repo,
		Calendar:       calendar.New(15),
		Location:       time.UTC,
		ReminderLead:   24 * time.Hour,
		DefaultDeposit: decimal.NewFromInt(30),
		Now:            func() time.Time { return testNow },
	}
	f.status = appointmentuc.NewUpdateAppointmentStatus(f.deps, nil)

	t.Cleanup(f.notifier.Wait)
	return f
}

// book cria o agendamento sem notificar (o fixture só observa lembretes).
func (f *fixture) book(t *testing.T, email, phone string, start time.Time) *models.Appointment {
	t.Helper()

	ap, err := appointmentuc.NewCreateAppointment(f.deps).Execute(context.Background(), appointmentuc.CreateAppointmentInput{
		ClientName:  "Inès Laurent",
		ClientEmail: email,
		ClientPhone: phone,
		ServiceID:   f.service.ID.String(),
		Start:       start,
	})
	if err != nil {
		t.Fatal(err)
	}
	return ap
}

func (f *fixture) setStatus(t *testing.T, ap *models.Appointment, to domain.Status) {
	t.Helper()

	current, err := f.repo.GetAppointment(context.Background(), ap.ID)
	if err != nil {
		t.Fatal(err)
	}
	op := domain.Actor{ClientID: current.ClientID, Role: models.RoleOperator}
	if _, err := f.status.Apply(context.Background(), current, to, op, ""); err != nil {
		t.Fatal(err)
	}
}
