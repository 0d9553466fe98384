package appointment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// tomorrow às h:m
func tomorrow(h, m int) time.Time {
	return time.Date(2026, 3, 3, h, m, 0, 0, time.UTC)
}

type fixture struct {
	repo     *repository.Memory
	deps     appointmentuc.Deps
	email    *notify.Recorder
	message  *notify.Recorder
	facial   models.Service
	hydra    models.Service
	create   *appointmentuc.CreateAppointment
	notifier *notify.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewMemory()
	f := &fixture{
		repo:    repo,
		email:   &notify.Recorder{},
		message: &notify.Recorder{},
		facial: repo.AddService(models.Service{
			Slug: "soin-visage", Name: "Soin visage", Category: "facial",
			DurationMin: 60, Price: decimal.NewFromInt(120), Active: true,
		}),
		hydra: repo.AddService(models.Service{
			Slug: "hydrafacial", Name: "Hydrafacial", Category: "hydrafacial",
			DurationMin: 90, Price: decimal.NewFromInt(140), Active: true,
		}),
	}
	f.notifier = notify.NewNotifier(f.email, f.message)

	f.deps = appointmentuc.Deps{
		Repo:           repo,
		Calendar:       calendar.New(15),
		Cache:          calendar.NewMemoryCache(time.Minute).WithClock(func() time.Time { return testNow }),
		Notifier:       f.notifier,
		Location:       time.UTC,
		ReminderLead:   24 * time.Hour,
		DefaultDeposit: decimal.NewFromInt(30),
		Now:            func() time.Time { return testNow },
	}
	f.create = appointmentuc.NewCreateAppointment(f.deps)

	t.Cleanup(f.notifier.Wait)
	return f
}

func (f *fixture) book(t *testing.T, svc models.Service, start time.Time, cash bool) *models.Appointment {
	t.Helper()

	ap, err := f.create.Execute(context.Background(), appointmentuc.CreateAppointmentInput{
		ClientName:  gofakeit.Name(),
		ClientEmail: strings.ToLower(gofakeit.Email()),
		ClientPhone: "0612345678",
		ServiceID:   svc.ID.String(),
		Start:       start,
		CashPayment: cash,
	})
	if err != nil {
		t.Fatalf("book %s at %s: %v", svc.Name, start.Format("15:04"), err)
	}
	return ap
}
