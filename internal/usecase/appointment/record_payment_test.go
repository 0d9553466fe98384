package appointment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	uc := appointmentuc.NewRecordPayment(f.deps)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), false) // 120

	got, err := uc.Execute(ctx, appointmentuc.RecordPaymentInput{
		Actor:         operator,
		AppointmentID: ap.ID.String(),
		Amount:        decimal.NewFromInt(60),
		Status:        domain.PaymentDepositPaid,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Payment.RemainingAmount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("remaining = %s, want 60", got.Payment.RemainingAmount)
	}

	stored, _ := f.repo.GetAppointment(ctx, ap.ID)
	if !stored.Payment.TotalPaid.Equal(decimal.NewFromInt(60)) {
		t.Errorf("stored total = %s", stored.Payment.TotalPaid)
	}

	_, err = uc.Execute(ctx, appointmentuc.RecordPaymentInput{
		Actor:         domain.Actor{ClientID: ap.ClientID, Role: models.RoleClient},
		AppointmentID: ap.ID.String(),
		Amount:        decimal.NewFromInt(60),
		Status:        domain.PaymentPaidInFull,
	})
	if !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Errorf("client paying: got %v", err)
	}
}
