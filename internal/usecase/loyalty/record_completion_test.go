package loyalty_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	loyaltyuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/loyalty"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var operator = domain.Actor{ClientID: uuid.New(), Role: models.RoleOperator}

func newRecord(t *testing.T, repo *repository.Memory) *loyaltyuc.RecordCompletion {
	t.Helper()

	policy, classifier, err := config.LoadLoyalty("")
	if err != nil {
		t.Fatal(err)
	}
	return loyaltyuc.NewRecordCompletion(repo, policy, classifier, nil).
		WithClock(func() time.Time { return testNow })
}

// completed grava direto um agendamento já concluído.
func completed(t *testing.T, repo *repository.Memory, clientID uuid.UUID, category string, price int64) *models.Appointment {
	t.Helper()

	now := testNow
	ap := &models.Appointment{
		ClientID: clientID,
		Service: models.ServiceSnapshot{
			Name:        "Service " + category,
			Category:    category,
			DurationMin: 60,
			Price:       decimal.NewFromInt(price),
		},
		ScheduledStart: testNow.Add(-2 * time.Hour),
		ScheduledEnd:   testNow.Add(-45 * time.Minute),
		Status:         string(domain.StatusCompleted),
		CompletedAt:    &now,
	}
	if err := repo.CreateAppointment(context.Background(), ap); err != nil {
		t.Fatal(err)
	}
	return ap
}

func newClient(t *testing.T, repo *repository.Memory) uuid.UUID {
	t.Helper()

	c, err := repo.UpsertClient(context.Background(), domain.ClientIdentity{
		Name:  "Camille Petit",
		Email: uuid.NewString() + "@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func TestRecordCompletionAccruesOnce(t *testing.T) {
	repo := repository.NewMemory()
	record := newRecord(t, repo)
	ctx := context.Background()

	clientID := newClient(t, repo)
	ap := completed(t, repo, clientID, "facial", 80)

	applied, err := record.Execute(ctx, ap)
	if err != nil || !applied {
		t.Fatalf("first: applied=%v err=%v", applied, err)
	}

	applied, err = record.Execute(ctx, ap)
	if err != nil || applied {
		t.Fatalf("second: applied=%v err=%v", applied, err)
	}

	acct, err := repo.GetAccount(ctx, clientID)
	if err != nil {
		t.Fatal(err)
	}
	if acct.SoinsCount != 1 || acct.TotalVisits != 1 {
		t.Errorf("soins=%d visits=%d", acct.SoinsCount, acct.TotalVisits)
	}
}

func TestRecordCompletionFifthSoinEarnsCredit(t *testing.T) {
	repo := repository.NewMemory()
	record := newRecord(t, repo)
	ctx := context.Background()
	clientID := newClient(t, repo)

	for i := 0; i < 5; i++ {
		if _, err := record.Execute(ctx, completed(t, repo, clientID, "facial", 80)); err != nil {
			t.Fatal(err)
		}
	}

	acct, _ := repo.GetAccount(ctx, clientID)
	if acct.DiscountCredits10 != 1 {
		t.Errorf("credits10 = %d, want 1", acct.DiscountCredits10)
	}
}

func TestRecordCompletionExcludedCategoryOnlyMarks(t *testing.T) {
	repo := repository.NewMemory()
	record := newRecord(t, repo)
	ctx := context.Background()
	clientID := newClient(t, repo)

	ap := completed(t, repo, clientID, "led", 40)

	applied, err := record.Execute(ctx, ap)
	if err != nil || applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	if _, err := repo.GetAccount(ctx, clientID); err == nil {
		t.Error("excluded category should not create an account")
	}

	pending, _ := repo.ListCompletedWithoutAccrual(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("excluded completion left for retry: %d", len(pending))
	}
}

func TestRetryAccruals(t *testing.T) {
	repo := repository.NewMemory()
	record := newRecord(t, repo)
	retry := loyaltyuc.NewRetryAccruals(repo, record)
	ctx := context.Background()
	clientID := newClient(t, repo)

	repo.AccrualErr = errors.New("database unavailable")
	ap := completed(t, repo, clientID, "hydrafacial", 190)
	if _, err := record.Execute(ctx, ap); err == nil {
		t.Fatal("expected accrual failure")
	}

	repo.AccrualErr = nil

	n, err := retry.Execute(ctx)
	if err != nil || n != 1 {
		t.Fatalf("retry: n=%d err=%v", n, err)
	}
	n, err = retry.Execute(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second retry: n=%d err=%v", n, err)
	}

	acct, _ := repo.GetAccount(ctx, clientID)
	if acct.ForfaitsCount != 1 {
		t.Errorf("forfaits = %d, want 1", acct.ForfaitsCount)
	}
}

func TestGrantAndRedeem(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	clientID := newClient(t, repo)

	grant := loyaltyuc.NewGrantExceptional(repo, repo, nil)
	redeem := loyaltyuc.NewRedeem(repo, repo, nil)
	ap := completed(t, repo, clientID, "facial", 80)

	if _, err := grant.Execute(ctx, loyaltyuc.GrantInput{Actor: operator, ClientID: clientID, Amount: 20}); !httperr.IsBusiness(err, httperr.CodeValidation) {
		t.Fatalf("grant without reason: got %v", err)
	}

	acct, err := grant.Execute(ctx, loyaltyuc.GrantInput{Actor: operator, ClientID: clientID, Amount: 20, Reason: "réclamation"})
	if err != nil {
		t.Fatal(err)
	}
	if acct.DiscountCredits20 != 1 {
		t.Fatalf("credits20 = %d", acct.DiscountCredits20)
	}

	client := domain.Actor{ClientID: clientID, Role: models.RoleClient}
	if _, err := redeem.Execute(ctx, loyaltyuc.RedeemInput{Actor: client, ClientID: clientID, Amount: 20, AppointmentID: ap.ID}); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Fatalf("client redeeming: got %v", err)
	}

	acct, err = redeem.Execute(ctx, loyaltyuc.RedeemInput{Actor: operator, ClientID: clientID, Amount: 20, AppointmentID: ap.ID})
	if err != nil {
		t.Fatal(err)
	}
	if acct.DiscountCredits20 != 0 || len(acct.DiscountsUsed) != 1 {
		t.Errorf("after redeem: credits20=%d used=%d", acct.DiscountCredits20, len(acct.DiscountsUsed))
	}

	_, err = redeem.Execute(ctx, loyaltyuc.RedeemInput{Actor: operator, ClientID: clientID, Amount: 20, AppointmentID: ap.ID})
	if !httperr.IsBusiness(err, httperr.CodeDiscountUnavailable) {
		t.Fatalf("second redeem: got %v", err)
	}

	other := newClient(t, repo)
	_, err = redeem.Execute(ctx, loyaltyuc.RedeemInput{Actor: operator, ClientID: other, Amount: 10, AppointmentID: ap.ID})
	if !httperr.IsBusiness(err, httperr.CodeValidation) {
		t.Fatalf("foreign appointment: got %v", err)
	}
}

func TestGetAccountCreatesLazily(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	clientID := newClient(t, repo)

	policy, _, _ := config.LoadLoyalty("")
	get := loyaltyuc.NewGetAccount(repo, repo, policy)

	view, err := get.Execute(ctx, domain.Actor{ClientID: clientID, Role: models.RoleClient}, clientID)
	if err != nil {
		t.Fatal(err)
	}
	if view.ClientID != clientID || view.IsExpired {
		t.Errorf("view = %+v", view)
	}

	_, err = get.Execute(ctx, domain.Actor{ClientID: uuid.New(), Role: models.RoleClient}, clientID)
	if !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Errorf("other client: got %v", err)
	}

	_, err = get.Execute(ctx, operator, uuid.New())
	if !httperr.IsBusiness(err, httperr.CodeClientNotFound) {
		t.Errorf("unknown client: got %v", err)
	}
}
