package loyalty

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func countAction(acct *models.LoyaltyAccount, action string) int {
	n := 0
	for _, ev := range acct.History {
		if ev.Action == action {
			n++
		}
	}
	return n
}

func completeN(p Policy, acct *models.LoyaltyAccount, kind Kind, n int) {
	for i := 0; i < n; i++ {
		p.ApplyCompletion(acct, kind, "Soin visage", uuid.New(), now)
	}
}

func TestFiveSoinsEarnOneCredit(t *testing.T) {
	p := DefaultPolicy()
	acct := &models.LoyaltyAccount{}

	completeN(p, acct, KindSoin, 5)

	if acct.DiscountCredits10 != 1 {
		t.Fatalf("credits10 = %d, want 1", acct.DiscountCredits10)
	}
	if got := countAction(acct, models.LoyaltyActionDiscountEarned); got != 1 {
		t.Fatalf("discount_earned events = %d, want 1", got)
	}

	completeN(p, acct, KindSoin, 1)

	if acct.DiscountCredits10 != 1 {
		t.Errorf("6th soin changed credits to %d", acct.DiscountCredits10)
	}
	if got := countAction(acct, models.LoyaltyActionDiscountEarned); got != 1 {
		t.Errorf("6th soin added discount_earned (%d)", got)
	}
	if acct.TotalVisits != 6 || acct.SoinsCount != 6 {
		t.Errorf("visits=%d soins=%d", acct.TotalVisits, acct.SoinsCount)
	}
}

func TestTwoForfaitsEarnMinusTwenty(t *testing.T) {
	p := DefaultPolicy()
	acct := &models.LoyaltyAccount{}

	completeN(p, acct, KindForfait, 2)

	if acct.DiscountCredits20 != 1 || acct.DiscountCredits10 != 0 {
		t.Fatalf("credits10=%d credits20=%d", acct.DiscountCredits10, acct.DiscountCredits20)
	}
	if got := countAction(acct, models.LoyaltyActionForfaitCompleted); got != 2 {
		t.Errorf("forfait_completed events = %d", got)
	}
}

func TestRedeemThenCompleteDoesNotRegrant(t *testing.T) {
	p := DefaultPolicy()
	acct := &models.LoyaltyAccount{}

	completeN(p, acct, KindSoin, 5)
	if err := Redeem(acct, Discount10, uuid.New(), "", now); err != nil {
		t.Fatal(err)
	}
	if acct.DiscountCredits10 != 0 {
		t.Fatalf("credits after redeem = %d", acct.DiscountCredits10)
	}

	completeN(p, acct, KindSoin, 1)
	if acct.DiscountCredits10 != 0 {
		t.Fatalf("6th soin re-granted a credit")
	}

	completeN(p, acct, KindSoin, 4)
	if acct.DiscountCredits10 != 1 || acct.Earned10 != 2 {
		t.Errorf("after 10 soins: credits=%d earned=%d", acct.DiscountCredits10, acct.Earned10)
	}
	if len(acct.DiscountsUsed) != 1 || acct.DiscountsUsed[0].Notes != "-10 used" {
		t.Errorf("discounts used = %+v", acct.DiscountsUsed)
	}
}

func TestRedeemUnavailable(t *testing.T) {
	acct := &models.LoyaltyAccount{}

	for _, amount := range []int{Discount10, Discount20} {
		err := Redeem(acct, amount, uuid.New(), "", now)
		if !httperr.IsBusiness(err, httperr.CodeDiscountUnavailable) {
			t.Errorf("redeem %d at zero: got %v", amount, err)
		}
	}
	if len(acct.History) != 0 {
		t.Error("failed redeem must not write history")
	}
}

func TestGrantExceptional(t *testing.T) {
	tests := []struct {
		amount  int
		wantErr bool
	}{
		{Discount10, false},
		{Discount20, false},
		{15, true},
		{0, true},
	}

	for _, tt := range tests {
		acct := &models.LoyaltyAccount{}
		err := GrantExceptional(acct, tt.amount, "birthday", "", now)

		if tt.wantErr {
			if !httperr.IsBusiness(err, httperr.CodeInvalidDiscountAmount) {
				t.Errorf("amount %d: got %v", tt.amount, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("amount %d: %v", tt.amount, err)
		}
		if acct.DiscountCredits10+acct.DiscountCredits20 != 1 {
			t.Errorf("amount %d: credits not added", tt.amount)
		}
		if acct.History[0].Reason != "birthday" {
			t.Errorf("amount %d: reason not recorded", tt.amount)
		}
	}
}

func TestIsExpired(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		last time.Time
		want bool
	}{
		{"recent", now.AddDate(0, -11, 0), false},
		{"inactive", now.AddDate(0, -13, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := &models.LoyaltyAccount{LastActivityAt: tt.last, DiscountCredits10: 2}
			if got := p.IsExpired(acct, now); got != tt.want {
				t.Errorf("IsExpired = %v, want %v", got, tt.want)
			}
			if acct.DiscountCredits10 != 2 {
				t.Error("expiry check must not touch credits")
			}
		})
	}
}
