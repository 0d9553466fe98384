// Package loyalty holds the pure rules of the loyalty ledger: visit counters,
// threshold-based discount credits, manual grants, redemptions and the
// advisory inactivity check. Every mutation appends to the account history.
package loyalty

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

const (
	Discount10 = 10
	Discount20 = 20
)

type Policy struct {
	SoinThreshold    int
	ForfaitThreshold int
	ExpiryMonths     int
}

func DefaultPolicy() Policy {
	return Policy{SoinThreshold: 5, ForfaitThreshold: 2, ExpiryMonths: 12}
}

// ApplyCompletion contabiliza uma visita concluída.
//
// Os créditos vêm de floor(contador / limiar). Earned10/Earned20 guardam
// quanto já foi gerado, então recalcular com os mesmos contadores nunca
// gera crédito de novo, mesmo depois de um resgate.
func (p Policy) ApplyCompletion(
	acct *models.LoyaltyAccount,
	kind Kind,
	serviceName string,
	appointmentID uuid.UUID,
	now time.Time,
) {
	acct.TotalVisits++
	acct.LastActivityAt = now

	apID := appointmentID
	action := models.LoyaltyActionSoinCompleted
	if kind == KindForfait {
		action = models.LoyaltyActionForfaitCompleted
	}
	appendHistory(acct, models.LoyaltyEvent{
		Action:          action,
		Service:         serviceName,
		AppointmentType: string(kind),
		AppointmentID:   &apID,
		CreatedAt:       now,
	})

	switch kind {
	case KindSoin:
		acct.SoinsCount++
		earned := acct.SoinsCount / p.SoinThreshold
		if earned > acct.Earned10 {
			acct.DiscountCredits10 += earned - acct.Earned10
			acct.Earned10 = earned
			appendHistory(acct, models.LoyaltyEvent{
				Action:    models.LoyaltyActionDiscountEarned,
				Amount:    Discount10,
				Notes:     fmt.Sprintf("-10 earned (%d soins)", acct.SoinsCount),
				CreatedAt: now,
			})
		}
	case KindForfait:
		acct.ForfaitsCount++
		earned := acct.ForfaitsCount / p.ForfaitThreshold
		if earned > acct.Earned20 {
			acct.DiscountCredits20 += earned - acct.Earned20
			acct.Earned20 = earned
			appendHistory(acct, models.LoyaltyEvent{
				Action:    models.LoyaltyActionDiscountEarned,
				Amount:    Discount20,
				Notes:     fmt.Sprintf("-20 earned (%d forfaits)", acct.ForfaitsCount),
				CreatedAt: now,
			})
		}
	}
}

// GrantExceptional concede uma remise fora dos limiares.
func GrantExceptional(acct *models.LoyaltyAccount, amount int, reason, notes string, now time.Time) error {
	switch amount {
	case Discount10:
		acct.DiscountCredits10++
	case Discount20:
		acct.DiscountCredits20++
	default:
		return httperr.ErrBusinessDetail(
			httperr.CodeInvalidDiscountAmount,
			fmt.Sprintf("amount %d not in {10, 20}", amount),
		)
	}

	appendHistory(acct, models.LoyaltyEvent{
		Action:    models.LoyaltyActionExceptional,
		Amount:    amount,
		Reason:    reason,
		Notes:     notes,
		CreatedAt: now,
	})
	return nil
}

// Redeem consome uma remise num agendamento.
func Redeem(acct *models.LoyaltyAccount, amount int, appointmentID uuid.UUID, notes string, now time.Time) error {
	switch amount {
	case Discount10:
		if acct.DiscountCredits10 <= 0 {
			return httperr.ErrBusinessDetail(httperr.CodeDiscountUnavailable, "no -10 credit")
		}
		acct.DiscountCredits10--
	case Discount20:
		if acct.DiscountCredits20 <= 0 {
			return httperr.ErrBusinessDetail(httperr.CodeDiscountUnavailable, "no -20 credit")
		}
		acct.DiscountCredits20--
	default:
		return httperr.ErrBusinessDetail(
			httperr.CodeInvalidDiscountAmount,
			fmt.Sprintf("amount %d not in {10, 20}", amount),
		)
	}

	if notes == "" {
		notes = fmt.Sprintf("-%d used", amount)
	}

	acct.DiscountsUsed = append(acct.DiscountsUsed, models.DiscountUse{
		AccountID:     acct.ID,
		Amount:        amount,
		AppointmentID: appointmentID,
		Notes:         notes,
		CreatedAt:     now,
	})

	apID := appointmentID
	appendHistory(acct, models.LoyaltyEvent{
		Action:        models.LoyaltyActionDiscountUsed,
		Amount:        amount,
		AppointmentID: &apID,
		Notes:         notes,
		CreatedAt:     now,
	})
	return nil
}

// IsExpired é só um aviso: nada é zerado.
func (p Policy) IsExpired(acct *models.LoyaltyAccount, now time.Time) bool {
	months := p.ExpiryMonths
	if months <= 0 {
		months = 12
	}
	return acct.LastActivityAt.Before(now.AddDate(0, -months, 0))
}

func appendHistory(acct *models.LoyaltyAccount, ev models.LoyaltyEvent) {
	ev.AccountID = acct.ID
	acct.History = append(acct.History, ev)
}
