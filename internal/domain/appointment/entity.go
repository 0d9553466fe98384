package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// ===============================
// Actor
// ===============================

type Actor struct {
	ClientID uuid.UUID
	Role     string
}

func (a Actor) IsOperator() bool {
	return a.Role == models.RoleOperator
}

// CanActOn: dono do agendamento ou operador.
func CanActOn(actor Actor, ap *models.Appointment) error {
	if actor.IsOperator() || (actor.ClientID != uuid.Nil && actor.ClientID == ap.ClientID) {
		return nil
	}
	return httperr.ErrBusiness(httperr.CodeForbidden)
}

// ===============================
// Domain Actions
// ===============================

// Transition aplica uma mudança de status da tabela de transições.
func Transition(ap *models.Appointment, to Status, now time.Time, via string) error {
	from := Status(ap.Status)
	if err := CanTransition(from, to); err != nil {
		return err
	}

	ap.Status = string(to)

	switch to {
	case StatusConfirmed:
		ap.ConfirmedAt = &now
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}

	note := string(to)
	if via != "" {
		note += " via " + via
	}
	AppendAdminNote(ap, now, note)
	return nil
}

// ApplyReschedule move o agendamento para o novo intervalo já validado.
// Um pedido "to_reschedule" volta a ficar confirmado.
func ApplyReschedule(ap *models.Appointment, start, end, now time.Time) error {
	from := Status(ap.Status)
	if from.IsTerminal() {
		return httperr.ErrBusinessDetail(
			httperr.CodeInvalidTransition,
			string(from)+" cannot be rescheduled",
		)
	}

	old := ap.ScheduledStart
	ap.ScheduledStart = start
	ap.ScheduledEnd = end

	if from == StatusToReschedule {
		ap.Status = string(StatusConfirmed)
		ap.ConfirmedAt = &now
	}

	AppendAdminNote(ap, now, fmt.Sprintf(
		"rescheduled from %s to %s",
		old.Format(time.RFC3339),
		start.Format(time.RFC3339),
	))
	return nil
}

// AppendAdminNote: a nota do admin é uma trilha, nunca reescrita.
func AppendAdminNote(ap *models.Appointment, now time.Time, text string) {
	line := fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04"), strings.TrimSpace(text))
	if ap.Notes.Admin == "" {
		ap.Notes.Admin = line
		return
	}
	ap.Notes.Admin += "\n" + line
}

// RecordPayment soma um pagamento ao total pago. Valor negativo só
// em reembolso.
func RecordPayment(ap *models.Appointment, amount decimal.Decimal, status string, now time.Time) error {
	if !ValidPaymentStatus(status) {
		return httperr.ErrBusinessDetail(httperr.CodeValidation, "invalid payment status")
	}
	if amount.IsNegative() && status != PaymentRefunded {
		return httperr.ErrBusinessDetail(httperr.CodeValidation, "negative amount outside refund")
	}

	ap.Payment.TotalPaid = ap.Payment.TotalPaid.Add(amount)
	ap.Payment.Status = status
	ap.Payment.Recompute()

	AppendAdminNote(ap, now, fmt.Sprintf("payment %s (%s)", amount.StringFixed(2), status))
	return nil
}

// NewPayment monta o bloco de pagamento inicial a partir do preço congelado.
func NewPayment(price, deposit decimal.Decimal) models.Payment {
	if deposit.GreaterThan(price) {
		deposit = price
	}
	p := models.Payment{
		Status:        PaymentUnpaid,
		ServicePrice:  price,
		DepositAmount: deposit,
		TotalPaid:     decimal.Zero,
	}
	p.Recompute()
	return p
}
