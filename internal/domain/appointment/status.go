package appointment

import "github.com/BruksfildServices01/institute-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending      Status = "pending"
	StatusConfirmed    Status = "confirmed"
	StatusToReschedule Status = "to_reschedule"
	StatusCancelled    Status = "cancelled"
	StatusCompleted    Status = "completed"
	StatusNoShow       Status = "no_show"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusToReschedule,
		StatusCancelled, StatusCompleted, StatusNoShow:
		return st, nil
	}
	return "", httperr.ErrBusinessDetail(httperr.CodeValidation, "unknown status "+s)
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// RemindersApply indica se ainda faz sentido lembrar o cliente.
func (s Status) RemindersApply() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ===============================
// Transitions
// ===============================

// Reagendar com nova data não está aqui: ver ApplyReschedule.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed:    true,
		StatusToReschedule: true,
		StatusCancelled:    true,
	},
	StatusConfirmed: {
		StatusConfirmed:    true,
		StatusToReschedule: true,
		StatusCancelled:    true,
		StatusCompleted:    true,
		StatusNoShow:       true,
	},
	StatusToReschedule: {
		StatusCancelled: true,
	},
}

// CanTransition define se from → to é permitido.
func CanTransition(from, to Status) error {
	if allowed := transitions[from]; allowed[to] {
		return nil
	}
	return httperr.ErrBusinessDetail(
		httperr.CodeInvalidTransition,
		string(from)+" -> "+string(to),
	)
}

// OperatorOnly: só o instituto marca presença ou ausência.
func OperatorOnly(to Status) bool {
	return to == StatusCompleted || to == StatusNoShow
}

// InitialStatus: pagamento em dinheiro já entra confirmado.
func InitialStatus(cashPayment bool) Status {
	if cashPayment {
		return StatusConfirmed
	}
	return StatusPending
}

// ===============================
// Payment Status
// ===============================

const (
	PaymentUnpaid      = "unpaid"
	PaymentDepositPaid = "deposit_paid"
	PaymentPaidInFull  = "paid_in_full"
	PaymentRefunded    = "refunded"
)

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentDepositPaid, PaymentPaidInFull, PaymentRefunded:
		return true
	}
	return false
}
