package httperr

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeSlotConflict          = "slot_conflict"
	CodeInvalidTransition     = "invalid_transition"
	CodeAppointmentNotFound   = "appointment_not_found"
	CodeClientNotFound        = "client_not_found"
	CodeServiceNotFound       = "service_not_found"
	CodeLoyaltyNotFound       = "loyalty_not_found"
	CodeForbidden             = "forbidden"
	CodeInvalidDiscountAmount = "invalid_discount_amount"
	CodeDiscountUnavailable   = "discount_unavailable"
	CodeValidation            = "validation_error"
	CodeConcurrentUpdate      = "concurrent_update"
)

type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessDetail(code, detail string) error {
	return BusinessError{Code: code, Detail: detail}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// AsBusiness devolve o erro de negócio embrulhado em err, se houver.
func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

// IsExclusionConflict detecta a violação da constraint EXCLUDE
// que impede dois horários sobrepostos no banco (SQLSTATE 23P01).
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01"
	}
	return false
}

// StatusFor mapeia um erro de negócio para o status HTTP.
func StatusFor(err error) int {
	be, ok := AsBusiness(err)
	if !ok {
		if IsExclusionConflict(err) {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	}

	switch be.Code {
	case CodeSlotConflict, CodeInvalidTransition, CodeConcurrentUpdate:
		return http.StatusConflict
	case CodeAppointmentNotFound, CodeClientNotFound, CodeServiceNotFound, CodeLoyaltyNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidDiscountAmount, CodeDiscountUnavailable, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
