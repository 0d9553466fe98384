package loyalty

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

var ErrNotFound = errors.New("loyalty account not found")

type Repository interface {
	// GetAccount carrega conta, histórico e remises usadas.
	GetAccount(ctx context.Context, clientID uuid.UUID) (*models.LoyaltyAccount, error)

	// UpdateAccount carrega (ou cria) a conta com lock, aplica fn e grava
	// os contadores e as linhas novas de histórico. Se fn falhar nada é gravado.
	UpdateAccount(
		ctx context.Context,
		clientID uuid.UUID,
		fn func(acct *models.LoyaltyAccount) error,
	) (*models.LoyaltyAccount, error)

	// AccrueOnce é UpdateAccount + marcação de loyalty_accrued_at no
	// agendamento, na mesma transação. applied=false se já estava marcado.
	// fn nil só marca o agendamento (categoria fora da fidelidade).
	AccrueOnce(
		ctx context.Context,
		appointmentID uuid.UUID,
		clientID uuid.UUID,
		fn func(acct *models.LoyaltyAccount) error,
	) (applied bool, err error)
}
