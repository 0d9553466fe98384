package loyalty

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// ======================================================
// GET
// ======================================================

// AccountView acrescenta o aviso de inatividade calculado na leitura.
type AccountView struct {
	*models.LoyaltyAccount
	IsExpired bool `json:"is_expired"`
}

type GetAccount struct {
	repo    loyalty.Repository
	clients domain.Repository
	policy  loyalty.Policy
	now     func() time.Time
}

func NewGetAccount(repo loyalty.Repository, clients domain.Repository, policy loyalty.Policy) *GetAccount {
	return &GetAccount{repo: repo, clients: clients, policy: policy, now: time.Now}
}

// Execute cria a conta na primeira consulta.
func (uc *GetAccount) Execute(ctx context.Context, actor domain.Actor, clientID uuid.UUID) (*AccountView, error) {
	if !actor.IsOperator() && actor.ClientID != clientID {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if err := ensureClient(ctx, uc.clients, clientID); err != nil {
		return nil, err
	}

	acct, err := uc.repo.GetAccount(ctx, clientID)
	if errors.Is(err, loyalty.ErrNotFound) {
		acct, err = uc.repo.UpdateAccount(ctx, clientID, func(*models.LoyaltyAccount) error { return nil })
	}
	if err != nil {
		return nil, err
	}

	return &AccountView{
		LoyaltyAccount: acct,
		IsExpired:      uc.policy.IsExpired(acct, uc.now()),
	}, nil
}

// ======================================================
// GRANT
// ======================================================

type GrantInput struct {
	Actor    domain.Actor
	ClientID uuid.UUID
	Amount   int
	Reason   string
	Notes    string
}

type GrantExceptional struct {
	repo    loyalty.Repository
	clients domain.Repository
	audit   *audit.Dispatcher
}

func NewGrantExceptional(repo loyalty.Repository, clients domain.Repository, audit *audit.Dispatcher) *GrantExceptional {
	return &GrantExceptional{repo: repo, clients: clients, audit: audit}
}

func (uc *GrantExceptional) Execute(ctx context.Context, in GrantInput) (*models.LoyaltyAccount, error) {
	if !in.Actor.IsOperator() {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "reason required")
	}
	if err := ensureClient(ctx, uc.clients, in.ClientID); err != nil {
		return nil, err
	}

	now := time.Now()
	acct, err := uc.repo.UpdateAccount(ctx, in.ClientID, func(acct *models.LoyaltyAccount) error {
		return loyalty.GrantExceptional(acct, in.Amount, in.Reason, in.Notes, now)
	})
	if err != nil {
		return nil, err
	}

	actorID := in.Actor.ClientID
	uc.audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "loyalty_exceptional_discount",
		Entity:   "loyalty_account",
		EntityID: &acct.ID,
		Metadata: map[string]any{"amount": in.Amount, "reason": in.Reason},
	})
	return acct, nil
}

// ======================================================
// REDEEM
// ======================================================

type RedeemInput struct {
	Actor         domain.Actor
	ClientID      uuid.UUID
	Amount        int
	AppointmentID uuid.UUID
	Notes         string
}

type Redeem struct {
	repo    loyalty.Repository
	clients domain.Repository
	audit   *audit.Dispatcher
}

func NewRedeem(repo loyalty.Repository, clients domain.Repository, audit *audit.Dispatcher) *Redeem {
	return &Redeem{repo: repo, clients: clients, audit: audit}
}

func (uc *Redeem) Execute(ctx context.Context, in RedeemInput) (*models.LoyaltyAccount, error) {
	if !in.Actor.IsOperator() {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if err := ensureClient(ctx, uc.clients, in.ClientID); err != nil {
		return nil, err
	}

	ap, err := uc.clients.GetAppointment(ctx, in.AppointmentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
	}
	if err != nil {
		return nil, err
	}
	if ap.ClientID != in.ClientID {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "appointment belongs to another client")
	}

	now := time.Now()
	acct, err := uc.repo.UpdateAccount(ctx, in.ClientID, func(acct *models.LoyaltyAccount) error {
		return loyalty.Redeem(acct, in.Amount, in.AppointmentID, in.Notes, now)
	})
	if err != nil {
		return nil, err
	}

	actorID := in.Actor.ClientID
	uc.audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   "loyalty_discount_used",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"amount": in.Amount},
	})
	return acct, nil
}

func ensureClient(ctx context.Context, clients domain.Repository, id uuid.UUID) error {
	_, err := clients.GetClient(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrBusiness(httperr.CodeClientNotFound)
	}
	return err
}
