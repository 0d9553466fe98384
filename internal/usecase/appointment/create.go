package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	"github.com/BruksfildServices01/institute-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	Password    string

	ServiceID   string
	ServiceSlug string

	Start time.Time

	// CashPayment já nasce confirmado.
	CashPayment bool

	// Só operador: força o status inicial (pending|confirmed).
	InitialStatus string
	CreatedBy     string

	ClientNote string
	Package    models.PackageInfo
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	Deps
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	return &CreateAppointment{Deps: deps}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Validação
	// --------------------------------------------------
	name := strings.TrimSpace(in.ClientName)
	email := strings.ToLower(strings.TrimSpace(in.ClientEmail))
	if name == "" {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "client name required")
	}
	if !validators.IsEmailFormatValid(email) {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "invalid email")
	}
	if in.Start.IsZero() {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "start required")
	}

	now := uc.now()
	if !in.Start.After(now) {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "start must be in the future")
	}

	status := domain.InitialStatus(in.CashPayment)
	if in.InitialStatus != "" {
		st, err := domain.ParseStatus(in.InitialStatus)
		if err != nil {
			return nil, err
		}
		if st != domain.StatusPending && st != domain.StatusConfirmed {
			return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "initial status must be pending or confirmed")
		}
		status = st
	}

	createdBy := in.CreatedBy
	if createdBy != models.RoleOperator {
		createdBy = models.RoleClient
	}

	var passwordHash string
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hash)
	}

	// --------------------------------------------------
	// 2️⃣ Serviço (snapshot)
	// --------------------------------------------------
	service, err := resolveService(ctx, uc.Repo, in.ServiceID, in.ServiceSlug)
	if err != nil {
		return nil, err
	}

	slot := uc.Calendar.Slot(in.Start, service.DurationMin)

	// --------------------------------------------------
	// 3️⃣ Conflito + escrita na mesma transação
	// --------------------------------------------------
	var ap *models.Appointment
	err = uc.Repo.InCalendarTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		existing, err := tx.ListBlocking(ctx, slot.Start, slot.End)
		if err != nil {
			return err
		}
		if conflicts := uc.Calendar.FindConflicts(existing, in.Start, service.DurationMin, uuid.Nil); len(conflicts) > 0 {
			return slotConflict(conflicts)
		}

		client, err := tx.UpsertClient(ctx, domain.ClientIdentity{
			Name:         name,
			Email:        email,
			Phone:        validators.NormalizePhone(in.ClientPhone),
			PasswordHash: passwordHash,
		})
		if err != nil {
			return err
		}

		ap = &models.Appointment{
			ClientID:       client.ID,
			Client:         *client,
			Service:        service.Snapshot(),
			Package:        in.Package,
			ScheduledStart: slot.Start,
			ScheduledEnd:   slot.End,
			Status:         string(status),
			CreatedBy:      createdBy,
			Payment:        domain.NewPayment(service.Price, uc.DefaultDeposit),
			Notes:          models.Notes{Client: strings.TrimSpace(in.ClientNote)},
			ReminderDueAt:  reminder.DueAt(slot.Start, now, uc.lead()),
		}
		if status == domain.StatusConfirmed {
			ap.ConfirmedAt = &now
		}
		domain.AppendAdminNote(ap, now, "created by "+createdBy+" ("+string(status)+")")

		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrBusinessDetail(httperr.CodeSlotConflict, "slot already taken")
		}
		return nil, err
	}

	// --------------------------------------------------
	// 4️⃣ Efeitos colaterais (nunca falham a reserva)
	// --------------------------------------------------
	uc.invalidate(ctx)

	uc.Audit.Dispatch(audit.Event{
		ActorID:  &ap.ClientID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"service":    ap.Service.Name,
			"start":      ap.ScheduledStart,
			"status":     ap.Status,
			"created_by": ap.CreatedBy,
		},
	})

	uc.notifyClient(ap, notify.TemplateConfirmation)

	return ap, nil
}

// resolveService aceita id ou slug; serviço inativo não é reservável.
func resolveService(
	ctx context.Context,
	repo domain.Repository,
	id string,
	slug string,
) (*models.Service, error) {

	var (
		service *models.Service
		err     error
	)

	switch {
	case id != "":
		sid, perr := parseID(id)
		if perr != nil {
			return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "invalid service id")
		}
		service, err = repo.GetService(ctx, sid)
	case slug != "":
		service, err = repo.GetServiceBySlug(ctx, slug)
	default:
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "service required")
	}

	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness(httperr.CodeServiceNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, httperr.ErrBusinessDetail(httperr.CodeServiceNotFound, "service inactive")
	}
	if service.DurationMin <= 0 {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "service has no duration")
	}
	return service, nil
}

// slotConflict carrega o nome do serviço que já ocupa o horário.
func slotConflict(conflicts []calendar.Conflict) error {
	return httperr.ErrBusinessDetail(httperr.CodeSlotConflict, conflicts[0].ServiceName)
}
