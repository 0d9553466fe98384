package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrStaleStatus = errors.New("appointment status changed concurrently")
)

// ClientIdentity identifica o cliente pelo e-mail; os demais campos são
// atualizados no lugar quando o cliente já existe.
type ClientIdentity struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
}

type Repository interface {
	// -------- Catalog --------
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (*models.Service, error)

	// -------- Client --------
	UpsertClient(ctx context.Context, in ClientIdentity) (*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindClientByContact(ctx context.Context, contact string) (*models.Client, error)

	// -------- Calendar --------

	// InCalendarTx roda fn com a agenda travada: checagem de conflito e
	// escrita acontecem como uma unidade atômica.
	InCalendarTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error

	// ListBlocking devolve agendamentos não cancelados que tocam [from, to).
	ListBlocking(ctx context.Context, from, to time.Time) ([]models.Appointment, error)

	// -------- Appointment --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error

	// UpdateAppointmentIfStatus grava ap somente se o status persistido
	// ainda for from. Caso contrário devolve ErrStaleStatus.
	UpdateAppointmentIfStatus(ctx context.Context, ap *models.Appointment, from Status) error

	ListAppointmentsForPeriod(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
	ListAppointmentsForClient(ctx context.Context, clientID uuid.UUID) ([]models.Appointment, error)

	// NextActiveForClient: próximo agendamento futuro pendente ou confirmado,
	// preferindo os confirmados.
	NextActiveForClient(ctx context.Context, clientID uuid.UUID, now time.Time) (*models.Appointment, error)

	// -------- Reminders --------
	ListDueReminders(ctx context.Context, now time.Time, limit int) ([]models.Appointment, error)

	// ClaimReminder marca o lembrete como disparado se ninguém o fez antes.
	ClaimReminder(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	MarkReminderDelivered(ctx context.Context, id uuid.UUID, channel string) error

	// -------- Loyalty retry --------
	ListCompletedWithoutAccrual(ctx context.Context, limit int) ([]models.Appointment, error)

	// -------- Inbound replies --------
	FindInbound(ctx context.Context, messageID string) (*models.InboundMessage, error)

	// ClaimInbound grava a mensagem se o id ainda não existe.
	// claimed=false: outra entrega do mesmo id chegou antes.
	ClaimInbound(ctx context.Context, msg *models.InboundMessage) (claimed bool, err error)

	// CompleteInbound grava intenção, agendamento e resposta da mensagem já reivindicada.
	CompleteInbound(ctx context.Context, msg *models.InboundMessage) error
}
