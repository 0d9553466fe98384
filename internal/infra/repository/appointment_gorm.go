package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// Chave do advisory lock que serializa escritas na agenda (uma só profissional).
const calendarLockKey int64 = 0x1A57C0DE

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uuid.UUID,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *AppointmentGormRepository) GetServiceBySlug(
	ctx context.Context,
	slug string,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) UpsertClient(
	ctx context.Context,
	in domain.ClientIdentity,
) (*models.Client, error) {

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var client models.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", email).
			First(&client).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			client = models.Client{
				Name:         strings.TrimSpace(in.Name),
				Email:        email,
				Phone:        strings.TrimSpace(in.Phone),
				PasswordHash: in.PasswordHash,
				Role:         models.RoleClient,
			}
			return tx.Create(&client).Error
		}
		if err != nil {
			return err
		}

		if in.Name != "" {
			client.Name = strings.TrimSpace(in.Name)
		}
		if in.Phone != "" {
			client.Phone = strings.TrimSpace(in.Phone)
		}
		if in.PasswordHash != "" && client.PasswordHash == "" {
			client.PasswordHash = in.PasswordHash
		}
		return tx.Save(&client).Error
	})
	if err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	id uuid.UUID,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (r *AppointmentGormRepository) FindClientByContact(
	ctx context.Context,
	contact string,
) (*models.Client, error) {

	contact = strings.TrimSpace(contact)

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", strings.ToLower(contact), contact).
		Order("created_at ASC").
		First(&client).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

// InCalendarTx serializa quem escreve na agenda com um advisory lock de
// transação. A constraint EXCLUDE continua como última barreira.
func (r *AppointmentGormRepository) InCalendarTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", calendarLockKey).Error; err != nil {
			return err
		}
		return fn(ctx, &AppointmentGormRepository{db: tx})
	})
}

func (r *AppointmentGormRepository) ListBlocking(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"status <> ? AND scheduled_start < ? AND scheduled_end > ?",
			string(domain.StatusCancelled), to, from,
		).
		Order("scheduled_start ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
}

func (r *AppointmentGormRepository) UpdateAppointmentIfStatus(
	ctx context.Context,
	ap *models.Appointment,
	from domain.Status,
) error {

	res := r.db.WithContext(ctx).
		Model(ap).
		Where("status = ?", string(from)).
		Select("*").
		Omit(clause.Associations, "CreatedAt").
		Updates(ap)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleStatus
	}
	return nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("scheduled_start >= ? AND scheduled_start < ?", start, end).
		Order("scheduled_start ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForClient(
	ctx context.Context,
	clientID uuid.UUID,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("scheduled_start DESC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) NextActiveForClient(
	ctx context.Context,
	clientID uuid.UUID,
	now time.Time,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where(
			"client_id = ? AND status IN ? AND scheduled_start > ?",
			clientID,
			[]string{string(domain.StatusConfirmed), string(domain.StatusPending)},
			now,
		).
		Order("CASE WHEN status = 'confirmed' THEN 0 ELSE 1 END, scheduled_start ASC").
		First(&ap).Error

	if err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Reminders
// --------------------------------------------------

func (r *AppointmentGormRepository) ListDueReminders(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where(
			"status IN ? AND reminder_sent_at IS NULL AND reminder_due_at <= ? AND scheduled_start > ?",
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
			now, now,
		).
		Order("reminder_due_at ASC").
		Limit(limit).
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ClaimReminder(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"id = ? AND reminder_sent_at IS NULL AND status IN ?",
			id,
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
		).
		Update("reminder_sent_at", now)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AppointmentGormRepository) MarkReminderDelivered(
	ctx context.Context,
	id uuid.UUID,
	channel string,
) error {

	column := "message_reminder_sent"
	if channel == reminder.ChannelEmail {
		column = "email_reminder_sent"
	}

	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update(column, true).Error
}

// --------------------------------------------------
// Loyalty retry
// --------------------------------------------------

func (r *AppointmentGormRepository) ListCompletedWithoutAccrual(
	ctx context.Context,
	limit int,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ? AND loyalty_accrued_at IS NULL", string(domain.StatusCompleted)).
		Order("completed_at ASC").
		Limit(limit).
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Inbound replies
// --------------------------------------------------

func (r *AppointmentGormRepository) FindInbound(
	ctx context.Context,
	messageID string,
) (*models.InboundMessage, error) {

	var msg models.InboundMessage
	if err := r.db.WithContext(ctx).
		First(&msg, "message_id = ?", messageID).Error; err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

// ClaimInbound: a chave primária em message_id decide quem processa.
func (r *AppointmentGormRepository) ClaimInbound(
	ctx context.Context,
	msg *models.InboundMessage,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(msg)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AppointmentGormRepository) CompleteInbound(
	ctx context.Context,
	msg *models.InboundMessage,
) error {
	return r.db.WithContext(ctx).
		Model(&models.InboundMessage{}).
		Where("message_id = ?", msg.MessageID).
		Updates(map[string]any{
			"intent":         msg.Intent,
			"appointment_id": msg.AppointmentID,
			"reply":          msg.Reply,
		}).Error
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
