package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceSnapshot é copiado do catálogo no momento da reserva.
// Alterações no catálogo nunca reescrevem agendamentos antigos.
type ServiceSnapshot struct {
	ServiceID   uuid.UUID       `gorm:"type:uuid" json:"service_id"`
	Name        string          `gorm:"size:100" json:"name"`
	Category    string          `gorm:"size:50" json:"category"`
	DurationMin int             `json:"duration_min"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
}

type PackageInfo struct {
	IsPackage     bool   `gorm:"default:false" json:"is_package"`
	PackageID     string `gorm:"size:64" json:"package_id,omitempty"`
	SessionNumber int    `json:"session_number,omitempty"`
	TotalSessions int    `json:"total_sessions,omitempty"`
}

type Payment struct {
	Status          string          `gorm:"size:20;default:'unpaid'" json:"status"`
	ServicePrice    decimal.Decimal `gorm:"type:numeric(10,2)" json:"service_price"`
	DepositAmount   decimal.Decimal `gorm:"type:numeric(10,2)" json:"deposit_amount"`
	TotalPaid       decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_paid"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"remaining_amount"`
}

// Recompute mantém RemainingAmount derivado de ServicePrice e TotalPaid.
func (p *Payment) Recompute() {
	p.RemainingAmount = p.ServicePrice.Sub(p.TotalPaid)
}

type Notes struct {
	Client    string `gorm:"type:text" json:"client"`
	Admin     string `gorm:"type:text" json:"admin"`
	Aftercare string `gorm:"type:text" json:"aftercare"`
}

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	Client   Client    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	Service ServiceSnapshot `gorm:"embedded;embeddedPrefix:service_" json:"service"`
	Package PackageInfo     `gorm:"embedded;embeddedPrefix:package_" json:"package"`

	ScheduledStart time.Time `gorm:"index;not null" json:"scheduled_start"`
	ScheduledEnd   time.Time `gorm:"index;not null" json:"scheduled_end"`

	Status    string `gorm:"size:20;index;default:'pending'" json:"status"`
	CreatedBy string `gorm:"size:20;default:'client'" json:"created_by"`

	Payment Payment `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Notes   Notes   `gorm:"embedded;embeddedPrefix:notes_" json:"notes"`

	ReminderDueAt       time.Time  `gorm:"index" json:"reminder_due_at"`
	ReminderSentAt      *time.Time `gorm:"index" json:"reminder_sent_at"`
	EmailReminderSent   bool       `gorm:"default:false" json:"email_reminder_sent"`
	MessageReminderSent bool       `gorm:"default:false" json:"message_reminder_sent"`

	ConfirmedAt      *time.Time `json:"confirmed_at"`
	CancelledAt      *time.Time `json:"cancelled_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	LoyaltyAccruedAt *time.Time `json:"loyalty_accrued_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Payment.Recompute()
	return nil
}

func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	a.Payment.Recompute()
	return nil
}
