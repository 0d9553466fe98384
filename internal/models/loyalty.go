package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LoyaltyActionSoinCompleted    = "soin_completed"
	LoyaltyActionForfaitCompleted = "forfait_completed"
	LoyaltyActionDiscountEarned   = "discount_earned"
	LoyaltyActionDiscountUsed     = "discount_used"
	LoyaltyActionExceptional      = "exceptional_discount"
)

// LoyaltyAccount é único por cliente. Contadores só crescem.
type LoyaltyAccount struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"client_id"`

	SoinsCount    int `gorm:"default:0" json:"soins_count"`
	ForfaitsCount int `gorm:"default:0" json:"forfaits_count"`

	// Quantas remises já foram geradas pelos limiares (nunca diminui).
	Earned10 int `gorm:"default:0" json:"earned_10"`
	Earned20 int `gorm:"default:0" json:"earned_20"`

	// Saldo de remises ainda não usadas.
	DiscountCredits10 int `gorm:"default:0" json:"discount_credits_10"`
	DiscountCredits20 int `gorm:"default:0" json:"discount_credits_20"`

	TotalVisits    int       `gorm:"default:0" json:"total_visits"`
	LastActivityAt time.Time `gorm:"index" json:"last_activity_at"`

	History       []LoyaltyEvent `gorm:"foreignKey:AccountID" json:"history"`
	DiscountsUsed []DiscountUse  `gorm:"foreignKey:AccountID" json:"discounts_used"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *LoyaltyAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// LoyaltyEvent é append-only.
type LoyaltyEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`

	Action          string     `gorm:"size:30;not null" json:"action"`
	Service         string     `gorm:"size:100" json:"service,omitempty"`
	AppointmentType string     `gorm:"size:20" json:"appointment_type,omitempty"`
	AppointmentID   *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Amount          int        `json:"amount,omitempty"`
	Reason          string     `gorm:"size:255" json:"reason,omitempty"`
	Notes           string     `gorm:"size:255" json:"notes,omitempty"`

	CreatedAt time.Time `json:"date"`
}

func (e *LoyaltyEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type DiscountUse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`

	Amount        int       `json:"amount"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index" json:"appointment_id"`
	Notes         string    `gorm:"size:255" json:"notes,omitempty"`

	CreatedAt time.Time `json:"date"`
}

func (d *DiscountUse) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
