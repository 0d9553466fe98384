package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Slug        string          `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:255" json:"description"`
	Category    string          `gorm:"size:50;index" json:"category"`
	DurationMin int             `gorm:"default:60" json:"duration_min"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`
	Order       int             `gorm:"default:0" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Snapshot congela os campos usados pelo agendamento.
func (s *Service) Snapshot() ServiceSnapshot {
	return ServiceSnapshot{
		ServiceID:   s.ID,
		Name:        s.Name,
		Category:    s.Category,
		DurationMin: s.DurationMin,
		Price:       s.Price,
	}
}
