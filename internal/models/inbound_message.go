package models

import (
	"time"

	"github.com/google/uuid"
)

// InboundMessage registra cada resposta recebida pelo canal de mensagens,
// chaveada pelo id do provedor, para que reentregas não reapliquem a ação.
type InboundMessage struct {
	MessageID string `gorm:"size:128;primaryKey" json:"message_id"`

	FromContact   string     `gorm:"size:100;index" json:"from_contact"`
	Text          string     `gorm:"type:text" json:"text"`
	Intent        string     `gorm:"size:20" json:"intent"`
	AppointmentID *uuid.UUID `gorm:"type:uuid" json:"appointment_id"`
	Reply         string     `gorm:"type:text" json:"reply"`

	CreatedAt time.Time `json:"created_at"`
}
