package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// Sink grava um evento de auditoria.
type Sink interface {
	Log(ev Event) error
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ev Event) error {
	log := models.AuditLog{
		ActorID:        ev.ActorID,
		Action:         ev.Action,
		Entity:         ev.Entity,
		EntityID:       ev.EntityID,
		Metadata:       ev.MetadataJSON(),
		OperatorFacing: ev.OperatorFacing,
	}

	return l.db.Create(&log).Error
}

func (ev Event) MetadataJSON() string {
	if ev.Metadata == nil {
		return ""
	}
	b, err := json.Marshal(ev.Metadata)
	if err != nil {
		return ""
	}
	return string(b)
}
