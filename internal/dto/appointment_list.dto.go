package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

type AppointmentListDTO struct {
	ID              uuid.UUID       `json:"id"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	Status          string          `json:"status"`
	ClientName      string          `json:"client_name"`
	ServiceName     string          `json:"service_name"`
	PaymentStatus   string          `json:"payment_status"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func AppointmentList(aps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, AppointmentListDTO{
			ID:              ap.ID,
			StartTime:       ap.ScheduledStart,
			EndTime:         ap.ScheduledEnd,
			Status:          ap.Status,
			ClientName:      ap.Client.Name,
			ServiceName:     ap.Service.Name,
			PaymentStatus:   ap.Payment.Status,
			RemainingAmount: ap.Payment.RemainingAmount,
		})
	}
	return out
}

// SlotDTO é a projeção pública de um horário ocupado (sem dados do cliente).
type SlotDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func Slots(in []calendar.Interval) []SlotDTO {
	out := make([]SlotDTO, 0, len(in))
	for _, s := range in {
		out = append(out, SlotDTO{Start: s.Start, End: s.End})
	}
	return out
}
