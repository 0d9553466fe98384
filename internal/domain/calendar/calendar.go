// Package calendar computes occupied time ranges for the single practitioner
// and detects overlap between a candidate slot and existing bookings.
// Everything here is a pure function of its inputs.
package calendar

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

const DefaultBufferMinutes = 15

// Interval é semiaberto: [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

type Conflict struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	ServiceName   string    `json:"service_name"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

type Calendar struct {
	Buffer time.Duration
}

func New(bufferMinutes int) Calendar {
	if bufferMinutes < 0 {
		bufferMinutes = DefaultBufferMinutes
	}
	return Calendar{Buffer: time.Duration(bufferMinutes) * time.Minute}
}

// Slot devolve o intervalo reservado: duração do serviço + preparação.
func (c Calendar) Slot(start time.Time, durationMin int) Interval {
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMin)*time.Minute + c.Buffer),
	}
}

// FindConflicts lista os agendamentos não cancelados que colidem com o
// candidato. excludeID (uuid.Nil para nenhum) ignora o próprio agendamento
// num reagendamento. Não filtra por passado/futuro.
func (c Calendar) FindConflicts(
	existing []models.Appointment,
	start time.Time,
	durationMin int,
	excludeID uuid.UUID,
) []Conflict {

	candidate := c.Slot(start, durationMin)

	var out []Conflict
	for _, ap := range existing {
		if excludeID != uuid.Nil && ap.ID == excludeID {
			continue
		}
		if !Blocks(ap) {
			continue
		}
		if candidate.Overlaps(Interval{Start: ap.ScheduledStart, End: ap.ScheduledEnd}) {
			out = append(out, Conflict{
				AppointmentID: ap.ID,
				ServiceName:   ap.Service.Name,
				Start:         ap.ScheduledStart,
				End:           ap.ScheduledEnd,
			})
		}
	}
	return out
}

// Blocks indica se o agendamento ocupa a agenda.
func Blocks(ap models.Appointment) bool {
	return appointment.Status(ap.Status) != appointment.StatusCancelled
}

// Occupied projeta os horários ocupados que ainda não terminaram em now,
// ordenados pelo início.
func Occupied(existing []models.Appointment, now time.Time) []Interval {
	out := make([]Interval, 0, len(existing))
	for _, ap := range existing {
		if !Blocks(ap) || !ap.ScheduledEnd.After(now) {
			continue
		}
		out = append(out, Interval{Start: ap.ScheduledStart, End: ap.ScheduledEnd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// After filtra uma projeção já calculada (ex.: vinda do cache).
func After(slots []Interval, from time.Time) []Interval {
	out := make([]Interval, 0, len(slots))
	for _, s := range slots {
		if s.End.After(from) {
			out = append(out, s)
		}
	}
	return out
}
