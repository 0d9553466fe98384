package appointment

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

type ListClientAppointments struct {
	repo domain.Repository
}

func NewListClientAppointments(repo domain.Repository) *ListClientAppointments {
	return &ListClientAppointments{repo: repo}
}

// Execute devolve os agendamentos do cliente, mais recentes primeiro.
func (uc *ListClientAppointments) Execute(
	ctx context.Context,
	clientID uuid.UUID,
) ([]models.Appointment, error) {
	return uc.repo.ListAppointmentsForClient(ctx, clientID)
}
