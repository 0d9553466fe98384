package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	"github.com/BruksfildServices01/institute-scheduler/internal/timezone"
)

// Deps agrupa o que os casos de uso de agendamento compartilham.
type Deps struct {
	Repo     domain.Repository
	Calendar calendar.Calendar
	Cache    calendar.SlotCache
	Audit    *audit.Dispatcher
	Notifier *notify.Notifier

	Location       *time.Location
	ReminderLead   time.Duration
	DefaultDeposit decimal.Decimal

	// Now é o relógio (substituído nos testes).
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().In(d.location())
	}
	return time.Now().In(d.location())
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return timezone.Location(timezone.DefaultTimezone)
}

func (d Deps) lead() time.Duration {
	if d.ReminderLead > 0 {
		return d.ReminderLead
	}
	return reminder.DefaultLead
}

func (d Deps) invalidate(ctx context.Context) {
	if d.Cache != nil {
		d.Cache.Invalidate(ctx)
	}
}

// loadAppointment traduz not found para o erro de negócio.
func loadAppointment(ctx context.Context, repo domain.Repository, id string) (*models.Appointment, error) {
	apID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ap, err := repo.GetAppointment(ctx, apID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
		}
		return nil, err
	}
	return ap, nil
}

// notifyParams monta os parâmetros comuns dos templates.
func (d Deps) notifyParams(ap *models.Appointment) map[string]any {
	return map[string]any{
		"ClientName":  ap.Client.Name,
		"ServiceName": ap.Service.Name,
		"Start":       ap.ScheduledStart.In(d.location()).Format("02/01/2006 15:04"),
		"Status":      ap.Status,
		"Deposit":     ap.Payment.DepositAmount.StringFixed(2),
		"Remaining":   ap.Payment.RemainingAmount.StringFixed(2),
	}
}

// notifyClient dispara nos dois canais sem esperar.
func (d Deps) notifyClient(ap *models.Appointment, template string) {
	if d.Notifier == nil {
		return
	}
	params := d.notifyParams(ap)
	d.Notifier.SendAsync(reminder.ChannelEmail, ap.Client.Email, template, params)
	d.Notifier.SendAsync(reminder.ChannelMessage, ap.Client.Phone, template, params)
}
