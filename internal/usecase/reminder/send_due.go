package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

const (
	sweepLockKey = "reminder-sweep"
	sweepBatch   = 200
)

// SendDueReminders é a varredura periódica dos lembretes vencidos.
// O lembrete é "reivindicado" antes do envio, então cada agendamento
// recebe no máximo um, mesmo com várias instâncias.
type SendDueReminders struct {
	repo     domain.Repository
	notifier *notify.Notifier
	locker   lock.Locker
	loc      *time.Location
	baseURL  string
	now      func() time.Time
}

func NewSendDueReminders(
	repo domain.Repository,
	notifier *notify.Notifier,
	locker lock.Locker,
	loc *time.Location,
	baseURL string,
) *SendDueReminders {
	return &SendDueReminders{
		repo:     repo,
		notifier: notifier,
		locker:   locker,
		loc:      loc,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

func (uc *SendDueReminders) WithClock(now func() time.Time) *SendDueReminders {
	uc.now = now
	return uc
}

// Execute devolve quantos lembretes foram disparados.
func (uc *SendDueReminders) Execute(ctx context.Context) (int, error) {
	if uc.locker == nil {
		return uc.sweep(ctx)
	}

	sent := 0
	err := uc.locker.WithLock(ctx, sweepLockKey, func(ctx context.Context) error {
		var err error
		sent, err = uc.sweep(ctx)
		return err
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		// outra instância está varrendo
		return 0, nil
	}
	return sent, err
}

func (uc *SendDueReminders) sweep(ctx context.Context) (int, error) {
	now := uc.now()

	due, err := uc.repo.ListDueReminders(ctx, now, sweepBatch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		ap := &due[i]

		claimed, err := uc.repo.ClaimReminder(ctx, ap.ID, now)
		if err != nil {
			log.Printf("reminder: claim %s: %v", ap.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		uc.deliver(ctx, ap)
		sent++
	}

	return sent, nil
}

// deliver tenta os dois canais; falhas só vão para o log.
func (uc *SendDueReminders) deliver(ctx context.Context, ap *models.Appointment) {
	params := uc.params(ap)

	channels := []struct {
		name    string
		contact string
	}{
		{reminder.ChannelEmail, ap.Client.Email},
		{reminder.ChannelMessage, ap.Client.Phone},
	}

	for _, ch := range channels {
		if ch.contact == "" {
			continue
		}
		if err := uc.notifier.Send(ctx, ch.name, ch.contact, notify.TemplateReminder, params); err != nil {
			log.Printf("reminder: %s for %s failed: %v", ch.name, ap.ID, err)
			continue
		}
		if err := uc.repo.MarkReminderDelivered(ctx, ap.ID, ch.name); err != nil {
			log.Printf("reminder: mark %s delivered for %s: %v", ch.name, ap.ID, err)
		}
	}
}

func (uc *SendDueReminders) params(ap *models.Appointment) map[string]any {
	p := map[string]any{
		"ClientName":  ap.Client.Name,
		"ServiceName": ap.Service.Name,
		"Start":       ap.ScheduledStart.In(uc.loc).Format("02/01/2006 15:04"),
		"Status":      ap.Status,
	}
	// Páginas do front, sem token: a ação exige a sessão do cliente
	// e passa pelas rotas autenticadas de status e reagendamento.
	if uc.baseURL != "" {
		link := func(action string) string {
			return fmt.Sprintf("%s/rendez-vous/%s?action=%s", uc.baseURL, ap.ID, action)
		}
		p["ConfirmURL"] = link("confirm")
		p["RescheduleURL"] = link("reschedule")
		p["CancelURL"] = link("cancel")
	}
	return p
}
