// Package jobs agenda as varreduras periódicas: lembretes vencidos e
// fidelidade pendente de conclusões antigas.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/BruksfildServices01/institute-scheduler/internal/app"
	"github.com/BruksfildServices01/institute-scheduler/internal/metrics"
)

const runTimeout = 2 * time.Minute

type sweeper interface {
	Execute(ctx context.Context) (int, error)
}

// SweepReminders roda uma varredura de lembretes.
func SweepReminders(ctx context.Context, a *app.App) (int, error) {
	n, err := run(ctx, "reminder sweep", a.SendDueReminders)
	metrics.RemindersSent.Add(float64(n))
	return n, err
}

// RetryLoyalty reaplica a fidelidade de conclusões sem acúmulo.
func RetryLoyalty(ctx context.Context, a *app.App) (int, error) {
	n, err := run(ctx, "loyalty retry", a.RetryAccruals)
	metrics.LoyaltyRetried.Add(float64(n))
	return n, err
}

func run(ctx context.Context, name string, s sweeper) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	n, err := s.Execute(ctx)
	if err != nil {
		log.Printf("jobs: %s: %v", name, err)
		return n, err
	}
	if n > 0 {
		log.Printf("jobs: %s processed %d", name, n)
	}
	return n, nil
}

// Start registra as duas varreduras e devolve o scheduler já rodando.
// SingletonMode impede sobreposição dentro da mesma instância; entre
// instâncias quem garante é o lock da varredura de lembretes.
func Start(a *app.App) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(a.Location)
	s.SingletonModeAll()

	if _, err := s.Every(a.Config.ReminderSweepInterval).Do(func() {
		_, _ = SweepReminders(context.Background(), a)
	}); err != nil {
		return nil, err
	}

	if _, err := s.Every(a.Config.LoyaltyRetryInterval).Do(func() {
		_, _ = RetryLoyalty(context.Background(), a)
	}); err != nil {
		return nil, err
	}

	s.StartAsync()
	return s, nil
}
