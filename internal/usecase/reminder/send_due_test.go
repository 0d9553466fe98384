package reminder_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	reminderuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/reminder"
)

func TestSendDueRemindersClaimsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soon := f.book(t, "soon@example.com", "0611111111", testNow.Add(3*time.Hour))   // já na janela
	later := f.book(t, "later@example.com", "0622222222", testNow.Add(72*time.Hour)) // ainda não

	sweep := reminderuc.NewSendDueReminders(f.repo, f.notifier, lock.NewLocal(), time.UTC, "https://institut.example/").
		WithClock(func() time.Time { return testNow.Add(time.Minute) })

	n, err := sweep.Execute(ctx)
	if err != nil || n != 1 {
		t.Fatalf("first sweep: n=%d err=%v", n, err)
	}

	n, err = sweep.Execute(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}

	stored, _ := f.repo.GetAppointment(ctx, soon.ID)
	if stored.ReminderSentAt == nil || !stored.EmailReminderSent || !stored.MessageReminderSent {
		t.Errorf("flags: sent_at=%v email=%v message=%v", stored.ReminderSentAt, stored.EmailReminderSent, stored.MessageReminderSent)
	}
	untouched, _ := f.repo.GetAppointment(ctx, later.ID)
	if untouched.ReminderSentAt != nil {
		t.Error("future reminder sent early")
	}

	var reminders []notify.Sent
	for _, s := range f.email.Sent() {
		if s.Template == notify.TemplateReminder {
			reminders = append(reminders, s)
		}
	}
	if len(reminders) != 1 || reminders[0].Contact != "soon@example.com" {
		t.Fatalf("reminder emails = %+v", reminders)
	}
	link, _ := reminders[0].Params["ConfirmURL"].(string)
	if !strings.HasPrefix(link, "https://institut.example/rendez-vous/"+soon.ID.String()) {
		t.Errorf("confirm link = %q", link)
	}
}

func TestSendDueRemindersConcurrentSweeps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.book(t, "c"+string(rune('a'+i))+"@example.com", "", testNow.Add(time.Duration(2+2*i)*time.Hour))
	}

	clock := func() time.Time { return testNow.Add(time.Minute) }

	// sem locker: só o claim impede envio duplo
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweep := reminderuc.NewSendDueReminders(f.repo, f.notifier, nil, time.UTC, "").WithClock(clock)
			n, err := sweep.Execute(ctx)
			if err != nil {
				t.Errorf("sweep: %v", err)
			}
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != 5 {
		t.Fatalf("reminders claimed = %d, want 5", total)
	}
}

func TestSendDueRemindersChannelFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap := f.book(t, "fail@example.com", "0633333333", testNow.Add(2*time.Hour))

	f.message.Fail = true
	sweep := reminderuc.NewSendDueReminders(f.repo, f.notifier, nil, time.UTC, "").
		WithClock(func() time.Time { return testNow.Add(time.Minute) })

	n, err := sweep.Execute(ctx)
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}

	stored, _ := f.repo.GetAppointment(ctx, ap.ID)
	if !stored.EmailReminderSent || stored.MessageReminderSent {
		t.Errorf("email=%v message=%v", stored.EmailReminderSent, stored.MessageReminderSent)
	}
	if stored.ReminderSentAt == nil {
		t.Error("claim should stick even when a channel fails")
	}
}

func TestSendDueRemindersSkipsCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap := f.book(t, "gone@example.com", "", testNow.Add(2*time.Hour))
	f.setStatus(t, ap, appointment.StatusCancelled)

	sweep := reminderuc.NewSendDueReminders(f.repo, f.notifier, nil, time.UTC, "").
		WithClock(func() time.Time { return testNow.Add(time.Minute) })

	if n, err := sweep.Execute(ctx); err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestSendDueRemindersLockHeld(t *testing.T) {
	f := newFixture(t)
	f.book(t, "held@example.com", "", testNow.Add(2*time.Hour))

	locker := lock.NewLocal()
	sweep := reminderuc.NewSendDueReminders(f.repo, f.notifier, locker, time.UTC, "").
		WithClock(func() time.Time { return testNow.Add(time.Minute) })

	err := locker.WithLock(context.Background(), "reminder-sweep", func(ctx context.Context) error {
		n, err := sweep.Execute(ctx)
		if err != nil || n != 0 {
			t.Errorf("while held: n=%d err=%v", n, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
