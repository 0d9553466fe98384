package appointment_test

import (
	"context"
	"testing"
	"time"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

func TestListOccupiedSlotsUsesCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	occupied := appointmentuc.NewListOccupiedSlots(f.deps)
	status := appointmentuc.NewUpdateAppointmentStatus(f.deps, nil)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), false)

	slots, err := occupied.Execute(ctx, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(slots))
	}

	// booking invalida o cache
	f.book(t, f.facial, tomorrow(14, 0), false)
	if slots, _ = occupied.Execute(ctx, time.Time{}); len(slots) != 2 {
		t.Fatalf("after booking: slots = %d, want 2", len(slots))
	}

	if _, err := status.Execute(ctx, appointmentuc.UpdateStatusInput{Actor: operator, AppointmentID: ap.ID.String(), Status: string(domain.StatusCancelled)}); err != nil {
		t.Fatal(err)
	}
	if slots, _ = occupied.Execute(ctx, time.Time{}); len(slots) != 1 {
		t.Fatalf("after cancel: slots = %d, want 1", len(slots))
	}

	if slots, _ = occupied.Execute(ctx, tomorrow(16, 0)); len(slots) != 0 {
		t.Fatalf("from 16:00: slots = %d, want 0", len(slots))
	}
}

func TestCheckConflict(t *testing.T) {
	f := newFixture(t)
	check := appointmentuc.NewCheckConflict(f.deps)
	ctx := context.Background()

	ap := f.book(t, f.facial, tomorrow(10, 0), false)

	conflicts, err := check.Execute(ctx, appointmentuc.CheckConflictInput{ServiceSlug: "hydrafacial", Start: tomorrow(9, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 1 || conflicts[0].ServiceName != "Soin visage" {
		t.Fatalf("conflicts = %+v", conflicts)
	}

	conflicts, err = check.Execute(ctx, appointmentuc.CheckConflictInput{
		ServiceSlug: "soin-visage",
		Start:       tomorrow(10, 30),
		ExcludeID:   ap.ID.String(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("excluded self still conflicts: %+v", conflicts)
	}
}

func TestListAppointmentsByDateAndMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, f.facial, tomorrow(10, 0), false)
	f.book(t, f.facial, tomorrow(14, 0), false)
	f.book(t, f.facial, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), false)

	byDate := appointmentuc.NewListAppointmentsByDate(f.repo, time.UTC)
	day, err := byDate.Execute(ctx, tomorrow(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(day) != 2 {
		t.Errorf("day = %d, want 2", len(day))
	}

	byMonth := appointmentuc.NewListAppointmentsByMonth(f.repo, time.UTC)
	month, err := byMonth.Execute(ctx, 2026, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(month) != 3 {
		t.Errorf("month = %d, want 3", len(month))
	}

	if _, err := byMonth.Execute(ctx, 2026, 13); err == nil {
		t.Error("month 13 accepted")
	}
}
