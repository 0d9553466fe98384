package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func booked(name string, start time.Time, minutes int, status string) models.Appointment {
	return models.Appointment{
		ID:             uuid.New(),
		Service:        models.ServiceSnapshot{Name: name, DurationMin: minutes},
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Duration(minutes+DefaultBufferMinutes) * time.Minute),
		Status:         status,
	}
}

func TestSlotIncludesBuffer(t *testing.T) {
	c := New(15)
	slot := c.Slot(at(10, 0), 60)

	if !slot.End.Equal(at(11, 15)) {
		t.Fatalf("end = %s, want 11:15", slot.End.Format("15:04"))
	}
}

func TestFindConflicts(t *testing.T) {
	c := New(15)
	existing := booked("Hydrafacial", at(10, 0), 60, "confirmed") // ocupa 10:00-11:15
	cancelled := booked("Microneedling", at(14, 0), 60, "cancelled")

	tests := []struct {
		name    string
		start   time.Time
		minutes int
		exclude uuid.UUID
		want    int
	}{
		{"inside", at(10, 30), 30, uuid.Nil, 1},
		{"ends where existing starts", at(8, 45), 60, uuid.Nil, 0},
		{"starts where existing ends", at(11, 15), 60, uuid.Nil, 0},
		{"buffer overlap", at(11, 0), 30, uuid.Nil, 1},
		{"covers existing", at(9, 0), 180, uuid.Nil, 1},
		{"cancelled never blocks", at(14, 0), 60, uuid.Nil, 0},
		{"excluding itself", at(10, 30), 60, existing.ID, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.FindConflicts(
				[]models.Appointment{existing, cancelled},
				tt.start, tt.minutes, tt.exclude,
			)
			if len(got) != tt.want {
				t.Fatalf("conflicts = %d, want %d", len(got), tt.want)
			}
			if tt.want > 0 && got[0].ServiceName != "Hydrafacial" {
				t.Errorf("service name = %q", got[0].ServiceName)
			}
		})
	}
}

func TestOccupiedSkipsPastAndCancelled(t *testing.T) {
	past := booked("A", at(8, 0), 30, "completed")
	later := booked("B", at(15, 0), 60, "pending")
	sooner := booked("C", at(12, 0), 60, "confirmed")
	gone := booked("D", at(13, 0), 60, "cancelled")

	got := Occupied([]models.Appointment{past, later, sooner, gone}, at(9, 0))

	if len(got) != 2 {
		t.Fatalf("slots = %d, want 2", len(got))
	}
	if !got[0].Start.Equal(at(12, 0)) || !got[1].Start.Equal(at(15, 0)) {
		t.Errorf("unexpected order: %v", got)
	}

	if n := len(After(got, at(14, 0))); n != 1 {
		t.Errorf("after 14:00 = %d, want 1", n)
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	now := at(9, 0)
	cache := NewMemoryCache(30 * time.Second).WithClock(func() time.Time { return now })
	ctx := context.Background()

	if _, ok := cache.Get(ctx); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Set(ctx, []Interval{{Start: at(10, 0), End: at(11, 0)}})
	if got, ok := cache.Get(ctx); !ok || len(got) != 1 {
		t.Fatal("fresh cache should hit")
	}

	now = now.Add(31 * time.Second)
	if _, ok := cache.Get(ctx); ok {
		t.Fatal("expired cache should miss")
	}

	now = at(9, 0)
	cache.Set(ctx, nil)
	cache.Invalidate(ctx)
	if _, ok := cache.Get(ctx); ok {
		t.Fatal("invalidated cache should miss")
	}
}
