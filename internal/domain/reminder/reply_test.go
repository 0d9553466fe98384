package reminder

import (
	"testing"
	"time"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"OUI", IntentConfirm},
		{"oui merci !", IntentConfirm},
		{"Je confirme", IntentConfirm},
		{"d'accord", IntentConfirm},
		{"1", IntentConfirm},
		{"ok pour moi", IntentConfirm},
		{"Je voudrais reporter", IntentReschedule},
		{"on peut décaler ?", IntentReschedule},
		{"une autre date svp", IntentReschedule},
		{"2", IntentReschedule},
		{"NON", IntentCancel},
		{"je dois annuler", IntentCancel},
		{"3", IntentCancel},
		{"stop", IntentCancel},
		{"oui mais annuler l'autre", IntentConfirm},
		{"reporter ou annuler", IntentReschedule},
		{"bonjour", IntentUnknown},
		{"", IntentUnknown},
		{"nono", IntentUnknown},
		{"12", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseReply(tt.text); got != tt.want {
				t.Errorf("ParseReply(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestTargetStatus(t *testing.T) {
	tests := []struct {
		intent Intent
		want   domain.Status
		ok     bool
	}{
		{IntentConfirm, domain.StatusConfirmed, true},
		{IntentReschedule, domain.StatusToReschedule, true},
		{IntentCancel, domain.StatusCancelled, true},
		{IntentUnknown, "", false},
	}

	for _, tt := range tests {
		got, ok := tt.intent.TargetStatus()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s.TargetStatus() = (%s, %v)", tt.intent, got, ok)
		}
	}
}

func TestDueAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"far ahead", now.Add(72 * time.Hour), now.Add(48 * time.Hour)},
		{"inside window", now.Add(3 * time.Hour), now},
		{"exactly lead", now.Add(DefaultLead), now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DueAt(tt.start, now, DefaultLead); !got.Equal(tt.want) {
				t.Errorf("DueAt = %s, want %s", got, tt.want)
			}
		})
	}
}
