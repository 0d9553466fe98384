package handlers

import (
	"strings"
	"time"
)

// parseDateIn lê "2006-01-02" no fuso do instituto.
func parseDateIn(loc *time.Location, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(dateStr), loc)
}

// parseStartIn aceita RFC3339 ou "2006-01-02 15:04" (hora local do instituto).
func parseStartIn(loc *time.Location, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02 15:04", s, loc)
}
