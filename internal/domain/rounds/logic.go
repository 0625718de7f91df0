package rounds

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeRoundCode trims the code; an empty result means no round.
func NormalizeRoundCode(code string) string {
	return strings.TrimSpace(code)
}

// ValidPeriod reports whether p is six digits. The month part is not range
// checked so legacy period labels keep working.
func ValidPeriod(p string) bool {
	if len(p) != 6 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseInstant accepts RFC 3339 timestamps, with or without a zone, and plain
// dates. Values without a zone are read as UTC.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		value = value[:len(value)-1] + "+00:00"
	}
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 timestamp", ErrInvalidWindow, value)
}

// ParseWindow validates a start/end pair. End equal to start is allowed.
func ParseWindow(req WindowRequest) (time.Time, time.Time, error) {
	start, err := ParseInstant(req.StartAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseInstant(req.EndAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_at before start_at", ErrInvalidWindow)
	}
	return start, end, nil
}

// IsOpen is true when now lies inside [start, end]. A missing bound means
// the window was never configured and is closed.
func IsOpen(start, end *time.Time, now time.Time) bool {
	if start == nil || end == nil {
		return false
	}
	now = now.UTC()
	return !now.Before(start.UTC()) && !now.After(end.UTC())
}

func activeDescription(code string) string {
	return "Active round: " + code
}
