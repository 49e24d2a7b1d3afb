package helpers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func StringToInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// ParseEventDate accepts RFC3339 and the zone-less forms sent by HTML date
// and datetime-local inputs. Zone-less values are read as UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseDay parses a date filter and truncates it to the start of its UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := ParseEventDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseCapacity reads a capacity sent either as a JSON number or as a
// numeric string.
func ParseCapacity(raw json.Number) (int, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return 0, fmt.Errorf("capacity is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("capacity must be a whole number")
	}
	if n < 0 {
		return 0, fmt.Errorf("capacity must not be negative")
	}
	return n, nil
}

// ParseDuration extends time.ParseDuration with a day unit, so "30d" works.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
