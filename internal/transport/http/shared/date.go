package shared

import (
	"errors"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var errEmptyMonth = errors.New("month is empty")

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day as a
// UTC date. An empty value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		stamp, stampErr := time.Parse(time.RFC3339, value)
		if stampErr != nil {
			return time.Time{}, err
		}
		parsed = stamp
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// ParseMonth accepts YYYY-MM and returns the first day of that month in UTC.
func ParseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmptyMonth
	}
	return time.Parse(monthLayout, value)
}

// LastOfMonth returns the final calendar day of the month holding first.
func LastOfMonth(first time.Time) time.Time {
	return first.AddDate(0, 1, -first.Day())
}
