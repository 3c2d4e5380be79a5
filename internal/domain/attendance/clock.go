package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Clock is a time of day as an offset from midnight.
type Clock time.Duration

// ClockOf drops the date part of t in its own location.
func ClockOf(t time.Time) Clock {
	h, m, s := t.Clock()
	return Clock(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(t.Nanosecond()))
}

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, ErrInvalidClock
}

func (c Clock) Duration() time.Duration {
	return time.Duration(c)
}

// Sub is the signed span from other to c.
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(c - other)
}

func (c Clock) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// HHMM renders hours and minutes only, seconds truncated.
func (c Clock) HHMM() string {
	return FormatSpan(time.Duration(c))
}

// FormatSpan renders a duration as hh:mm, truncating seconds.
func FormatSpan(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	return fmt.Sprintf("%s%02d:%02d", sign, int(d.Hours()), int(d.Minutes())%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
