package worktime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyTime   = errors.New("time value is empty")
	ErrInvalidTime = errors.New("invalid time value")
)

// ReferenceDate is the calendar day bare time-of-day values are anchored to.
var ReferenceDate = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

var timeOfDayLayouts = []string{
	"15:04:05",
	"15:04",
}

// Instant is a parsed check-in or check-out value.
// HasDate is false when the source carried no calendar date.
type Instant struct {
	Time     time.Time
	HasDate  bool
	Original string
}

// Parse normalizes a full date-time or a bare time-of-day string.
// Bare times are anchored to ReferenceDate.
func Parse(value string) (time.Time, error) {
	in, err := ParseInstant(value)
	if err != nil {
		return time.Time{}, err
	}
	return in.Time, nil
}

// ParseInstant is Parse but keeps track of whether the value carried a date.
func ParseInstant(value string) (Instant, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Instant{}, ErrEmptyTime
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Instant{Time: t, HasDate: true, Original: value}, nil
		}
	}

	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Instant{Time: AnchorTimeOfDay(ReferenceDate, t), Original: value}, nil
		}
	}

	return Instant{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

// AnchorTimeOfDay places the clock reading of tod on the calendar day of day,
// in day's location.
func AnchorTimeOfDay(day time.Time, tod time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), day.Location())
}

// IsTimeOfDay reports whether value is a bare HH:MM[:SS] string.
func IsTimeOfDay(value string) bool {
	v := strings.TrimSpace(value)
	for _, layout := range timeOfDayLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
