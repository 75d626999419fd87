// Package booking implements the room-availability core: wall-clock time
// intervals, the overlap predicate, and per-room conflict aggregation over
// derived booking records.
package booking

import (
	"fmt"
	"strings"
)

// Day identifies one of the five weekdays meetings can occupy.
type Day string

const (
	Monday    Day = "MON"
	Tuesday   Day = "TUE"
	Wednesday Day = "WED"
	Thursday  Day = "THU"
	Friday    Day = "FRI"
)

// Days lists the valid weekdays in calendar order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// ParseDay normalizes a caller supplied weekday token.
func ParseDay(value string) (Day, error) {
	day := Day(strings.ToUpper(strings.TrimSpace(value)))
	switch day {
	case Monday, Tuesday, Wednesday, Thursday, Friday:
		return day, nil
	}
	return "", fmt.Errorf("booking: invalid day %q", value)
}

// Term identifies the half of the academic year a semester covers.
type Term string

const (
	Fall   Term = "FALL"
	Spring Term = "SPRING"
)

// ParseTerm normalizes a caller supplied term token.
func ParseTerm(value string) (Term, error) {
	term := Term(strings.ToUpper(strings.TrimSpace(value)))
	switch term {
	case Fall, Spring:
		return term, nil
	}
	return "", fmt.Errorf("booking: invalid term %q", value)
}

// TimeOfDay is a timezone-free wall-clock instant expressed as minutes since
// midnight. Meetings deliberately carry no timezone; the institution's clock
// is the only clock.
type TimeOfDay int

/// ParseTimeOfDay accepts "HH:MM:SS" or "HH:MM". Seconds are accepted for
// compatibility with the persisted representation but truncated, since no
// meeting starts mid-minute.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("booking: invalid time %q", value)
	}

	hour, err := parseClockComponent(parts[0], 23)
	if err != nil {
		return 0, fmt.Errorf("booking: invalid time %q", value)
	}
	minute, err := parseClockComponent(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("booking: invalid time %q", value)
	}
	if len(parts) == 3 {
		if _, err := parseClockComponent(parts[2], 59); err != nil {
			return 0, fmt.Errorf("booking: invalid time %q", value)
		}
	}

	return TimeOfDay(hour*60 + minute), nil
}

func parseClockComponent(value string, max int) (int, error) {
	if len(value) != 2 {
		return 0, fmt.Errorf("component %q must be two digits", value)
	}
	n := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("component %q is not numeric", value)
		}
		n = n*10 + int(r-'0')
	}
	if n > max {
		return 0, fmt.Errorf("component %q out of range", value)
	}
	return n, nil
}

/// String renders the instant as "HH:MM:SS", the persisted representation.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", int(t)/60, int(t)%60)
}

// Interval is a half-open wall-clock range [Start, End).
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Valid reports whether the interval has positive duration.
func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Overlaps reports whether two half-open intervals intersect. Intervals that
// merely touch at an endpoint ([13:00,14:00) vs [14:00,15:00)) do not
// overlap, so back-to-back meetings in the same room are not conflicts.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}
