package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Session is a single scheduled event. Sessions have no persistent ID; the
// store hands them out as values.
type Session struct {
	Name        string
	Description string

	// Date carries the calendar day. Its time-of-day and location are not
	// used for layout.
	Date time.Time

	// StartTime / EndTime are wall-clock times of day in "HH:MM" form.
	// EndTime is expected to be later than StartTime but this is not enforced.
	StartTime string
	EndTime   string
}

// ErrInvalidSessionTime is matched by every *InvalidSessionTimeError.
var ErrInvalidSessionTime = errors.New("invalid session time")

// InvalidSessionTimeError reports a start/end time that is not "HH:MM".
type InvalidSessionTimeError struct {
	Value  string
	Reason string
}

func (e *InvalidSessionTimeError) Error() string {
	return fmt.Sprintf("invalid session time %q: %s", e.Value, e.Reason)
}

func (e *InvalidSessionTimeError) Is(target error) bool {
	return target == ErrInvalidSessionTime
}

// ParseClock turns "HH:MM" (or "H:MM") into the integer HHMM, e.g.
// "18:00" -> 1800. The result is a plain concatenation of the digits, not a
// count of minutes.
func ParseClock(v string) (int, error) {
	hh, mm, ok := strings.Cut(v, ":")
	if !ok {
		return 0, &InvalidSessionTimeError{Value: v, Reason: "missing ':' separator"}
	}
	if len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, &InvalidSessionTimeError{Value: v, Reason: "expected HH:MM"}
	}
	h, err := strconv.Atoi(hh)
	if err != nil || !isDigits(hh) {
		return 0, &InvalidSessionTimeError{Value: v, Reason: "hour is not numeric"}
	}
	m, err := strconv.Atoi(mm)
	if err != nil || !isDigits(mm) {
		return 0, &InvalidSessionTimeError{Value: v, Reason: "minute is not numeric"}
	}
	if h > 23 {
		return 0, &InvalidSessionTimeError{Value: v, Reason: "hour out of range"}
	}
	if m > 59 {
		return 0, &InvalidSessionTimeError{Value: v, Reason: "minute out of range"}
	}
	return h*100 + m, nil
}

// isDigits rejects signs, which strconv.Atoi would otherwise accept.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SameDay reports whether a and b fall on the same calendar day, each read in
// its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
