// Package calendar lays sessions out on a seven-day grid: it buckets them
// into day columns, builds the displayed week, maps start/end times to
// vertical geometry, and tracks the detail-overlay selection.
package calendar

import (
	"time"

	"sessioncal/internal/model"
)

// SessionsOnDay returns, in their original order, the sessions whose Date
// falls on the same calendar day as day. Time of day is ignored.
func SessionsOnDay(sessions []model.Session, day time.Time) []model.Session {
	out := make([]model.Session, 0)
	for _, s := range sessions {
		if model.SameDay(s.Date, day) {
			out = append(out, s)
		}
	}
	return out
}
