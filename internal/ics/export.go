package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
)

const (
	productID      = "-//sessioncal//sessions//EN"
	floatingLayout = "20060102T150405"
)

// errEndBeforeStart marks sessions whose end precedes their start; DTEND
// may not precede DTSTART.
var errEndBeforeStart = errors.New("end time before start time")

// uidNamespace scopes the name-based UIDs of exported sessions.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://sessioncal.local/sessions"))

// EncodeCalendar renders sessions as a VCALENDAR. Times are written as
// floating local times, matching the zone-less wall clock sessions carry.
// Sessions with malformed times, or ending before they start, are left out
// and logged.
func EncodeCalendar(sessions []model.Session, stamp time.Time) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for i, s := range sessions {
		start, end, err := sessionBounds(s)
		if err != nil {
			appLog.Warn("ics export: session skipped", "err", err, "index", i, "name", s.Name)
			continue
		}

		ev := cal.AddEvent(SessionUID(i, s))
		ev.SetDtStampTime(stamp)
		ev.SetSummary(s.Name)
		if s.Description != "" {
			ev.SetDescription(s.Description)
		}
		ev.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
		ev.SetProperty(ical.ComponentPropertyDtEnd, end.Format(floatingLayout))
	}

	return []byte(cal.Serialize())
}

// SessionUID derives a stable UID from a session's position and content.
// Sessions have no identity of their own, and the store only appends, so
// position is stable for the lifetime of the process.
func SessionUID(index int, s model.Session) string {
	name := fmt.Sprintf("%d|%s|%s|%s|%s", index, s.Name, s.Date.Format("2006-01-02"), s.StartTime, s.EndTime)
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}

func sessionBounds(s model.Session) (time.Time, time.Time, error) {
	start, err := wallClock(s.Date, s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := wallClock(s.Date, s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%s-%s: %w", s.StartTime, s.EndTime, errEndBeforeStart)
	}
	return start, end, nil
}

func wallClock(day time.Time, clock string) (time.Time, error) {
	hhmm, err := model.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hhmm/100, hhmm%100, 0, 0, time.UTC), nil
}
