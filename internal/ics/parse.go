package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
)

const (
	clockLayout = "15:04"
	// endOfDay is the latest end a session column can show.
	endOfDay = "23:59"
)

// Imported is a session parsed from a feed together with the key used to
// avoid importing it twice.
type Imported struct {
	Key     string
	Session model.Session
}

// ParseSessions turns the timed VEVENTs of an ICS payload into sessions.
//
//   - Times are taken as the wall clock of DTSTART/DTEND in their own
//     zone; nothing is converted.
//   - All-day events are skipped; they have no place on a time column.
//   - RRULE is ignored and only the first occurrence is imported.
//   - Events that fail to parse are logged and skipped.
func ParseSessions(src Source, body []byte) ([]Imported, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse %s: %w", src.ID, err)
	}

	out := make([]Imported, 0)
	for _, ve := range cal.Events() {
		imp, ok, err := parseVEvent(src, ve)
		if err != nil {
			appLog.Warn("ics vevent skipped", "err", err, "id", src.ID)
			continue
		}
		if ok {
			out = append(out, imp)
		}
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "session_count", len(out))
	return out, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (Imported, bool, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return Imported{}, false, errors.New("missing UID")
	}
	uid := uidProp.Value

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return Imported{}, false, fmt.Errorf("event %s: missing DTSTART", uid)
	}
	if isAllDay(dtStart) {
		appLog.Debug("ics all-day event skipped", "id", src.ID, "uid", uid)
		return Imported{}, false, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return Imported{}, false, fmt.Errorf("event %s: DTSTART: %w", uid, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return Imported{}, false, fmt.Errorf("event %s: DTEND: %w", uid, err)
	}

	if ve.GetProperty(ical.ComponentPropertyRrule) != nil {
		appLog.Debug("ics recurrence ignored, importing first occurrence", "id", src.ID, "uid", uid)
	}

	var s model.Session
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		s.Name = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		s.Description = p.Value
	}
	y, m, d := start.Date()
	s.Date = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	s.StartTime = start.Format(clockLayout)
	s.EndTime = end.Format(clockLayout)
	if endsOnLaterDay(start, end) {
		appLog.Debug("ics event crosses midnight, end clamped", "id", src.ID, "uid", uid, "end", end.Format(time.RFC3339))
		s.EndTime = endOfDay
	}

	key := src.ID + "/" + uid + "/" + start.Format(time.RFC3339)
	return Imported{Key: key, Session: s}, true, nil
}

// endsOnLaterDay reports whether end falls on a calendar day after start's,
// both read in start's zone.
func endsOnLaterDay(start, end time.Time) bool {
	sy, sm, sd := start.Date()
	ey, em, ed := end.In(start.Location()).Date()
	return time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).After(time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC))
}

// isAllDay reports VALUE=DATE or a DTSTART without a time part.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}
