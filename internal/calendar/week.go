package calendar

import (
	"strings"
	"time"
)

// DaysPerWeek is the number of columns in a week window.
const DaysPerWeek = 7

// WeekOf returns the Monday-first week containing ref.
func WeekOf(ref time.Time) [DaysPerWeek]time.Time {
	return WeekOfStarting(ref, time.Monday)
}

// WeekOfStarting returns the seven dates, at midnight in ref's location, of
// the week containing ref when weeks begin on start.
func WeekOfStarting(ref time.Time, start time.Weekday) [DaysPerWeek]time.Time {
	y, m, d := ref.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())

	back := (int(midnight.Weekday()) - int(start) + DaysPerWeek) % DaysPerWeek
	first := midnight.AddDate(0, 0, -back)

	var days [DaysPerWeek]time.Time
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// ParseWeekStart maps the week_start config value to a weekday. Anything
// other than "sunday" means Monday.
func ParseWeekStart(v string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(v), "sunday") {
		return time.Sunday
	}
	return time.Monday
}
