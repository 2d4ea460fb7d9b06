package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekOf(t *testing.T) {
	// 2020-03-18 is a Wednesday.
	ref := time.Date(2020, time.March, 18, 15, 42, 0, 0, time.UTC)
	days := WeekOf(ref)

	assert.Equal(t, date(2020, time.March, 16), days[0])
	assert.Equal(t, date(2020, time.March, 22), days[6])
	for i, d := range days {
		if i > 0 {
			assert.Equal(t, days[i-1].AddDate(0, 0, 1), d)
		}
		assert.Zero(t, d.Hour())
	}
	assert.Equal(t, time.Monday, days[0].Weekday())
}

func TestWeekOf_StableWithinWeek(t *testing.T) {
	monday := WeekOf(date(2020, time.March, 16))
	for d := 16; d <= 22; d++ {
		assert.Equal(t, monday, WeekOf(time.Date(2020, time.March, d, 23, 59, 0, 0, time.UTC)), "day %d", d)
	}
	assert.NotEqual(t, monday, WeekOf(date(2020, time.March, 23)))
}

func TestWeekOf_SundayBelongsToPreviousMonday(t *testing.T) {
	days := WeekOf(date(2020, time.March, 22))
	assert.Equal(t, date(2020, time.March, 16), days[0])
}

func TestWeekOf_CrossesMonthAndYear(t *testing.T) {
	days := WeekOf(date(2021, time.January, 1))
	assert.Equal(t, date(2020, time.December, 28), days[0])
	assert.Equal(t, date(2021, time.January, 3), days[6])
}

func TestWeekOfStarting_Sunday(t *testing.T) {
	days := WeekOfStarting(date(2020, time.March, 18), time.Sunday)
	assert.Equal(t, date(2020, time.March, 15), days[0])
	assert.Equal(t, time.Sunday, days[0].Weekday())

	days = WeekOfStarting(date(2020, time.March, 22), time.Sunday)
	assert.Equal(t, date(2020, time.March, 22), days[0])
}

func TestWeekOf_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	days := WeekOf(time.Date(2020, time.March, 18, 1, 0, 0, 0, loc))
	assert.Equal(t, loc, days[0].Location())
	assert.Equal(t, 16, days[0].Day())
}

func TestParseWeekStart(t *testing.T) {
	assert.Equal(t, time.Sunday, ParseWeekStart("Sunday"))
	assert.Equal(t, time.Monday, ParseWeekStart("monday"))
	assert.Equal(t, time.Monday, ParseWeekStart(""))
	assert.Equal(t, time.Monday, ParseWeekStart("friday"))
}
