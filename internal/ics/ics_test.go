package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncal/internal/model"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:sync-1\r\n" +
	"DTSTAMP:20200301T000000Z\r\n" +
	"DTSTART:20200316T180000Z\r\n" +
	"DTEND:20200316T193000Z\r\n" +
	"SUMMARY:Sync\r\n" +
	"DESCRIPTION:weekly sync\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday\r\n" +
	"DTSTAMP:20200301T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20200317\r\n" +
	"DTEND;VALUE=DATE:20200318\r\n" +
	"SUMMARY:Holiday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20200301T000000Z\r\n" +
	"DTSTART:20200318T090000Z\r\n" +
	"DTEND:20200318T091500Z\r\n" +
	"RRULE:FREQ=DAILY;COUNT=5\r\n" +
	"SUMMARY:Standup\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20200301T000000Z\r\n" +
	"DTSTART:20200319T090000Z\r\n" +
	"DTEND:20200319T100000Z\r\n" +
	"SUMMARY:No UID\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

var team = Source{ID: "team", URL: "https://example.com/private/team.ics?token=s3cret"}

func TestParseSessions(t *testing.T) {
	items, err := ParseSessions(team, []byte(feed))
	require.NoError(t, err)
	require.Len(t, items, 2)

	s := items[0].Session
	assert.Equal(t, "Sync", s.Name)
	assert.Equal(t, "weekly sync", s.Description)
	assert.Equal(t, "18:00", s.StartTime)
	assert.Equal(t, "19:30", s.EndTime)
	assert.True(t, model.SameDay(s.Date, time.Date(2020, time.March, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "team/sync-1/2020-03-16T18:00:00Z", items[0].Key)

	standup := items[1].Session
	assert.Equal(t, "Standup", standup.Name)
	assert.Equal(t, "09:00", standup.StartTime)
	assert.Equal(t, 18, standup.Date.Day())
}

func TestParseSessions_Errors(t *testing.T) {
	_, err := ParseSessions(team, nil)
	assert.Error(t, err)
}

func TestEncodeCalendar(t *testing.T) {
	sessions := []model.Session{
		{Name: "Sync", Description: "weekly sync", Date: time.Date(2020, time.March, 16, 0, 0, 0, 0, time.Local), StartTime: "18:00", EndTime: "19:30"},
		{Name: "Solo", Date: time.Date(2020, time.March, 17, 0, 0, 0, 0, time.Local), StartTime: "9:05", EndTime: "10:00"},
	}

	text := string(EncodeCalendar(sessions, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "DTSTART:20200316T180000")
	assert.Contains(t, text, "DTEND:20200316T193000")
	assert.Contains(t, text, "DTSTART:20200317T090500")
	assert.Contains(t, text, "SUMMARY:Sync")
	assert.Contains(t, text, "UID:"+SessionUID(0, sessions[0]))
	assert.Equal(t, 2, strings.Count(text, "BEGIN:VEVENT"))
}

func TestEncodeCalendar_SkipsMalformedTimes(t *testing.T) {
	out := EncodeCalendar([]model.Session{
		{Name: "bad", StartTime: "soon", EndTime: "10:00"},
		{Name: "good", Date: time.Date(2020, time.March, 16, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "10:00"},
	}, time.Now())

	text := string(out)
	assert.Equal(t, 1, strings.Count(text, "BEGIN:VEVENT"))
	assert.Contains(t, text, "SUMMARY:good")
	assert.NotContains(t, text, "SUMMARY:bad")
}

func TestParseSessions_CrossesMidnight(t *testing.T) {
	body := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:late\r\n" +
		"DTSTAMP:20200301T000000Z\r\n" +
		"DTSTART:20200316T220000Z\r\n" +
		"DTEND:20200317T000000Z\r\n" +
		"SUMMARY:Late\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	items, err := ParseSessions(team, []byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)

	s := items[0].Session
	assert.Equal(t, "22:00", s.StartTime)
	assert.Equal(t, "23:59", s.EndTime)
	assert.Equal(t, 16, s.Date.Day())

	start, err := model.ParseClock(s.StartTime)
	require.NoError(t, err)
	end, err := model.ParseClock(s.EndTime)
	require.NoError(t, err)
	assert.Greater(t, end, start)
}

func TestEncodeCalendar_SkipsEndBeforeStart(t *testing.T) {
	day := time.Date(2020, time.March, 16, 0, 0, 0, 0, time.UTC)
	text := string(EncodeCalendar([]model.Session{
		{Name: "backwards", Date: day, StartTime: "22:00", EndTime: "00:00"},
		{Name: "zero", Date: day, StartTime: "09:00", EndTime: "09:00"},
	}, time.Now()))

	assert.Equal(t, 1, strings.Count(text, "BEGIN:VEVENT"))
	assert.Contains(t, text, "SUMMARY:zero")
	assert.NotContains(t, text, "SUMMARY:backwards")
}

func TestSessionUID_Stable(t *testing.T) {
	s := model.Session{Name: "Sync", Date: time.Date(2020, time.March, 16, 0, 0, 0, 0, time.UTC), StartTime: "18:00", EndTime: "19:30"}
	assert.Equal(t, SessionUID(0, s), SessionUID(0, s))
	assert.NotEqual(t, SessionUID(0, s), SessionUID(1, s))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL(team.URL))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}

func TestFetcher_ConditionalAndFallback(t *testing.T) {
	var hits atomic.Int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "srv", URL: srv.URL + "/cal.ics"}

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, feed, string(res.Body))

	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache, "304 reuses cached body")
	assert.Equal(t, feed, string(res.Body))

	fail.Store(true)
	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache, "upstream error falls back to cache")
	assert.EqualValues(t, 3, hits.Load())
}

func TestFetcher_ErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "missing", URL: srv.URL},
		{ID: "empty"},
	})
	assert.Empty(t, results)
	assert.Len(t, errs, 2)
}

type collector struct{ added []model.Session }

func (c *collector) AddSession(s model.Session) { c.added = append(c.added, s) }

func TestImporter_AppendsOnlyNewEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	var c collector
	im := NewImporter(NewFetcher(t.TempDir()), []Source{{ID: "srv", URL: srv.URL}}, &c)

	n, err := im.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = im.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, c.added, 2)
}

func TestImporter_NoSources(t *testing.T) {
	var c collector
	im := NewImporter(NewFetcher(t.TempDir()), nil, &c)
	n, err := im.Refresh(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestImporter_ReportsFailures(t *testing.T) {
	var c collector
	im := NewImporter(NewFetcher(t.TempDir()), []Source{{ID: "dead", URL: "http://127.0.0.1:1/cal.ics"}}, &c)
	n, err := im.Refresh(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}
