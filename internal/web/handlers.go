package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sessioncal/internal/calendar"
	"sessioncal/internal/form"
	"sessioncal/internal/ics"
	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
)

const dateLayout = "2006-01-02"

// sessionDTO is the JSON view of a session.
type sessionDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type blockDTO struct {
	Index   int        `json:"index"`
	Offset  float64    `json:"offset"`
	Extent  float64    `json:"extent"`
	Session sessionDTO `json:"session"`
}

type dayDTO struct {
	Date    string     `json:"date"`
	Weekday string     `json:"weekday"`
	Blocks  []blockDTO `json:"blocks"`
}

type weekResponse struct {
	Days    []dayDTO `json:"days"`
	Skipped int      `json:"skipped"`
}

type selectionResponse struct {
	Visible bool        `json:"visible"`
	State   string      `json:"state"`
	Session *sessionDTO `json:"session,omitempty"`
}

type selectRequest struct {
	Day   int `json:"day"`
	Index int `json:"index"`
}

func toSessionDTO(s model.Session) sessionDTO {
	return sessionDTO{
		Name:        s.Name,
		Description: s.Description,
		Date:        s.Date.Format(dateLayout),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
	}
}

func toSessionDTOs(sessions []model.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionDTO(s))
	}
	return out
}

func toWeekResponse(v calendar.WeekView) weekResponse {
	resp := weekResponse{Days: make([]dayDTO, 0, len(v.Days)), Skipped: v.Skipped}
	for _, col := range v.Days {
		day := dayDTO{
			Date:    col.Date.Format(dateLayout),
			Weekday: col.Date.Weekday().String(),
			Blocks:  make([]blockDTO, 0, len(col.Blocks)),
		}
		for _, b := range col.Blocks {
			day.Blocks = append(day.Blocks, blockDTO{
				Index:   b.Index,
				Offset:  b.Offset,
				Extent:  b.Extent,
				Session: toSessionDTO(b.Session),
			})
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionDTOs(s.store.Snapshot()))
}

// handleSubmitSession is the form submit: POST /api/sessions with
// {name, description, date: "DD.MM.YYYY", start_time, end_time}.
func (s *Server) handleSubmitSession(w http.ResponseWriter, r *http.Request) {
	var fields form.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.submitMu.Lock()
	s.form.Set(fields)
	sess, err := s.form.Submit(s.store, s.cal)
	s.submitMu.Unlock()

	if err != nil {
		if errors.Is(err, form.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Error("session submit failed", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to submit session")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(sess))
}

// handleStream pushes every store snapshot as a Server-Sent Event. The
// subscription lives exactly as long as the request.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Holds at most the newest snapshot; a slow client skips intermediate
	// states but always ends up on the current one.
	latest := make(chan []model.Session, 1)
	sub := s.store.Observe(func(snap []model.Session) {
		select {
		case <-latest:
		default:
		}
		latest <- snap
	})
	defer sub.Release()

	for {
		select {
		case snap := <-latest:
			data, err := json.Marshal(toSessionDTOs(snap))
			if err != nil {
				appLog.Error("sse marshal failed", err, "request_id", RequestIDFromContext(r.Context()))
				return
			}
			if _, err := fmt.Fprintf(w, "event: sessions\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// handleWeek renders the server's week view, or with ?date=YYYY-MM-DD the
// week containing that date using a short-lived controller.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeJSON(w, http.StatusOK, toWeekResponse(s.cal.Render()))
		return
	}

	ref, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	c := calendar.NewController(s.store, ref, s.calOpts...)
	defer c.Close()
	writeJSON(w, http.StatusOK, toWeekResponse(c.Render()))
}

func (s *Server) selection() selectionResponse {
	resp := selectionResponse{
		Visible: s.cal.Overlay().Visible(),
		State:   s.cal.State().String(),
	}
	if sel, err := s.cal.Detail(); err == nil {
		dto := toSessionDTO(sel)
		resp.Session = &dto
	}
	return resp
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.cal.SelectAt(req.Day, req.Index); err != nil {
		if errors.Is(err, calendar.ErrNoBlock) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleDismiss(w http.ResponseWriter, _ *http.Request) {
	s.cal.Dismiss()
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	body := ics.EncodeCalendar(s.store.Snapshot(), s.now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sessions.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
