// Package form implements the new-session submission form.
package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
)

// DateLayout is the DD.MM.YYYY format the form accepts.
const DateLayout = "02.01.2006"

// ErrInvalidDate is matched by every *DateError.
var ErrInvalidDate = errors.New("invalid date")

// DateError reports a date field that is not DD.MM.YYYY.
type DateError struct {
	Value string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("form: invalid date %q (want DD.MM.YYYY): %v", e.Value, e.Err)
}

func (e *DateError) Is(target error) bool { return target == ErrInvalidDate }

func (e *DateError) Unwrap() error { return e.Err }

// Adder receives submitted sessions. *store.Store satisfies it.
type Adder interface {
	AddSession(model.Session)
}

// Dismisser closes the overlay hosting the form.
type Dismisser interface {
	Dismiss()
}

// Fields are the raw form inputs.
type Fields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// Form holds the current input values and the defaults they reset to.
type Form struct {
	mu       sync.Mutex
	defaults Fields
	fields   Fields
	loc      *time.Location
}

// New returns a form pre-filled with defaults. Dates are parsed in
// time.Local.
func New(defaults Fields) *Form {
	return &Form{defaults: defaults, fields: defaults, loc: time.Local}
}

// Fields returns the current input values.
func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Set replaces the current input values.
func (f *Form) Set(v Fields) {
	f.mu.Lock()
	f.fields = v
	f.mu.Unlock()
}

// Reset restores the defaults.
func (f *Form) Reset() {
	f.mu.Lock()
	f.fields = f.defaults
	f.mu.Unlock()
}

// Submit builds a session from the current fields, hands it to adder,
// dismisses the overlay and resets the fields. On a bad date nothing else
// happens and the fields are kept so the user can correct them.
func (f *Form) Submit(adder Adder, dismisser Dismisser) (model.Session, error) {
	f.mu.Lock()
	v := f.fields
	f.mu.Unlock()

	s, err := v.Session(f.loc)
	if err != nil {
		return model.Session{}, err
	}

	adder.AddSession(s)
	if dismisser != nil {
		dismisser.Dismiss()
	}
	f.Reset()

	appLog.Info("session submitted", "name", s.Name, "date", s.Date.Format("2006-01-02"), "start", s.StartTime, "end", s.EndTime)
	return s, nil
}

// Session converts the fields to a session, parsing Date in loc. Times are
// passed through unchecked.
func (v Fields) Session(loc *time.Location) (model.Session, error) {
	raw := strings.TrimSpace(v.Date)
	d, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return model.Session{}, &DateError{Value: v.Date, Err: err}
	}
	return model.Session{
		Name:        v.Name,
		Description: v.Description,
		Date:        d,
		StartTime:   v.StartTime,
		EndTime:     v.EndTime,
	}, nil
}
