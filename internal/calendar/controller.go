package calendar

import (
	"errors"
	"sync"
	"time"

	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
	"sessioncal/internal/store"
)

var (
	// ErrNoSelection is returned by Detail when no session was ever selected.
	// The UI only opens the overlay together with a selection, so seeing it
	// means a caller bug.
	ErrNoSelection = errors.New("calendar: no session selected")
	// ErrNoBlock is returned by SelectAt for an out-of-range day or index.
	ErrNoBlock = errors.New("calendar: no such session block")
)

// Source is the part of the session store the controller consumes.
type Source interface {
	Observe(fn func([]model.Session)) *store.Subscription
}

// State is the overlay state of a Controller.
type State int

const (
	Idle State = iota
	DetailOpen
)

func (s State) String() string {
	switch s {
	case DetailOpen:
		return "detail_open"
	default:
		return "idle"
	}
}

// Block is one session placed on a day column.
type Block struct {
	Session model.Session
	// Index is the session's position among the day's sessions; SelectAt
	// takes the same index.
	Index  int
	Offset float64
	Extent float64
}

// DayColumn holds the blocks for one date of the week window.
type DayColumn struct {
	Date   time.Time
	Blocks []Block
}

// WeekView is the result of one render pass.
type WeekView struct {
	Days [DaysPerWeek]DayColumn
	// Skipped counts sessions left out because of malformed times.
	Skipped int
}

// Option configures a Controller.
type Option func(*Controller)

// WithScale overrides DefaultScale.
func WithScale(sc Scale) Option {
	return func(c *Controller) { c.scale = sc }
}

// WithWeekStart sets the first weekday of the displayed week.
func WithWeekStart(d time.Weekday) Option {
	return func(c *Controller) { c.weekStart = d }
}

// Controller is a read-only consumer of the session store. It fixes its
// week window at construction and never advances it; call Close when done
// with it.
type Controller struct {
	scale     Scale
	weekStart time.Weekday
	days      [DaysPerWeek]time.Time
	overlay   *Overlay
	sub       *store.Subscription

	mu          sync.RWMutex
	sessions    []model.Session
	state       State
	selected    model.Session
	hasSelected bool
}

// NewController builds the week window around now and subscribes to src.
func NewController(src Source, now time.Time, opts ...Option) *Controller {
	c := &Controller{
		scale:     DefaultScale,
		weekStart: time.Monday,
		overlay:   &Overlay{},
		state:     Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.days = WeekOfStarting(now, c.weekStart)
	c.sub = src.Observe(c.receive)
	return c
}

func (c *Controller) receive(sessions []model.Session) {
	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()
}

// Close releases the store subscription.
func (c *Controller) Close() {
	c.sub.Release()
}

// Days returns the week window.
func (c *Controller) Days() [DaysPerWeek]time.Time {
	return c.days
}

// Overlay returns the detail overlay driven by this controller.
func (c *Controller) Overlay() *Overlay {
	return c.overlay
}

// Render buckets the working collection into the week window and computes
// each block's geometry. A session with a malformed time is skipped and
// logged; the rest of the pass continues.
func (c *Controller) Render() WeekView {
	c.mu.RLock()
	sessions := c.sessions
	c.mu.RUnlock()

	var view WeekView
	for i, day := range c.days {
		col := DayColumn{Date: day, Blocks: make([]Block, 0)}
		for idx, s := range SessionsOnDay(sessions, day) {
			b, err := c.place(s, idx)
			if err != nil {
				view.Skipped++
				appLog.Warn("skipping session block", "err", err, "name", s.Name, "date", day.Format("2006-01-02"))
				continue
			}
			col.Blocks = append(col.Blocks, b)
		}
		view.Days[i] = col
	}
	return view
}

func (c *Controller) place(s model.Session, idx int) (Block, error) {
	offset, err := c.scale.VerticalOffset(s)
	if err != nil {
		return Block{}, err
	}
	extent, err := c.scale.VerticalExtent(s)
	if err != nil {
		return Block{}, err
	}
	return Block{Session: s, Index: idx, Offset: offset, Extent: extent}, nil
}

// Select makes s the selected session and opens the detail overlay.
func (c *Controller) Select(s model.Session) {
	c.mu.Lock()
	c.selected = s
	c.hasSelected = true
	c.state = DetailOpen
	c.mu.Unlock()

	c.overlay.Show()
}

// SelectAt selects the index-th session on the day-th column of the week.
func (c *Controller) SelectAt(day, index int) error {
	if day < 0 || day >= DaysPerWeek {
		return ErrNoBlock
	}
	c.mu.RLock()
	onDay := SessionsOnDay(c.sessions, c.days[day])
	c.mu.RUnlock()

	if index < 0 || index >= len(onDay) {
		return ErrNoBlock
	}
	c.Select(onDay[index])
	return nil
}

// Dismiss closes the overlay. The last selection is kept.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()

	c.overlay.Hide()
}

// Detail returns the selected session.
func (c *Controller) Detail() (model.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasSelected {
		return model.Session{}, ErrNoSelection
	}
	return c.selected, nil
}

// State reports whether the detail overlay is open.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
