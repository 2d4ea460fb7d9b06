package calendar

import "sync"

// Overlay is the detail panel. Visibility is its only state.
type Overlay struct {
	mu      sync.RWMutex
	visible bool
}

func (o *Overlay) Show() {
	o.mu.Lock()
	o.visible = true
	o.mu.Unlock()
}

func (o *Overlay) Hide() {
	o.mu.Lock()
	o.visible = false
	o.mu.Unlock()
}

func (o *Overlay) Visible() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.visible
}
