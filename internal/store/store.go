// Package store holds the canonical, append-only session collection and fans
// out snapshots of it to subscribers.
package store

import (
	"sync"

	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
)

// Store owns the session collection. Construct exactly one per process and
// pass it to consumers; nothing in this package is global.
//
// Every mutation and every new registration runs under emitMu, so each
// subscriber observes snapshots in append order, exactly once each, and a
// late subscriber never misses the current state. Callbacks run on the
// goroutine that called AddSession and must not call AddSession or Observe
// themselves. Releasing a subscription from inside a callback is fine.
type Store struct {
	emitMu sync.Mutex

	mu       sync.Mutex
	sessions []model.Session
	subs     []*Subscription
	nextID   uint64
}

// Subscription is a registered observer. Release it when the consumer goes
// away.
type Subscription struct {
	id    uint64
	fn    func([]model.Session)
	store *Store
	once  sync.Once
}

// New returns a store initialized with a copy of seed.
func New(seed []model.Session) *Store {
	s := &Store{
		sessions: make([]model.Session, len(seed)),
	}
	copy(s.sessions, seed)
	return s
}

// Observe registers fn and immediately calls it with the current snapshot.
// fn is then called again with a fresh snapshot after every AddSession.
func (s *Store) Observe(fn func([]model.Session)) *Subscription {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.nextID++
	sub := &Subscription{id: s.nextID, fn: fn, store: s}
	s.subs = append(s.subs, sub)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)
	return sub
}

// AddSession appends sess and synchronously notifies every subscriber, in
// subscription order. Each subscriber receives its own copy.
func (s *Store) AddSession(sess model.Session) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	total := len(s.sessions)
	s.mu.Unlock()

	appLog.Debug("session added", "name", sess.Name, "total", total, "subscribers", len(subs))

	for _, sub := range subs {
		if !sub.active() {
			continue
		}
		sub.fn(s.Snapshot())
	}
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) snapshotLocked() []model.Session {
	out := make([]model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

func (s *Store) active(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (s *Store) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Release unregisters the subscription. It is safe to call more than once.
func (sub *Subscription) Release() {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		sub.store.remove(sub.id)
	})
}

func (sub *Subscription) active() bool {
	return sub.store.active(sub.id)
}
