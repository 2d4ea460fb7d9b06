package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncal/internal/model"
)

type recorder struct {
	mu    sync.Mutex
	snaps [][]model.Session
}

func (r *recorder) observe(s []model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() [][]model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps
}

func sync2020() model.Session {
	return model.Session{
		Name:      "Sync",
		Date:      time.Date(2020, time.March, 16, 0, 0, 0, 0, time.UTC),
		StartTime: "18:00",
		EndTime:   "19:30",
	}
}

func TestObserveReplaysCurrentSnapshot(t *testing.T) {
	seed := []model.Session{{Name: "a"}, {Name: "b"}}
	s := New(seed)

	var rec recorder
	sub := s.Observe(rec.observe)
	defer sub.Release()

	snaps := rec.all()
	require.Len(t, snaps, 1)
	assert.Equal(t, seed, snaps[0])
}

func TestNewCopiesSeed(t *testing.T) {
	seed := []model.Session{{Name: "a"}}
	s := New(seed)
	seed[0].Name = "mutated"

	assert.Equal(t, "a", s.Snapshot()[0].Name)
}

func TestTwoSubscribersSeeIdenticalIndependentSnapshots(t *testing.T) {
	s := New(nil)

	var r1, r2 recorder
	sub1 := s.Observe(r1.observe)
	sub2 := s.Observe(r2.observe)
	defer sub1.Release()
	defer sub2.Release()

	require.Len(t, r1.all(), 1)
	require.Len(t, r2.all(), 1)
	assert.Equal(t, r1.all()[0], r2.all()[0])

	s.AddSession(sync2020())

	require.Len(t, r1.all(), 2)
	require.Len(t, r2.all(), 2)
	a, b := r1.all()[1], r2.all()[1]
	assert.Equal(t, a, b)

	a[0].Name = "changed by subscriber"
	assert.Equal(t, "Sync", b[0].Name)
	assert.Equal(t, "Sync", s.Snapshot()[0].Name)
}

func TestSnapshotMutationDoesNotLeak(t *testing.T) {
	s := New([]model.Session{{Name: "a"}})

	snap := s.Snapshot()
	snap[0].Name = "x"
	_ = append(snap, model.Session{Name: "extra"})

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "a", s.Snapshot()[0].Name)
}

func TestNotificationsArriveInAppendOrder(t *testing.T) {
	s := New(nil)
	var rec recorder
	sub := s.Observe(rec.observe)
	defer sub.Release()

	for _, name := range []string{"one", "two", "three"} {
		s.AddSession(model.Session{Name: name})
	}

	snaps := rec.all()
	require.Len(t, snaps, 4)
	for i, snap := range snaps {
		assert.Len(t, snap, i)
	}
	assert.Equal(t, "three", snaps[3][2].Name)
}

func TestSubscribersNotifiedInSubscriptionOrder(t *testing.T) {
	s := New(nil)
	var order []string
	sub1 := s.Observe(func([]model.Session) { order = append(order, "first") })
	sub2 := s.Observe(func([]model.Session) { order = append(order, "second") })
	defer sub1.Release()
	defer sub2.Release()

	order = nil
	s.AddSession(model.Session{Name: "x"})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestReleaseStopsNotifications(t *testing.T) {
	s := New(nil)
	var rec recorder
	sub := s.Observe(rec.observe)

	sub.Release()
	sub.Release()
	s.AddSession(model.Session{Name: "after"})

	assert.Len(t, rec.all(), 1)
}

func TestReleaseInsideCallback(t *testing.T) {
	s := New(nil)
	var calls int
	var sub *Subscription
	sub = s.Observe(func([]model.Session) {
		calls++
		if sub != nil {
			sub.Release()
		}
	})

	s.AddSession(model.Session{Name: "one"})
	s.AddSession(model.Session{Name: "two"})

	assert.Equal(t, 2, calls)
}

func TestConcurrentAddsDeliverEverySnapshot(t *testing.T) {
	s := New(nil)
	var rec recorder
	sub := s.Observe(rec.observe)
	defer sub.Release()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddSession(model.Session{Name: "concurrent"})
		}()
	}
	wg.Wait()

	snaps := rec.all()
	require.Len(t, snaps, n+1)
	for i, snap := range snaps {
		assert.Len(t, snap, i)
	}
}

func TestEndToEndAddThenObserve(t *testing.T) {
	s := New(nil)
	s.AddSession(sync2020())

	var rec recorder
	sub := s.Observe(rec.observe)
	defer sub.Release()

	require.Len(t, rec.all(), 1)
	require.Len(t, rec.all()[0], 1)
	assert.Equal(t, sync2020(), rec.all()[0][0])
}
