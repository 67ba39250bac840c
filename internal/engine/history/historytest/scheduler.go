// Package historytest provides deterministic timers for testing debounced
// history commits.
package historytest

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/blockforge/internal/engine/history"
)

// ManualScheduler is a history.Scheduler driven by Advance instead of the
// wall clock. It also serves as the store clock through Now.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*ManualTimer
	nextID int
}

var _ history.Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// ManualTimer is a timer created by ManualScheduler.
type ManualTimer struct {
	id       int
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
	sched    *ManualScheduler
}

// Stop prevents the timer from firing. Returns false if it already fired or
// was stopped.
func (t *ManualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) history.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &ManualTimer{
		id:       s.nextID,
		deadline: s.now.Add(d),
		fn:       f,
		sched:    s,
	}
	s.nextID++
	s.timers = append(s.timers, t)
	return t
}

// Now returns the scheduler's clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d and runs every timer that became due,
// in deadline order, on the calling goroutine.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)

	var due []*ManualTimer
	remaining := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped || t.fired:
		case !t.deadline.After(s.now):
			t.fired = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	s.timers = remaining
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].id < due[j].id
		}
		return due[i].deadline.Before(due[j].deadline)
	})

	// Run callbacks outside the lock; they call back into the store.
	for _, t := range due {
		t.fn()
	}
}

// Active returns the number of timers that have neither fired nor been stopped.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
