package autosave

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable single-shot timer.
type Timer interface {
	// Stop reports whether the call prevented the timer from firing.
	Stop() bool
}

// Scheduler arms single-shot timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler runs timers on the runtime clock.
type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler only fires timers when Advance moves its clock. Callbacks
// run on the goroutine calling Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that came due, in
// deadline order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	live := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			live = append(live, t)
		}
	}
	s.timers = live
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending counts armed timers.
func (s *ManualScheduler) Pending() int {
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

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
