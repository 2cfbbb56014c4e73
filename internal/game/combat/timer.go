package combat

import (
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. Safe to call multiple times.
	Stop()
}

// Scheduler runs a callback once after a delay. It stands in for the
// "enemy is thinking" pause so tests can drive turns synchronously.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RoundTimer fires a callback after a duration unless stopped.
// It is safe for concurrent use.
type RoundTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewRoundTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: onFire must not be nil.
// Postcondition: onFire will be called unless Stop is called first.
func NewRoundTimer(duration time.Duration, onFire func()) *RoundTimer {
	rt := &RoundTimer{}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.timer = time.AfterFunc(duration, func() {
		rt.mu.Lock()
		stopped := rt.stopped
		rt.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return rt
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not start after Stop returns.
func (rt *RoundTimer) Stop() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.stopped = true
	rt.timer.Stop()
}

// RealScheduler schedules callbacks on wall-clock timers.
type RealScheduler struct{}

// AfterFunc starts a RoundTimer.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return NewRoundTimer(d, fn)
}

// ManualScheduler queues callbacks until Fire is called. It ignores delays.
// It is safe for concurrent use.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTimer) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc queues fn; it runs on the next Fire unless stopped.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{delay: d, fn: fn}
	s.mu.Lock()
	s.pending = append(s.pending, t)
	s.mu.Unlock()
	return t
}

// Pending returns the number of queued callbacks that have not been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if t.live() {
			n++
		}
	}
	return n
}

// LastDelay returns the delay requested by the most recent AfterFunc, or 0.
func (s *ManualScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return 0
	}
	return s.pending[len(s.pending)-1].delay
}

// Fire runs every live queued callback on the calling goroutine and clears
// the queue. Callbacks scheduled while firing wait for the next Fire.
//
// Postcondition: Returns the number of callbacks run.
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	n := 0
	for _, t := range batch {
		if t.live() {
			t.Stop()
			t.fn()
			n++
		}
	}
	return n
}
