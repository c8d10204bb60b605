package poll

import (
	"sync"
	"time"
)

// IntervalFromSeconds converts a fractional seconds setting to a timer
// interval with millisecond granularity.
func IntervalFromSeconds(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds*1000) * time.Millisecond
}

// Scheduler is a single-shot timer that the fetch cycle re-arms when it
// completes. It never fires periodically on its own.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	enabled  bool
	timer    *time.Timer
	gen      uint64
	fire     func()
}

// New creates a disabled scheduler that calls fire when an armed timer
// expires. fire runs on the timer's goroutine.
func New(interval time.Duration, fire func()) *Scheduler {
	return &Scheduler{
		interval: interval,
		fire:     fire,
	}
}

// SetInterval changes the interval used by the next Arm. A timer that is
// already armed keeps its deadline.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// Interval returns the current interval
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetEnabled turns auto-polling on or off. Turning it off stops a pending
// timer; turning it on arms one.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = enabled
	if enabled {
		s.armLocked()
	} else {
		s.stopLocked()
	}
}

// Enabled reports whether auto-polling is on
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Arm (re)starts the single-shot timer with the current interval if
// auto-polling is enabled. It returns whether a timer was armed.
func (s *Scheduler) Arm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return false
	}
	s.armLocked()
	return true
}

// Stop cancels a pending timer. It does not change the enabled flag.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Armed reports whether a timer is pending
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) armLocked() {
	s.stopLocked()
	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() {
		s.expire(gen)
	})
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// A callback that already started sees a different generation and
	// returns without firing.
	s.gen++
}

func (s *Scheduler) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.gen++
	fire := s.fire
	s.mu.Unlock()

	if fire != nil {
		fire()
	}
}
