package helpers

import (
	"sync"
	"time"

	"github.com/wayfare-app/onboard/internal/engine"
)

type (
	// ManualTimers hands out manually fired timers so timer-driven
	// transitions run under test control instead of the wall clock
	ManualTimers struct {
		mu     sync.Mutex
		timers []*ManualTimer
	}

	// ManualTimer implements engine.Timer; it fires only when told to
	ManualTimer struct {
		mu       sync.Mutex
		ch       chan time.Time
		armed    bool
		duration time.Duration
	}
)

// NewManualTimers creates a manual timer source
func NewManualTimers() *ManualTimers {
	return &ManualTimers{}
}

// Constructor is installed on the engine via WithTimers
func (m *ManualTimers) Constructor(d time.Duration) engine.Timer {
	t := &ManualTimer{
		ch:       make(chan time.Time, 1),
		armed:    true,
		duration: d,
	}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

// Fire fires the first armed timer whose last reset used the given
// duration, returning false when none is armed with it. Distinct delays
// identify the transition under test
func (m *ManualTimers) Fire(d time.Duration) bool {
	m.mu.Lock()
	timers := append([]*ManualTimer{}, m.timers...)
	m.mu.Unlock()

	for _, t := range timers {
		if t.fire(d) {
			return true
		}
	}
	return false
}

// Armed reports whether any timer is currently armed with the duration
func (m *ManualTimers) Armed(d time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.timers {
		t.mu.Lock()
		hit := t.armed && t.duration == d
		t.mu.Unlock()
		if hit {
			return true
		}
	}
	return false
}

func (t *ManualTimer) Channel() <-chan time.Time {
	return t.ch
}

func (t *ManualTimer) Reset(d time.Duration) {
	t.mu.Lock()
	t.armed = true
	t.duration = d
	t.mu.Unlock()
}

func (t *ManualTimer) Stop() {
	t.mu.Lock()
	t.armed = false
	t.mu.Unlock()
}

func (t *ManualTimer) fire(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed || t.duration != d {
		return false
	}
	t.armed = false
	select {
	case t.ch <- time.Now():
		return true
	default:
		return false
	}
}
