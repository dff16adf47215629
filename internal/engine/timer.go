package engine

import "time"

type (
	// Timer abstracts time.Timer so actors can be driven manually in
	// tests
	Timer interface {
		Channel() <-chan time.Time
		Reset(time.Duration)
		Stop()
	}

	// TimerConstructor creates a new Timer for the given duration
	TimerConstructor func(time.Duration) Timer

	wallTimer struct {
		*time.Timer
	}
)

// NewTimer creates a Timer backed by a real time.Timer
func NewTimer(d time.Duration) Timer {
	return &wallTimer{Timer: time.NewTimer(d)}
}

func (t *wallTimer) Channel() <-chan time.Time {
	return t.C
}

func (t *wallTimer) Reset(d time.Duration) {
	if !t.Timer.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Timer.Reset(d)
}

func (t *wallTimer) Stop() {
	t.Timer.Stop()
}
