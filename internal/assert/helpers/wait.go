package helpers

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"
	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
)

// EventWaiter waits for session events matching a filter. Create it
// before triggering the action so the event cannot be missed
type EventWaiter struct {
	consumer topic.Consumer[*timebox.Event]
	filter   events.EventFilter
}

// DefaultWaitTimeout bounds event waits in tests
const DefaultWaitTimeout = 5 * time.Second

// Subscribe creates a waiter for the session's events of the given types
func (e *TestEnv) Subscribe(
	id api.SessionID, eventTypes ...api.EventType,
) *EventWaiter {
	session := events.FilterSession(id)
	typed := events.FilterEvents(eventTypes...)
	return &EventWaiter{
		consumer: e.EventHub.NewConsumer(),
		filter: func(ev *timebox.Event) bool {
			return session(ev) && typed(ev)
		},
	}
}

// Wait blocks until a matching event arrives or the default timeout
// elapses
func (w *EventWaiter) Wait(t *testing.T) {
	t.Helper()
	w.WaitFor(t, DefaultWaitTimeout)
}

// WaitFor blocks until a matching event arrives or the timeout elapses
func (w *EventWaiter) WaitFor(t *testing.T, timeout time.Duration) {
	t.Helper()
	defer w.consumer.Close()

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				t.Fatal("event consumer closed while waiting")
			}
			if w.filter(ev) {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for session event")
		}
	}
}
