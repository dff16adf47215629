package events

import (
	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/pkg/api"
)

// EventFilter selects events from the hub stream
type EventFilter func(*timebox.Event) bool

// MakeAppliers converts an api-typed applier map into a timebox applier map
func MakeAppliers[T any](
	app map[api.EventType]timebox.Applier[T],
) timebox.Appliers[T] {
	res := map[timebox.EventType]timebox.Applier[T]{}
	for et, fn := range app {
		res[timebox.EventType(et)] = fn
	}
	return res
}

// Raise raises an event through the aggregator
func Raise[T, E any](
	ag *timebox.Aggregator[T], eventType api.EventType, event E,
) error {
	return timebox.Raise(ag, timebox.EventType(eventType), event)
}

// FilterEvents selects events whose type is in the given set
func FilterEvents(eventTypes ...api.EventType) EventFilter {
	lookup := map[timebox.EventType]bool{}
	for _, et := range eventTypes {
		lookup[timebox.EventType(et)] = true
	}
	return func(ev *timebox.Event) bool {
		return lookup[ev.Type]
	}
}

// FilterSession selects events belonging to one session aggregate
func FilterSession(id api.SessionID) EventFilter {
	return func(ev *timebox.Event) bool {
		if !IsSessionEvent(ev) {
			return false
		}
		return ev.AggregateID[1] == timebox.ID(id)
	}
}
