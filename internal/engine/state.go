package engine

import (
	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/util"
)

// StateTransitions maps states to their set of valid next states
type StateTransitions[T comparable] map[T]util.Set[T]

// sessionTransitions validates session status changes: an active session
// ends exactly once, by completing or being abandoned
var sessionTransitions = StateTransitions[api.SessionStatus]{
	api.SessionActive: util.SetOf(
		api.SessionCompleted,
		api.SessionAbandoned,
	),
	api.SessionCompleted: {},
	api.SessionAbandoned: {},
}

// CanTransition returns whether transition from one state to another is
// valid
func (t StateTransitions[T]) CanTransition(from, to T) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return allowed.Contains(to)
}

// IsTerminal returns true if the state has no valid transitions
func (t StateTransitions[T]) IsTerminal(state T) bool {
	allowed, ok := t[state]
	return ok && allowed.IsEmpty()
}
