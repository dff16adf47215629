package engine

import (
	"context"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
)

// Advance moves the cursor forward by one, gated by the current step's
// validation rule. At the code-verify step advancing submits the entered
// code instead of moving; when the next step is code-verify it triggers
// the send-code transition. Either way the cursor crosses the code step
// only once the account service accepts
func (e *Engine) Advance(ctx context.Context, id api.SessionID) error {
	st, err := e.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if st.Status != api.SessionActive {
		return ErrSessionEnded
	}
	if !CanAdvance(st) {
		return ErrCannotAdvance
	}
	if st.AtVariant(api.VariantCodeVerify) {
		return e.ValidateCode(ctx, id)
	}

	next := st.Flow.Step(st.Cursor + 1)
	if next != nil && next.Variant == api.VariantCodeVerify {
		return e.sendCode(ctx, id)
	}
	return e.jumpTo(ctx, id, st.Cursor, st.Cursor+1)
}

// Retreat moves the cursor back by one. At step zero it abandons the
// session and delegates to the back-navigation collaborator to leave the
// wizard entirely; a hardware back gesture routes here so it can never
// pop the enclosing screen while the cursor is inside the flow
func (e *Engine) Retreat(ctx context.Context, id api.SessionID) error {
	abandoned := false
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			if st.Cursor == 0 {
				abandoned = true
				return events.Raise(ag, api.EventTypeSessionAbandoned,
					api.SessionAbandonedEvent{SessionID: id})
			}
			return events.Raise(ag, api.EventTypeCursorMoved,
				api.CursorMovedEvent{SessionID: id, To: st.Cursor - 1})
		},
	)
	if err != nil {
		return err
	}
	if abandoned {
		e.navigator.Back(id)
	}
	return nil
}

// Complete ends the wizard from its terminal slide and hands control to
// the app shell: replace to the main area, then the permissions screen
func (e *Engine) Complete(ctx context.Context, id api.SessionID) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireTransition(st, api.SessionCompleted); err != nil {
				return err
			}
			if !st.AtVariant(api.VariantTerminal) {
				return ErrWrongStep
			}
			return events.Raise(ag, api.EventTypeSessionCompleted,
				api.SessionCompletedEvent{SessionID: id})
		},
	)
	if err != nil {
		return err
	}
	e.navigator.CompleteOnboarding(id)
	return nil
}

// jumpTo moves the cursor to an absolute position, guarded on the cursor
// still being where it was when the jump was decided. A stale jump is
// dropped rather than applied against a step the user has already left
func (e *Engine) jumpTo(
	ctx context.Context, id api.SessionID, from, to int,
) error {
	stale := false
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			if st.Cursor != from {
				stale = true
				return nil
			}
			return events.Raise(ag, api.EventTypeCursorMoved,
				api.CursorMovedEvent{SessionID: id, To: to})
		},
	)
	if stale {
		e.logStale(id, "jump")
	}
	return err
}
