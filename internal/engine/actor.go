package engine

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
	"github.com/wayfare-app/onboard/pkg/log"
)

type (
	// sessionActor owns the timer-driven transitions of one session: the
	// delayed auto-advance jumps, the resend cooldown ticker, and the
	// code-validation re-entrancy lock. All delayed transitions are
	// processed as explicit messages against the session aggregate, with
	// guards re-checked at fire time
	sessionActor struct {
		engine *Engine
		id     api.SessionID
		events chan *timebox.Event

		verifyLock atomic.Bool

		jumpTimer Timer
		jump      *pendingJump
		tickTimer Timer
		ticking   bool
	}

	// pendingJump is a scheduled cursor move, dropped at fire time when
	// the cursor has already left the step that scheduled it
	pendingJump struct {
		from int
		to   int
	}
)

const (
	actorIdleTimeout = 30 * time.Minute
	actorQueueSize   = 64

	cooldownTick = time.Second
)

func newSessionActor(e *Engine, id api.SessionID) *sessionActor {
	return &sessionActor{
		engine: e,
		id:     id,
		events: make(chan *timebox.Event, actorQueueSize),
	}
}

func (sa *sessionActor) run() {
	e := sa.engine
	defer e.wg.Done()
	defer e.sessions.Delete(sa.id)

	idle := e.newTimer(actorIdleTimeout)
	defer idle.Stop()

	sa.jumpTimer = e.newTimer(actorIdleTimeout)
	sa.jumpTimer.Stop()
	defer sa.jumpTimer.Stop()

	sa.tickTimer = e.newTimer(actorIdleTimeout)
	sa.tickTimer.Stop()
	defer sa.tickTimer.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return

		case <-idle.Channel():
			slog.Debug("Session actor idle", log.SessionID(sa.id))
			return

		case ev, ok := <-sa.events:
			if !ok {
				return
			}
			idle.Reset(actorIdleTimeout)
			if sa.handleEvent(ev) {
				return
			}

		case <-sa.jumpTimer.Channel():
			sa.fireJump()

		case <-sa.tickTimer.Channel():
			sa.fireTick()
		}
	}
}

// handleEvent reacts to one session event; returns true when the session
// has ended and the actor should stop
func (sa *sessionActor) handleEvent(ev *timebox.Event) bool {
	e := sa.engine
	switch api.EventType(ev.Type) {
	case api.EventTypeFlowChosen:
		// let the type selection visually register before moving on
		sa.scheduleJump(0, 1, e.config.ChoiceAdvanceDelay)

	case api.EventTypeSelectionSet:
		var data api.SelectionSetEvent
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return false
		}
		if data.Value == nil || data.Value.Kind != api.SelectionLocation {
			return false
		}
		if st, err := e.GetSession(e.ctx, sa.id); err == nil &&
			st.AtVariant(api.VariantLocationPick) {
			sa.scheduleJump(
				st.Cursor, st.Cursor+1, e.config.LocationAdvanceDelay,
			)
		}

	case api.EventTypeSwipeRecorded:
		if st, err := e.GetSession(e.ctx, sa.id); err == nil &&
			st.AtVariant(api.VariantCardSwipe) && st.DeckComplete() {
			sa.scheduleJump(
				st.Cursor, st.Cursor+1, e.config.DeckAdvanceDelay,
			)
		}

	case api.EventTypeCodeSent:
		sa.startCooldown()

	case api.EventTypeCursorMoved, api.EventTypeVerified:
		sa.reconcile()

	case api.EventTypeSessionCompleted, api.EventTypeSessionAbandoned:
		return true
	}
	return false
}

func (sa *sessionActor) scheduleJump(from, to int, delay time.Duration) {
	sa.jump = &pendingJump{from: from, to: to}
	sa.jumpTimer.Reset(delay)
}

func (sa *sessionActor) fireJump() {
	j := sa.jump
	sa.jump = nil
	if j == nil {
		return
	}
	e := sa.engine
	if err := e.jumpTo(e.ctx, sa.id, j.from, j.to); err != nil {
		slog.Warn("Scheduled jump failed",
			log.SessionID(sa.id),
			log.Error(err))
	}
}

func (sa *sessionActor) startCooldown() {
	sa.ticking = true
	sa.tickTimer.Reset(cooldownTick)
}

func (sa *sessionActor) stopCooldown() {
	if sa.ticking {
		sa.ticking = false
		sa.tickTimer.Stop()
	}
}

// fireTick decrements the resend cooldown by one second and re-arms
// while the code-verify step is still active and the cooldown has not
// reached zero
func (sa *sessionActor) fireTick() {
	sa.ticking = false
	e := sa.engine
	st, err := e.execSession(e.ctx, sa.id,
		func(st *api.SessionState, ag *Aggregator) error {
			if st.Status != api.SessionActive ||
				!st.AtVariant(api.VariantCodeVerify) ||
				st.ResendCooldown <= 0 {
				return nil
			}
			return events.Raise(ag, api.EventTypeCooldownTicked,
				api.CooldownTickedEvent{SessionID: sa.id})
		},
	)
	if err != nil {
		slog.Warn("Cooldown tick failed",
			log.SessionID(sa.id),
			log.Error(err))
		return
	}
	if st.Status == api.SessionActive &&
		st.AtVariant(api.VariantCodeVerify) && st.ResendCooldown > 0 {
		sa.startCooldown()
	}
}

// reconcile re-derives the timer state after a cursor move: the cooldown
// ticker runs only while the code-verify step is showing with time left,
// so leaving the step in either direction cancels it, and entering the
// budget step pre-populates a default range when none is stored
func (sa *sessionActor) reconcile() {
	e := sa.engine
	st, err := e.GetSession(e.ctx, sa.id)
	if err != nil {
		return
	}

	atCode := st.Status == api.SessionActive &&
		st.AtVariant(api.VariantCodeVerify)
	if atCode && st.ResendCooldown > 0 {
		if !sa.ticking {
			sa.startCooldown()
		}
	} else {
		sa.stopCooldown()
	}

	if st.AtVariant(api.VariantBudgetRange) {
		sa.ensureBudgetDefault()
	}
}

func (sa *sessionActor) ensureBudgetDefault() {
	e := sa.engine
	_, err := e.execSession(e.ctx, sa.id,
		func(st *api.SessionState, ag *Aggregator) error {
			if st.Status != api.SessionActive {
				return nil
			}
			step := st.CurrentStep()
			if step == nil || step.Variant != api.VariantBudgetRange {
				return nil
			}
			if _, ok := st.Selections.Get(step.Key); ok {
				return nil
			}
			return events.Raise(ag, api.EventTypeSelectionSet,
				api.SelectionSetEvent{
					SessionID: sa.id,
					Key:       step.Key,
					Value: api.BudgetSelection(
						DefaultBudgetMin, DefaultBudgetMax,
					),
				})
		},
	)
	if err != nil {
		slog.Warn("Budget default failed",
			log.SessionID(sa.id),
			log.Error(err))
	}
}
