package engine

import (
	"context"
	"log/slog"

	"github.com/wayfare-app/onboard/internal/client"
	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
	"github.com/wayfare-app/onboard/pkg/log"
)

// ResendCode re-sends the verification code from the code-verify step.
// Permitted only once the cooldown has reached zero; the payload is
// rebuilt from the same accumulated selections, so it matches the one
// last sent
func (e *Engine) ResendCode(ctx context.Context, id api.SessionID) error {
	st, err := e.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if st.Status != api.SessionActive {
		return ErrSessionEnded
	}
	if !st.AtVariant(api.VariantCodeVerify) {
		return ErrWrongStep
	}
	if st.ResendCooldown > 0 {
		return ErrCooldownActive
	}
	return e.sendCode(ctx, id)
}

// ValidateCode submits the entered code to the account service. Triggered
// automatically when the code entry reaches its full length and by manual
// confirmation; the boolean re-entrancy lock drops (never queues) a
// second trigger while one call is outstanding, so back-to-back triggers
// produce exactly one network call
func (e *Engine) ValidateCode(ctx context.Context, id api.SessionID) error {
	actor := e.actorFor(id)
	if !actor.verifyLock.CompareAndSwap(false, true) {
		return nil
	}
	defer actor.verifyLock.Store(false)

	started := false
	codeStep := -1
	var req *api.VerifyRequest
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			if !st.AtVariant(api.VariantCodeVerify) || st.Verifying {
				return nil
			}
			if len(st.Code) != api.CodeLength {
				return ErrCannotAdvance
			}
			started = true
			codeStep = st.Cursor
			req = &api.VerifyRequest{
				Email:   st.TravelEmail,
				OTPCode: st.Code,
			}
			return events.Raise(ag, api.EventTypeVerifyStarted,
				api.VerifyStartedEvent{SessionID: id})
		},
	)
	if err != nil || !started {
		return err
	}

	resp, err := e.accounts.ValidateCode(ctx, req)
	if err != nil {
		slog.Warn("Code validation failed",
			log.SessionID(id),
			log.Error(err))
		return e.raiseAtStep(ctx, id, codeStep, "verify failure",
			api.EventTypeVerifyFailed,
			api.VerifyFailedEvent{SessionID: id})
	}

	// durable state is written through before the cursor moves; a store
	// failure is logged but never wedges the retry path
	if resp.TokenType == "" {
		resp.TokenType = api.DefaultTokenType
	}
	if err := e.creds.SetCredentials(ctx, resp); err != nil {
		slog.Error("Failed to persist credentials",
			log.SessionID(id),
			log.Error(err))
	}
	e.runLocationSafetyNet(id)

	return e.raiseAtStep(ctx, id, codeStep, "verify completion",
		api.EventTypeVerified,
		api.VerifiedEvent{SessionID: id, To: codeStep + 1})
}

// sendCode builds the role-tagged signup payload and invokes account
// creation. On success the code entry resets, the cooldown restarts, and
// the cursor jumps to the code-verify step; on failure the cursor stays
// put and the classified error is presented
func (e *Engine) sendCode(ctx context.Context, id api.SessionID) error {
	started := false
	issuedAt := -1
	codeStep := -1
	var payload *api.SignupPayload
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			if st.Submitting {
				return ErrSubmitInFlight
			}
			codeStep = st.Flow.IndexOf(api.VariantCodeVerify)
			if codeStep < 0 {
				return ErrStepNotFound
			}
			var err error
			if payload, err = BuildSignupPayload(st); err != nil {
				return err
			}
			started = true
			issuedAt = st.Cursor
			return events.Raise(ag, api.EventTypeSubmitStarted,
				api.SubmitStartedEvent{SessionID: id})
		},
	)
	if err != nil || !started {
		return err
	}

	if err := e.accounts.CreateUser(ctx, payload); err != nil {
		remote := client.Classify(err)
		slog.Warn("Account creation failed",
			log.SessionID(id),
			log.Status(remote.Kind),
			log.Error(err))
		return e.raiseAtStep(ctx, id, issuedAt, "send failure",
			api.EventTypeSubmitFailed,
			api.SubmitFailedEvent{
				SessionID: id,
				Kind:      remote.Kind,
				Detail:    remote.Detail,
			})
	}

	return e.raiseAtStep(ctx, id, issuedAt, "send completion",
		api.EventTypeCodeSent,
		api.CodeSentEvent{
			SessionID: id,
			CodeStep:  codeStep,
			Cooldown:  e.config.ResendCooldownSeconds,
		})
}

// raiseAtStep raises an event only when the cursor is still at the step
// that issued the network call. A completion arriving after the user has
// navigated away is dropped, not applied against a step no longer shown
func (e *Engine) raiseAtStep(
	ctx context.Context, id api.SessionID, issuedAt int, what string,
	eventType api.EventType, data any,
) error {
	stale := false
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if st.ID == "" || st.Status != api.SessionActive ||
				st.Cursor != issuedAt {
				stale = true
				return nil
			}
			return events.Raise(ag, eventType, data)
		},
	)
	if stale {
		e.logStale(id, what)
	}
	return err
}
