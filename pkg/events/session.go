package events

import (
	"slices"

	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/pkg/api"
)

// SessionPrefix namespaces session aggregates in the store
const SessionPrefix = "session"

// SessionAppliers contains the event applier functions for session events
var SessionAppliers = makeSessionAppliers()

// NewSessionState creates an empty session state with an initialized
// selection store
func NewSessionState() *api.SessionState {
	return &api.SessionState{
		Selections: api.SelectionStore{},
	}
}

// SessionKey returns the aggregate ID for a session
func SessionKey[T ~string](id T) timebox.AggregateID {
	return timebox.NewAggregateID(SessionPrefix, timebox.ID(id))
}

// IsSessionEvent returns true if the event belongs to a session aggregate
func IsSessionEvent(ev *timebox.Event) bool {
	return len(ev.AggregateID) >= 2 && ev.AggregateID[0] == SessionPrefix
}

func makeSessionAppliers() timebox.Appliers[*api.SessionState] {
	return MakeAppliers(map[api.EventType]timebox.Applier[*api.SessionState]{
		api.EventTypeSessionStarted:  timebox.MakeApplier(sessionStarted),
		api.EventTypeFlowChosen:      timebox.MakeApplier(flowChosen),
		api.EventTypeSelectionSet:    timebox.MakeApplier(selectionSet),
		api.EventTypeIndexToggled:    timebox.MakeApplier(indexToggled),
		api.EventTypeCursorMoved:     timebox.MakeApplier(cursorMoved),
		api.EventTypeEmailChanged:    timebox.MakeApplier(emailChanged),
		api.EventTypeNameChanged:     timebox.MakeApplier(nameChanged),
		api.EventTypeCodeChanged:     timebox.MakeApplier(codeChanged),
		api.EventTypePersonalFormSet: timebox.MakeApplier(personalFormSet),
		api.EventTypeBusinessPersonalFormSet: timebox.MakeApplier(
			businessPersonalFormSet,
		),
		api.EventTypeBusinessWorkFormSet: timebox.MakeApplier(
			businessWorkFormSet,
		),
		api.EventTypeDeckLoaded:       timebox.MakeApplier(deckLoaded),
		api.EventTypeSwipeRecorded:    timebox.MakeApplier(swipeRecorded),
		api.EventTypeSubmitStarted:    timebox.MakeApplier(submitStarted),
		api.EventTypeCodeSent:         timebox.MakeApplier(codeSent),
		api.EventTypeSubmitFailed:     timebox.MakeApplier(submitFailed),
		api.EventTypeVerifyStarted:    timebox.MakeApplier(verifyStarted),
		api.EventTypeVerified:         timebox.MakeApplier(verified),
		api.EventTypeVerifyFailed:     timebox.MakeApplier(verifyFailed),
		api.EventTypeCooldownTicked:   timebox.MakeApplier(cooldownTicked),
		api.EventTypeFailureDismissed: timebox.MakeApplier(failureDismissed),
		api.EventTypeSessionCompleted: timebox.MakeApplier(sessionCompleted),
		api.EventTypeSessionAbandoned: timebox.MakeApplier(sessionAbandoned),
	})
}

func sessionStarted(
	_ *api.SessionState, ev *timebox.Event, data api.SessionStartedEvent,
) *api.SessionState {
	return &api.SessionState{
		ID:          data.SessionID,
		Status:      api.SessionActive,
		Flow:        data.Flow,
		Selections:  api.SelectionStore{},
		CreatedAt:   ev.Timestamp,
		LastUpdated: ev.Timestamp,
	}
}

func flowChosen(
	st *api.SessionState, ev *timebox.Event, data api.FlowChosenEvent,
) *api.SessionState {
	return st.
		SetFlow(data.Kind, data.Flow).
		SetLastUpdated(ev.Timestamp)
}

func selectionSet(
	st *api.SessionState, ev *timebox.Event, data api.SelectionSetEvent,
) *api.SessionState {
	return st.
		SetSelection(data.Key, data.Value).
		SetLastUpdated(ev.Timestamp)
}

// indexToggled reproduces the multi-choice toggle exactly: a present index
// is removed with the remainder keeping its relative order, an absent index
// is appended at the end. Displayed ordinals equal list position + 1, so
// re-toggling renumbers every tag selected after it
func indexToggled(
	st *api.SessionState, ev *timebox.Event, data api.IndexToggledEvent,
) *api.SessionState {
	current := st.Selections.SelectedIndices(data.Key)
	i := slices.Index(current, data.Index)
	if i >= 0 {
		current = slices.Delete(current, i, i+1)
	} else {
		current = append(current, data.Index)
	}
	return st.
		SetSelection(data.Key, api.IndicesSelection(current...)).
		SetLastUpdated(ev.Timestamp)
}

// cursorMoved also clears the in-flight presentation flags: leaving a
// step cancels its pending submission state, and any completion that
// arrives afterward is dropped as stale
func cursorMoved(
	st *api.SessionState, ev *timebox.Event, data api.CursorMovedEvent,
) *api.SessionState {
	return st.
		SetCursor(data.To).
		SetSubmitting(false).
		SetVerifying(false).
		SetLastUpdated(ev.Timestamp)
}

func emailChanged(
	st *api.SessionState, ev *timebox.Event, data api.EmailChangedEvent,
) *api.SessionState {
	return st.
		SetTravelEmail(data.Email).
		SetLastUpdated(ev.Timestamp)
}

func nameChanged(
	st *api.SessionState, ev *timebox.Event, data api.NameChangedEvent,
) *api.SessionState {
	return st.
		SetTravelName(data.Name).
		SetLastUpdated(ev.Timestamp)
}

func codeChanged(
	st *api.SessionState, ev *timebox.Event, data api.CodeChangedEvent,
) *api.SessionState {
	return st.
		SetCode(data.Code).
		SetLastUpdated(ev.Timestamp)
}

func personalFormSet(
	st *api.SessionState, ev *timebox.Event, data api.PersonalFormSetEvent,
) *api.SessionState {
	return st.
		SetPersonal(data.Form).
		SetLastUpdated(ev.Timestamp)
}

func businessPersonalFormSet(
	st *api.SessionState, ev *timebox.Event,
	data api.BusinessPersonalFormSetEvent,
) *api.SessionState {
	return st.
		SetBusinessPersonal(data.Form).
		SetLastUpdated(ev.Timestamp)
}

func businessWorkFormSet(
	st *api.SessionState, ev *timebox.Event,
	data api.BusinessWorkFormSetEvent,
) *api.SessionState {
	return st.
		SetBusinessWork(data.Form).
		SetLastUpdated(ev.Timestamp)
}

func deckLoaded(
	st *api.SessionState, ev *timebox.Event, data api.DeckLoadedEvent,
) *api.SessionState {
	return st.
		SetDeck(data.Cards).
		SetLastUpdated(ev.Timestamp)
}

func swipeRecorded(
	st *api.SessionState, ev *timebox.Event, data api.SwipeRecordedEvent,
) *api.SessionState {
	if data.Liked {
		st = st.RecordLike(data.Card)
	} else {
		st = st.RecordDislike(data.Card)
	}
	return st.SetLastUpdated(ev.Timestamp)
}

func submitStarted(
	st *api.SessionState, ev *timebox.Event, _ api.SubmitStartedEvent,
) *api.SessionState {
	return st.
		SetSubmitting(true).
		SetLastFailure(nil).
		SetLastUpdated(ev.Timestamp)
}

func codeSent(
	st *api.SessionState, ev *timebox.Event, data api.CodeSentEvent,
) *api.SessionState {
	return st.
		SetSubmitting(false).
		SetCode("").
		SetResendCooldown(data.Cooldown).
		SetCursor(data.CodeStep).
		SetLastFailure(nil).
		SetLastUpdated(ev.Timestamp)
}

func submitFailed(
	st *api.SessionState, ev *timebox.Event, data api.SubmitFailedEvent,
) *api.SessionState {
	return st.
		SetSubmitting(false).
		SetLastFailure(&api.RemoteFailure{
			Kind:   data.Kind,
			Detail: data.Detail,
		}).
		SetLastUpdated(ev.Timestamp)
}

func verifyStarted(
	st *api.SessionState, ev *timebox.Event, _ api.VerifyStartedEvent,
) *api.SessionState {
	return st.
		SetVerifying(true).
		SetLastUpdated(ev.Timestamp)
}

func verified(
	st *api.SessionState, ev *timebox.Event, data api.VerifiedEvent,
) *api.SessionState {
	return st.
		SetVerifying(false).
		SetCursor(data.To).
		SetLastFailure(nil).
		SetLastUpdated(ev.Timestamp)
}

// verifyFailed preserves the code entry for correction and surfaces the
// fixed verification message, never the server's reason
func verifyFailed(
	st *api.SessionState, ev *timebox.Event, _ api.VerifyFailedEvent,
) *api.SessionState {
	return st.
		SetVerifying(false).
		SetLastFailure(&api.RemoteFailure{Kind: api.ErrorKindVerification}).
		SetLastUpdated(ev.Timestamp)
}

func cooldownTicked(
	st *api.SessionState, ev *timebox.Event, _ api.CooldownTickedEvent,
) *api.SessionState {
	return st.
		SetResendCooldown(st.ResendCooldown - 1).
		SetLastUpdated(ev.Timestamp)
}

func failureDismissed(
	st *api.SessionState, ev *timebox.Event, _ api.FailureDismissedEvent,
) *api.SessionState {
	return st.
		SetLastFailure(nil).
		SetLastUpdated(ev.Timestamp)
}

func sessionCompleted(
	st *api.SessionState, ev *timebox.Event, _ api.SessionCompletedEvent,
) *api.SessionState {
	return st.
		SetStatus(api.SessionCompleted).
		SetCompletedAt(ev.Timestamp).
		SetLastUpdated(ev.Timestamp)
}

func sessionAbandoned(
	st *api.SessionState, ev *timebox.Event, _ api.SessionAbandonedEvent,
) *api.SessionState {
	return st.
		SetStatus(api.SessionAbandoned).
		SetCompletedAt(ev.Timestamp).
		SetLastUpdated(ev.Timestamp)
}
