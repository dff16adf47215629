package api

import (
	"slices"
	"time"
)

type (
	// SessionStatus represents the lifecycle state of a wizard session
	SessionStatus string

	// RemoteErrorKind classifies a remote failure for presentation. Raw
	// network errors never cross into a step renderer
	RemoteErrorKind string

	// RemoteFailure is the user-presentable form of a remote error
	RemoteFailure struct {
		Kind   RemoteErrorKind `json:"kind"`
		Detail string          `json:"detail,omitempty"`
	}

	// PersonalForm is the leisure signup name form
	PersonalForm struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	// BusinessPersonalForm is the business signup identity form
	BusinessPersonalForm struct {
		FullName  string `json:"full_name"`
		Expertise string `json:"expertise,omitempty"`
	}

	// BusinessWorkForm is the business signup company form
	BusinessWorkForm struct {
		Role       string   `json:"role"`
		Company    string   `json:"company"`
		Stage      string   `json:"stage"`
		Industries []string `json:"industries"`
	}

	// SessionState is the wizard session aggregate. It is owned exclusively
	// by the flow engine for one onboarding run and discarded when the
	// wizard completes or is abandoned; durable state is written through to
	// the credential and preference stores as a side effect of specific
	// transitions, never by the session itself
	SessionState struct {
		CreatedAt   time.Time `json:"created_at"`
		CompletedAt time.Time `json:"completed_at,omitempty"`
		LastUpdated time.Time `json:"last_updated"`

		ID       SessionID     `json:"id"`
		Status   SessionStatus `json:"status"`
		FlowKind FlowKind      `json:"flow_kind,omitempty"`
		Flow     Flow          `json:"flow"`
		Cursor   int           `json:"cursor"`

		Selections SelectionStore `json:"selections"`

		TravelEmail string `json:"travel_email,omitempty"`
		TravelName  string `json:"travel_name,omitempty"`
		Code        string `json:"code,omitempty"`

		Personal         *PersonalForm         `json:"personal,omitempty"`
		BusinessPersonal *BusinessPersonalForm `json:"business_personal,omitempty"`
		BusinessWork     *BusinessWorkForm     `json:"business_work,omitempty"`

		Deck     []CardID `json:"deck,omitempty"`
		Likes    []CardID `json:"likes,omitempty"`
		Dislikes []CardID `json:"dislikes,omitempty"`

		Submitting     bool `json:"submitting,omitempty"`
		Verifying      bool `json:"verifying,omitempty"`
		ResendCooldown int  `json:"resend_cooldown"`

		LastFailure *RemoteFailure `json:"last_failure,omitempty"`
	}
)

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

const (
	// ErrorKindDuplicateEmail offers "try a different email" or "sign in
	// instead" rather than a retry
	ErrorKindDuplicateEmail RemoteErrorKind = "duplicate_email"

	// ErrorKindDetailed carries a server-provided detail shown verbatim
	ErrorKindDetailed RemoteErrorKind = "detailed"

	// ErrorKindGeneric is an unclassified remote failure shown with a fixed
	// "failed, please try again" message
	ErrorKindGeneric RemoteErrorKind = "generic"

	// ErrorKindVerification is a code-validation failure, always shown with
	// a fixed message so the server's reason is never leaked
	ErrorKindVerification RemoteErrorKind = "verification"
)

// CodeLength is the one-time code length; validation auto-fires when the
// entered code reaches exactly this many characters
const CodeLength = 6

// CurrentStep returns the step under the cursor, or nil when the cursor is
// out of range
func (st *SessionState) CurrentStep() *StepDefinition {
	return st.Flow.Step(st.Cursor)
}

// AtVariant reports whether the cursor currently rests on a step of the
// given variant
func (st *SessionState) AtVariant(v StepVariant) bool {
	step := st.CurrentStep()
	return step != nil && step.Variant == v
}

// DeckComplete reports whether every card in the deck has been swiped one
// way or the other
func (st *SessionState) DeckComplete() bool {
	if len(st.Deck) == 0 {
		return false
	}
	for _, id := range st.Deck {
		if !slices.Contains(st.Likes, id) &&
			!slices.Contains(st.Dislikes, id) {
			return false
		}
	}
	return true
}

// SetStatus returns a new SessionState with the updated status
func (st *SessionState) SetStatus(s SessionStatus) *SessionState {
	res := *st
	res.Status = s
	return &res
}

// SetFlow returns a new SessionState with the flow kind and step sequence
// installed
func (st *SessionState) SetFlow(kind FlowKind, flow Flow) *SessionState {
	res := *st
	res.FlowKind = kind
	res.Flow = flow
	return &res
}

// SetCursor returns a new SessionState with the cursor moved, clamped to
// the flow bounds
func (st *SessionState) SetCursor(to int) *SessionState {
	res := *st
	res.Cursor = min(max(to, 0), max(len(st.Flow)-1, 0))
	return &res
}

// SetSelection returns a new SessionState with the step's slot overwritten
func (st *SessionState) SetSelection(
	key StepKey, v *SelectionValue,
) *SessionState {
	res := *st
	res.Selections = st.Selections.Set(key, v)
	return &res
}

// SetTravelEmail returns a new SessionState with the email field set
func (st *SessionState) SetTravelEmail(email string) *SessionState {
	res := *st
	res.TravelEmail = email
	return &res
}

// SetTravelName returns a new SessionState with the name field set
func (st *SessionState) SetTravelName(name string) *SessionState {
	res := *st
	res.TravelName = name
	return &res
}

// SetCode returns a new SessionState with the verification code entry set
func (st *SessionState) SetCode(code string) *SessionState {
	res := *st
	res.Code = code
	return &res
}

// SetPersonal returns a new SessionState with the personal form set
func (st *SessionState) SetPersonal(f *PersonalForm) *SessionState {
	res := *st
	res.Personal = f
	return &res
}

// SetBusinessPersonal returns a new SessionState with the business identity
// form set
func (st *SessionState) SetBusinessPersonal(
	f *BusinessPersonalForm,
) *SessionState {
	res := *st
	res.BusinessPersonal = f
	return &res
}

// SetBusinessWork returns a new SessionState with the business company form
// set
func (st *SessionState) SetBusinessWork(f *BusinessWorkForm) *SessionState {
	res := *st
	res.BusinessWork = f
	return &res
}

// SetDeck returns a new SessionState with the swipe deck installed
func (st *SessionState) SetDeck(cards []CardID) *SessionState {
	res := *st
	res.Deck = slices.Clone(cards)
	return &res
}

// RecordLike returns a new SessionState with the card appended to likes
// (deduplicated) and removed from dislikes if present
func (st *SessionState) RecordLike(card CardID) *SessionState {
	res := *st
	res.Dislikes = removeCard(st.Dislikes, card)
	res.Likes = appendCard(st.Likes, card)
	return &res
}

// RecordDislike is the mirror of RecordLike
func (st *SessionState) RecordDislike(card CardID) *SessionState {
	res := *st
	res.Likes = removeCard(st.Likes, card)
	res.Dislikes = appendCard(st.Dislikes, card)
	return &res
}

// SetSubmitting returns a new SessionState with the submitting flag set
func (st *SessionState) SetSubmitting(v bool) *SessionState {
	res := *st
	res.Submitting = v
	return &res
}

// SetVerifying returns a new SessionState with the verifying flag set
func (st *SessionState) SetVerifying(v bool) *SessionState {
	res := *st
	res.Verifying = v
	return &res
}

// SetResendCooldown returns a new SessionState with the cooldown set,
// floored at zero
func (st *SessionState) SetResendCooldown(secs int) *SessionState {
	res := *st
	res.ResendCooldown = max(secs, 0)
	return &res
}

// SetLastFailure returns a new SessionState with the presented failure set
func (st *SessionState) SetLastFailure(f *RemoteFailure) *SessionState {
	res := *st
	res.LastFailure = f
	return &res
}

// SetCompletedAt returns a new SessionState with the completion time set
func (st *SessionState) SetCompletedAt(t time.Time) *SessionState {
	res := *st
	res.CompletedAt = t
	return &res
}

// SetLastUpdated returns a new SessionState with the last updated time set
func (st *SessionState) SetLastUpdated(t time.Time) *SessionState {
	res := *st
	res.LastUpdated = t
	return &res
}

func appendCard(cards []CardID, card CardID) []CardID {
	if slices.Contains(cards, card) {
		return cards
	}
	res := slices.Clone(cards)
	return append(res, card)
}

func removeCard(cards []CardID, card CardID) []CardID {
	i := slices.Index(cards, card)
	if i < 0 {
		return cards
	}
	return slices.Delete(slices.Clone(cards), i, i+1)
}
