package api

type (
	// EventType identifies a session event
	EventType string

	// SessionStartedEvent begins a wizard run. The flow starts as the
	// singleton type-select sequence until a kind is chosen
	SessionStartedEvent struct {
		SessionID SessionID `json:"session_id"`
		Flow      Flow      `json:"flow"`
	}

	// FlowChosenEvent installs the named flow for the session. The step
	// sequence travels in the event so appliers stay pure
	FlowChosenEvent struct {
		SessionID SessionID `json:"session_id"`
		Kind      FlowKind  `json:"kind"`
		Flow      Flow      `json:"flow"`
	}

	// SelectionSetEvent overwrites a step's selection slot
	SelectionSetEvent struct {
		SessionID SessionID       `json:"session_id"`
		Key       StepKey         `json:"key"`
		Value     *SelectionValue `json:"value"`
	}

	// IndexToggledEvent toggles one index in a multi-selection step:
	// removing it when present (preserving the order of the remainder) and
	// appending it when absent
	IndexToggledEvent struct {
		SessionID SessionID `json:"session_id"`
		Key       StepKey   `json:"key"`
		Index     int       `json:"index"`
	}

	// CursorMovedEvent moves the cursor to an absolute position
	CursorMovedEvent struct {
		SessionID SessionID `json:"session_id"`
		To        int       `json:"to"`
	}

	// EmailChangedEvent updates the travel email entry
	EmailChangedEvent struct {
		SessionID SessionID `json:"session_id"`
		Email     string    `json:"email"`
	}

	// NameChangedEvent updates the travel name entry
	NameChangedEvent struct {
		SessionID SessionID `json:"session_id"`
		Name      string    `json:"name"`
	}

	// CodeChangedEvent updates the one-time code entry
	CodeChangedEvent struct {
		SessionID SessionID `json:"session_id"`
		Code      string    `json:"code"`
	}

	// PersonalFormSetEvent overwrites the personal form
	PersonalFormSetEvent struct {
		SessionID SessionID     `json:"session_id"`
		Form      *PersonalForm `json:"form"`
	}

	// BusinessPersonalFormSetEvent overwrites the business identity form
	BusinessPersonalFormSetEvent struct {
		SessionID SessionID             `json:"session_id"`
		Form      *BusinessPersonalForm `json:"form"`
	}

	// BusinessWorkFormSetEvent overwrites the business company form
	BusinessWorkFormSetEvent struct {
		SessionID SessionID         `json:"session_id"`
		Form      *BusinessWorkForm `json:"form"`
	}

	// DeckLoadedEvent installs the swipe deck's card IDs so deck completion
	// is detectable
	DeckLoadedEvent struct {
		SessionID SessionID `json:"session_id"`
		Cards     []CardID  `json:"cards"`
	}

	// SwipeRecordedEvent records one card outcome. Right-swipe and swipe-up
	// arrive as Liked=true, left-swipe as Liked=false
	SwipeRecordedEvent struct {
		SessionID SessionID `json:"session_id"`
		Card      CardID    `json:"card"`
		Liked     bool      `json:"liked"`
	}

	// SubmitStartedEvent marks the account-creation call as in flight
	SubmitStartedEvent struct {
		SessionID SessionID `json:"session_id"`
	}

	// CodeSentEvent records a successful send: the code entry resets, the
	// cooldown restarts, and the cursor jumps to the code-verify step
	CodeSentEvent struct {
		SessionID SessionID `json:"session_id"`
		CodeStep  int       `json:"code_step"`
		Cooldown  int       `json:"cooldown"`
	}

	// SubmitFailedEvent records a classified account-creation failure; the
	// cursor does not move
	SubmitFailedEvent struct {
		SessionID SessionID       `json:"session_id"`
		Kind      RemoteErrorKind `json:"kind"`
		Detail    string          `json:"detail,omitempty"`
	}

	// VerifyStartedEvent marks the code-validation call as in flight
	VerifyStartedEvent struct {
		SessionID SessionID `json:"session_id"`
	}

	// VerifiedEvent records a successful validation; the cursor advances
	// past the code step to the terminal slide
	VerifiedEvent struct {
		SessionID SessionID `json:"session_id"`
		To        int       `json:"to"`
	}

	// VerifyFailedEvent records a failed validation; the code entry is
	// preserved for correction
	VerifyFailedEvent struct {
		SessionID SessionID `json:"session_id"`
	}

	// CooldownTickedEvent decrements the resend cooldown by one second,
	// floored at zero
	CooldownTickedEvent struct {
		SessionID SessionID `json:"session_id"`
	}

	// FailureDismissedEvent clears the presented failure dialog
	FailureDismissedEvent struct {
		SessionID SessionID `json:"session_id"`
	}

	// SessionCompletedEvent ends the wizard from its terminal slide
	SessionCompletedEvent struct {
		SessionID SessionID `json:"session_id"`
	}

	// SessionAbandonedEvent ends the wizard from a back navigation at
	// cursor zero or a sign-in-instead choice
	SessionAbandonedEvent struct {
		SessionID SessionID `json:"session_id"`
	}
)

const (
	EventTypeSessionStarted          EventType = "session_started"
	EventTypeFlowChosen              EventType = "flow_chosen"
	EventTypeSelectionSet            EventType = "selection_set"
	EventTypeIndexToggled            EventType = "index_toggled"
	EventTypeCursorMoved             EventType = "cursor_moved"
	EventTypeEmailChanged            EventType = "email_changed"
	EventTypeNameChanged             EventType = "name_changed"
	EventTypeCodeChanged             EventType = "code_changed"
	EventTypePersonalFormSet         EventType = "personal_form_set"
	EventTypeBusinessPersonalFormSet EventType = "business_personal_form_set"
	EventTypeBusinessWorkFormSet     EventType = "business_work_form_set"
	EventTypeDeckLoaded              EventType = "deck_loaded"
	EventTypeSwipeRecorded           EventType = "swipe_recorded"
	EventTypeSubmitStarted           EventType = "submit_started"
	EventTypeCodeSent                EventType = "code_sent"
	EventTypeSubmitFailed            EventType = "submit_failed"
	EventTypeVerifyStarted           EventType = "verify_started"
	EventTypeVerified                EventType = "verified"
	EventTypeVerifyFailed            EventType = "verify_failed"
	EventTypeCooldownTicked          EventType = "cooldown_ticked"
	EventTypeFailureDismissed        EventType = "failure_dismissed"
	EventTypeSessionCompleted        EventType = "session_completed"
	EventTypeSessionAbandoned        EventType = "session_abandoned"
)
