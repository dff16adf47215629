package api

import "encoding/json"

type (
	// ErrorResponse is the JSON error envelope for all HTTP endpoints
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}

	// SessionCreatedResponse returns the new session's identifier
	SessionCreatedResponse struct {
		SessionID SessionID `json:"session_id"`
	}

	// SessionResponse returns the full session state plus the advance gate
	// for the current step
	SessionResponse struct {
		Session    *SessionState `json:"session"`
		CanAdvance bool          `json:"can_advance"`
	}

	// ChooseFlowRequest declares the user type on the type-select step
	ChooseFlowRequest struct {
		Kind FlowKind `json:"kind"`
	}

	// SelectRequest stores a single-selection answer for a step
	SelectRequest struct {
		Key   StepKey `json:"key"`
		Index int     `json:"index"`
	}

	// ToggleRequest toggles one index in a multi-selection step
	ToggleRequest struct {
		Key   StepKey `json:"key"`
		Index int     `json:"index"`
	}

	// BudgetRequest edits the budget range
	BudgetRequest struct {
		Key StepKey `json:"key"`
		Min int     `json:"min"`
		Max int     `json:"max"`
	}

	// LocationRequest stores the chosen location
	LocationRequest struct {
		Key      StepKey   `json:"key"`
		Location *Location `json:"location"`
	}

	// TextRequest carries a free-text field edit
	TextRequest struct {
		Value string `json:"value"`
	}

	// SwipeRequest records one card outcome. Direction is "left", "right",
	// or "up"
	SwipeRequest struct {
		Card      CardID `json:"card"`
		Direction string `json:"direction"`
	}

	// DeckResponse returns the loaded swipe deck
	DeckResponse struct {
		Cards []*Card `json:"cards"`
		Count int     `json:"count"`
	}

	// HealthResponse reports service liveness
	HealthResponse struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}

	// NavigationSignal is published on the event stream when the engine
	// hands control back to the app shell
	NavigationSignal struct {
		SessionID SessionID `json:"session_id"`
		Action    string    `json:"action"`
	}

	// FlowStepView is one catalog step decorated for rendering: tag steps
	// carry a deterministic color per option label
	FlowStepView struct {
		*StepDefinition
		Colors map[string]string `json:"colors,omitempty"`
	}

	// FlowViewResponse returns the session's step sequence with rendering
	// decorations and the current cursor
	FlowViewResponse struct {
		Kind   FlowKind        `json:"kind"`
		Cursor int             `json:"cursor"`
		Steps  []*FlowStepView `json:"steps"`
	}

	// ClientSubscription names what a WebSocket client wants to receive:
	// one session's events, optionally narrowed by type
	ClientSubscription struct {
		SessionID  SessionID   `json:"session_id"`
		EventTypes []EventType `json:"event_types,omitempty"`
	}

	// SubscribeRequest is the inbound WebSocket subscription message
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// SubscribedResult acknowledges a subscription with the session's
	// current state and the next event sequence
	SubscribedResult struct {
		Type      string          `json:"type"`
		SessionID SessionID       `json:"session_id"`
		Data      json.RawMessage `json:"data"`
		Sequence  int64           `json:"sequence"`
	}

	// WebSocketEvent is one streamed session event
	WebSocketEvent struct {
		Type      EventType       `json:"type"`
		SessionID SessionID       `json:"session_id"`
		Data      json.RawMessage `json:"data"`
		Timestamp int64           `json:"timestamp"`
		Sequence  int64           `json:"sequence"`
	}

	// NavigationMessage wraps a navigation signal for the event stream
	NavigationMessage struct {
		Type string            `json:"type"`
		Data *NavigationSignal `json:"data"`
	}
)

// Navigation actions published to the app shell
const (
	NavigateBack        = "back"
	NavigateSignIn      = "sign_in"
	NavigateMain        = "main"
	NavigatePermissions = "permissions"
)
