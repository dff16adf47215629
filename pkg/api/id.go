package api

type (
	// SessionID uniquely identifies one onboarding wizard run
	SessionID string

	// StepKey uniquely identifies a step within a flow
	StepKey string

	// CardID identifies a recommendable content item in the swipe deck
	CardID string

	// FlowKind selects which named flow the session follows. It is chosen
	// exactly once, on the type-select step, and is immutable afterward
	FlowKind string
)

const (
	FlowBusiness FlowKind = "business"
	FlowLeisure  FlowKind = "leisure"
)

// Valid returns true for a recognized flow kind
func (k FlowKind) Valid() bool {
	return k == FlowBusiness || k == FlowLeisure
}
