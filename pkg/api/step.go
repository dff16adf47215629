package api

import (
	"errors"
	"fmt"
)

type (
	// StepVariant tags a step with its input shape and advance rule
	StepVariant string

	// StepDefinition is the static description of one wizard step. Choice
	// steps carry their option labels so payload building can map stored
	// indices back to labels
	StepDefinition struct {
		Key     StepKey     `json:"key"`
		Variant StepVariant `json:"variant"`
		Title   string      `json:"title,omitempty"`
		Options []string    `json:"options,omitempty"`

		// Multi marks a tag-select step as multi-selection. Single-selection
		// tag steps store a lone index like single-choice does
		Multi bool `json:"multi,omitempty"`
	}

	// Flow is the ordered step sequence for a chosen flow kind
	Flow []*StepDefinition
)

const (
	VariantTypeSelect           StepVariant = "type-select"
	VariantSingleChoice         StepVariant = "single-choice"
	VariantMultiChoice          StepVariant = "multi-choice"
	VariantTagSelect            StepVariant = "tag-select"
	VariantBusinessTagSelect    StepVariant = "business-tag-select"
	VariantBudgetRange          StepVariant = "budget-range"
	VariantLocationPick         StepVariant = "location-pick"
	VariantPersonalForm         StepVariant = "personal-form"
	VariantBusinessPersonalForm StepVariant = "business-personal-form"
	VariantBusinessWorkForm     StepVariant = "business-work-form"
	VariantCardSwipe            StepVariant = "card-swipe"
	VariantTravelName           StepVariant = "travel-name"
	VariantTravelEmail          StepVariant = "travel-email"
	VariantCodeVerify           StepVariant = "code-verify"
	VariantTerminal             StepVariant = "terminal"
)

var (
	ErrFlowEmpty        = errors.New("flow has no steps")
	ErrFlowFirstStep    = errors.New("flow must begin with type-select")
	ErrFlowLastStep     = errors.New("flow must end with terminal")
	ErrDuplicateStepKey = errors.New("duplicate step key in flow")
	ErrStepKeyEmpty     = errors.New("step key empty")
	ErrStepVariantEmpty = errors.New("step variant empty")
)

// MultiSelect reports whether the step stores an ordered index list rather
// than a single index
func (s *StepDefinition) MultiSelect() bool {
	switch s.Variant {
	case VariantMultiChoice, VariantBusinessTagSelect:
		return true
	case VariantTagSelect:
		return s.Multi
	default:
		return false
	}
}

// IsChoice reports whether the step stores option indices at all
func (s *StepDefinition) IsChoice() bool {
	switch s.Variant {
	case VariantTypeSelect, VariantSingleChoice, VariantMultiChoice,
		VariantTagSelect, VariantBusinessTagSelect:
		return true
	default:
		return false
	}
}

// Validate checks the flow's structural invariants: non-empty unique keys,
// exactly one leading type-select, exactly one trailing terminal
func (f Flow) Validate() error {
	if len(f) == 0 {
		return ErrFlowEmpty
	}
	if f[0].Variant != VariantTypeSelect {
		return ErrFlowFirstStep
	}
	if f[len(f)-1].Variant != VariantTerminal {
		return ErrFlowLastStep
	}

	seen := map[StepKey]bool{}
	for i, s := range f {
		if s.Key == "" {
			return ErrStepKeyEmpty
		}
		if s.Variant == "" {
			return ErrStepVariantEmpty
		}
		if seen[s.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateStepKey, s.Key)
		}
		seen[s.Key] = true

		if i > 0 && s.Variant == VariantTypeSelect {
			return ErrFlowFirstStep
		}
	}
	return nil
}

// Step returns the step at the given cursor, or nil when the cursor is out
// of range. Missing step data degrades to rendering nothing rather than
// panicking so the cursor stays navigable
func (f Flow) Step(cursor int) *StepDefinition {
	if cursor < 0 || cursor >= len(f) {
		return nil
	}
	return f[cursor]
}

// IndexOf returns the position of the first step with the given variant, or
// -1 when the flow has none
func (f Flow) IndexOf(variant StepVariant) int {
	for i, s := range f {
		if s.Variant == variant {
			return i
		}
	}
	return -1
}
