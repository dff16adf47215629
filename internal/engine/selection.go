package engine

import (
	"context"
	"fmt"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
)

// ChooseFlow declares the user type on the type-select step, installing
// the named flow for the remainder of the session. The flow kind is
// immutable once chosen. The cursor reset to step 1 happens after a short
// fixed delay so the selection visually registers before transitioning
func (e *Engine) ChooseFlow(
	ctx context.Context, id api.SessionID, kind api.FlowKind,
) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidFlowKind, kind)
	}
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			if st.FlowKind.Valid() {
				return ErrFlowChosen
			}
			return events.Raise(ag, api.EventTypeFlowChosen,
				api.FlowChosenEvent{
					SessionID: id,
					Kind:      kind,
					Flow:      GetFlow(kind),
				})
		},
	)
	return err
}

// Select stores a single-selection answer for a choice step
func (e *Engine) Select(
	ctx context.Context, id api.SessionID, key api.StepKey, index int,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			step := stepByKey(st, key)
			if step == nil {
				return fmt.Errorf("%w: %s", ErrStepNotFound, key)
			}
			if !step.IsChoice() || step.MultiSelect() {
				return fmt.Errorf("%w: %s", ErrWrongStep, key)
			}
			return events.Raise(ag, api.EventTypeSelectionSet,
				api.SelectionSetEvent{
					SessionID: id,
					Key:       key,
					Value:     api.IndexSelection(index),
				})
		},
	)
	return err
}

// ToggleIndex toggles one index in a multi-selection step. A present index
// is removed with the remainder keeping its order; an absent index is
// appended at the end
func (e *Engine) ToggleIndex(
	ctx context.Context, id api.SessionID, key api.StepKey, index int,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			step := stepByKey(st, key)
			if step == nil {
				return fmt.Errorf("%w: %s", ErrStepNotFound, key)
			}
			if !step.MultiSelect() {
				return fmt.Errorf("%w: %s", ErrNotMultiSelect, key)
			}
			return events.Raise(ag, api.EventTypeIndexToggled,
				api.IndexToggledEvent{
					SessionID: id,
					Key:       key,
					Index:     index,
				})
		},
	)
	return err
}

// SetBudget edits the budget range. The range is clamped into its bounds
// with min pinned to max when an edit would invert them
func (e *Engine) SetBudget(
	ctx context.Context, id api.SessionID, key api.StepKey, min, max int,
) error {
	clamped := api.BudgetRange{Min: min, Max: max}.Clamp()
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			step := stepByKey(st, key)
			if step == nil || step.Variant != api.VariantBudgetRange {
				return fmt.Errorf("%w: %s", ErrWrongStep, key)
			}
			return events.Raise(ag, api.EventTypeSelectionSet,
				api.SelectionSetEvent{
					SessionID: id,
					Key:       key,
					Value: api.BudgetSelection(
						clamped.Min, clamped.Max,
					),
				})
		},
	)
	return err
}

// SetLocation stores the chosen location and fires the best-effort
// location-preference side effect. The auto-advance off the location step
// is scheduled by the session's actor
func (e *Engine) SetLocation(
	ctx context.Context, id api.SessionID, key api.StepKey,
	loc *api.Location,
) error {
	if loc == nil {
		return fmt.Errorf("%w: location required", ErrWrongStep)
	}
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			step := stepByKey(st, key)
			if step == nil || step.Variant != api.VariantLocationPick {
				return fmt.Errorf("%w: %s", ErrWrongStep, key)
			}
			return events.Raise(ag, api.EventTypeSelectionSet,
				api.SelectionSetEvent{
					SessionID: id,
					Key:       key,
					Value:     api.LocationSelection(loc),
				})
		},
	)
	if err != nil {
		return err
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.storeLocationPreference(id, loc)
	}()
	return nil
}

// SetTravelEmail updates the travel email entry
func (e *Engine) SetTravelEmail(
	ctx context.Context, id api.SessionID, email string,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypeEmailChanged,
				api.EmailChangedEvent{SessionID: id, Email: email})
		},
	)
	return err
}

// SetTravelName updates the travel name entry
func (e *Engine) SetTravelName(
	ctx context.Context, id api.SessionID, name string,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypeNameChanged,
				api.NameChangedEvent{SessionID: id, Name: name})
		},
	)
	return err
}

// SetCode updates the one-time code entry. The instant the entry reaches
// its full length on the code-verify step, validation fires automatically;
// the re-entrancy lock drops a concurrent manual confirmation
func (e *Engine) SetCode(
	ctx context.Context, id api.SessionID, code string,
) error {
	autoSubmit := false
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			autoSubmit = len(code) == api.CodeLength &&
				st.AtVariant(api.VariantCodeVerify)
			return events.Raise(ag, api.EventTypeCodeChanged,
				api.CodeChangedEvent{SessionID: id, Code: code})
		},
	)
	if err != nil {
		return err
	}
	if autoSubmit {
		return e.ValidateCode(ctx, id)
	}
	return nil
}

// SetPersonalForm overwrites the personal name form
func (e *Engine) SetPersonalForm(
	ctx context.Context, id api.SessionID, form *api.PersonalForm,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypePersonalFormSet,
				api.PersonalFormSetEvent{SessionID: id, Form: form})
		},
	)
	return err
}

// SetBusinessPersonalForm overwrites the business identity form
func (e *Engine) SetBusinessPersonalForm(
	ctx context.Context, id api.SessionID, form *api.BusinessPersonalForm,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypeBusinessPersonalFormSet,
				api.BusinessPersonalFormSetEvent{
					SessionID: id,
					Form:      form,
				})
		},
	)
	return err
}

// SetBusinessWorkForm overwrites the business company form
func (e *Engine) SetBusinessWorkForm(
	ctx context.Context, id api.SessionID, form *api.BusinessWorkForm,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypeBusinessWorkFormSet,
				api.BusinessWorkFormSetEvent{SessionID: id, Form: form})
		},
	)
	return err
}

// DismissFailure clears the presented failure dialog
func (e *Engine) DismissFailure(
	ctx context.Context, id api.SessionID,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			if st.LastFailure == nil {
				return nil
			}
			return events.Raise(ag, api.EventTypeFailureDismissed,
				api.FailureDismissedEvent{SessionID: id})
		},
	)
	return err
}

// SignInInstead abandons the session toward the external sign-in screen,
// offered when account creation failed with a duplicate email
func (e *Engine) SignInInstead(
	ctx context.Context, id api.SessionID,
) error {
	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireTransition(st, api.SessionAbandoned); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypeSessionAbandoned,
				api.SessionAbandonedEvent{SessionID: id})
		},
	)
	if err != nil {
		return err
	}
	e.navigator.OpenSignIn(id)
	return nil
}

func stepByKey(st *api.SessionState, key api.StepKey) *api.StepDefinition {
	for _, s := range st.Flow {
		if s.Key == key {
			return s
		}
	}
	return nil
}
