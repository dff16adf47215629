package api

import (
	"maps"
	"slices"
)

type (
	// SelectionKind discriminates the SelectionValue union
	SelectionKind string

	// SelectionValue is the tagged union of everything a step can produce:
	// a single option index, an ordered list of distinct indices, a budget
	// range, or a structured location. Free-text fields and forms live on
	// the session itself, not in the selection store
	SelectionValue struct {
		Kind     SelectionKind `json:"kind"`
		Index    int           `json:"index,omitempty"`
		Indices  []int         `json:"indices,omitempty"`
		Budget   *BudgetRange  `json:"budget,omitempty"`
		Location *Location     `json:"location,omitempty"`
	}

	// BudgetRange is a min/max pair in whole currency units
	BudgetRange struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}

	// Location is a chosen place, either a named one or the device's
	// current location
	Location struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		Country           string `json:"country,omitempty"`
		FullName          string `json:"full_name,omitempty"`
		IsCurrentLocation bool   `json:"is_current_location,omitempty"`
	}

	// SelectionStore maps step keys to selection values. It grows
	// monotonically as the user answers steps and is never auto-pruned;
	// re-answering a step overwrites its slot
	SelectionStore map[StepKey]*SelectionValue
)

const (
	SelectionIndex    SelectionKind = "index"
	SelectionIndices  SelectionKind = "indices"
	SelectionBudget   SelectionKind = "budget"
	SelectionLocation SelectionKind = "location"
)

// Budget bounds in whole currency units
const (
	BudgetFloor = 0
	BudgetCeil  = 500
)

// IndexSelection wraps a single option index. Index 0 is a real selection;
// presence is carried by the Kind tag, never by truthiness
func IndexSelection(n int) *SelectionValue {
	return &SelectionValue{Kind: SelectionIndex, Index: n}
}

// IndicesSelection wraps an ordered list of distinct option indices
func IndicesSelection(ns ...int) *SelectionValue {
	return &SelectionValue{Kind: SelectionIndices, Indices: ns}
}

// BudgetSelection wraps a budget range
func BudgetSelection(min, max int) *SelectionValue {
	return &SelectionValue{
		Kind:   SelectionBudget,
		Budget: &BudgetRange{Min: min, Max: max},
	}
}

// LocationSelection wraps a chosen location
func LocationSelection(loc *Location) *SelectionValue {
	return &SelectionValue{Kind: SelectionLocation, Location: loc}
}

// SelectedIndices normalizes the value into an index list: a lone index
// becomes a one-element list, a list is returned as stored, and any other
// shape yields an empty list. Single- and multi-choice steps share one
// storage slot but different shapes, so readers go through this
func (v *SelectionValue) SelectedIndices() []int {
	if v == nil {
		return []int{}
	}
	switch v.Kind {
	case SelectionIndex:
		return []int{v.Index}
	case SelectionIndices:
		return slices.Clone(v.Indices)
	default:
		return []int{}
	}
}

// Clamp returns the range forced into [BudgetFloor, BudgetCeil] with
// min <= max preserved by pinning whichever bound moved out of order
func (r BudgetRange) Clamp() BudgetRange {
	res := BudgetRange{
		Min: min(max(r.Min, BudgetFloor), BudgetCeil),
		Max: min(max(r.Max, BudgetFloor), BudgetCeil),
	}
	if res.Min > res.Max {
		res.Min = res.Max
	}
	return res
}

// Get retrieves the value stored for a step key
func (s SelectionStore) Get(key StepKey) (*SelectionValue, bool) {
	v, ok := s[key]
	return v, ok
}

// Set returns a new store with the key overwritten
func (s SelectionStore) Set(key StepKey, v *SelectionValue) SelectionStore {
	if s == nil {
		return SelectionStore{key: v}
	}
	res := maps.Clone(s)
	res[key] = v
	return res
}

// SelectedIndices normalizes the slot for key into an index list; unset keys
// yield an empty list
func (s SelectionStore) SelectedIndices(key StepKey) []int {
	return s[key].SelectedIndices()
}
