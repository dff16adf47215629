package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wayfare-app/onboard/pkg/api"
)

var ErrNoFlowKind = errors.New("flow kind not chosen")

// BuildSignupPayload assembles the role-tagged account-creation request
// from the session's accumulated selections, forms, and swipe outcomes.
// Stored option indices are mapped back to the catalog's labels
func BuildSignupPayload(st *api.SessionState) (*api.SignupPayload, error) {
	if !st.FlowKind.Valid() {
		return nil, ErrNoFlowKind
	}

	p := &api.SignupPayload{
		Type:     st.FlowKind,
		Email:    st.TravelEmail,
		Location: locationLabel(st),
		Likes:    st.Likes,
		Dislikes: st.Dislikes,
	}

	switch st.FlowKind {
	case api.FlowLeisure:
		p.Name = leisureName(st)
		p.TravelReasons = selectedLabels(st, KeyTravelReasons)
		p.InterestTags = selectedLabels(st, KeyInterestTags)
		p.BudgetMin, p.BudgetMax = budgetBounds(st)

	case api.FlowBusiness:
		p.TravelGoal = firstLabel(st, KeyTravelGoal)
		p.ConnectionTags = selectedLabels(st, KeyConnectionTags)
		p.IndustryTags = selectedLabels(st, KeyIndustryTags)
		p.NetworkingStyle = firstLabel(st, KeyNetworkingStyle)
		if f := st.BusinessPersonal; f != nil {
			p.FullName = f.FullName
			p.Expertise = f.Expertise
		}
		if f := st.BusinessWork; f != nil {
			p.Role = f.Role
			p.Company = f.Company
			p.Stage = f.Stage
			p.Industries = f.Industries
		}
	}
	return p, nil
}

// selectedLabels maps a step's stored indices to its option labels,
// preserving selection order. Out-of-range indices are skipped
func selectedLabels(st *api.SessionState, key api.StepKey) []string {
	step := stepByKey(st, key)
	if step == nil {
		return nil
	}
	indices := st.Selections.SelectedIndices(key)
	res := make([]string, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(step.Options) {
			res = append(res, step.Options[i])
		}
	}
	return res
}

func firstLabel(st *api.SessionState, key api.StepKey) string {
	if labels := selectedLabels(st, key); len(labels) > 0 {
		return labels[0]
	}
	return ""
}

func leisureName(st *api.SessionState) string {
	if name := strings.TrimSpace(st.TravelName); name != "" {
		return name
	}
	if f := st.Personal; f != nil {
		return strings.TrimSpace(
			fmt.Sprintf("%s %s", f.FirstName, f.LastName),
		)
	}
	return ""
}

func locationLabel(st *api.SessionState) string {
	v, ok := st.Selections.Get(KeyLocation)
	if !ok || v == nil || v.Location == nil {
		return ""
	}
	if v.Location.IsCurrentLocation {
		return CurrentLocationLabel
	}
	if v.Location.FullName != "" {
		return v.Location.FullName
	}
	return v.Location.Name
}

func budgetBounds(st *api.SessionState) (int, int) {
	v, ok := st.Selections.Get(KeyBudget)
	if !ok || v == nil || v.Budget == nil {
		return DefaultBudgetMin, DefaultBudgetMax
	}
	return v.Budget.Min, v.Budget.Max
}
