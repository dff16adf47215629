package engine

import (
	"regexp"
	"strings"

	"github.com/wayfare-app/onboard/pkg/api"
)

// emailPattern accepts the standard local@domain.tld shape; "a@b" is
// rejected, "a@b.com" passes
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CanAdvance is the validation gate: one pure rule per step variant,
// evaluated against the session to decide whether the current step may be
// left by a forward navigation. A missing step blocks rather than panics
// so the cursor stays navigable
func CanAdvance(st *api.SessionState) bool {
	step := st.CurrentStep()
	if step == nil {
		return false
	}

	switch step.Variant {
	case api.VariantTerminal, api.VariantBudgetRange, api.VariantCardSwipe:
		return true

	case api.VariantTypeSelect:
		return st.FlowKind.Valid()

	case api.VariantLocationPick:
		v, ok := st.Selections.Get(step.Key)
		return ok && v != nil && v.Location != nil

	case api.VariantTravelEmail:
		return ValidEmail(st.TravelEmail)

	case api.VariantTravelName:
		return strings.TrimSpace(st.TravelName) != ""

	case api.VariantPersonalForm:
		return st.Personal != nil &&
			strings.TrimSpace(st.Personal.FirstName) != "" &&
			strings.TrimSpace(st.Personal.LastName) != ""

	case api.VariantBusinessPersonalForm:
		return st.BusinessPersonal != nil &&
			strings.TrimSpace(st.BusinessPersonal.FullName) != ""

	case api.VariantBusinessWorkForm:
		f := st.BusinessWork
		return f != nil &&
			strings.TrimSpace(f.Role) != "" &&
			strings.TrimSpace(f.Company) != "" &&
			strings.TrimSpace(f.Stage) != "" &&
			len(f.Industries) > 0

	case api.VariantCodeVerify:
		return len(st.Code) == api.CodeLength

	default:
		if step.MultiSelect() {
			return len(st.Selections.SelectedIndices(step.Key)) > 0
		}
		// single selection: presence check, never truthiness, since a
		// stored index of zero is a real answer
		_, ok := st.Selections.Get(step.Key)
		return ok
	}
}

// ValidEmail reports whether the string has a local@domain.tld shape
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
