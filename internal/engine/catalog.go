package engine

import "github.com/wayfare-app/onboard/pkg/api"

// Step keys shared by the flow catalog. Keys are unique within a flow but
// may repeat across flows
const (
	KeyTypeSelect  api.StepKey = "type-select"
	KeyLocation    api.StepKey = "location-pick"
	KeyCardSwipe   api.StepKey = "card-swipe"
	KeyTravelEmail api.StepKey = "travel-email"
	KeyCodeVerify  api.StepKey = "code-verify"
	KeyTerminal    api.StepKey = "all-set"

	KeyTravelReasons api.StepKey = "travel-reasons"
	KeyInterestTags  api.StepKey = "interest-tags"
	KeyBudget        api.StepKey = "budget-range"
	KeyTravelName    api.StepKey = "travel-name"

	KeyTravelGoal       api.StepKey = "travel-goal"
	KeyConnectionTags   api.StepKey = "connection-tags"
	KeyIndustryTags     api.StepKey = "industry-tags"
	KeyNetworkingStyle  api.StepKey = "networking-style"
	KeyBusinessPersonal api.StepKey = "business-personal"
	KeyBusinessWork     api.StepKey = "business-work"
)

// Default budget range pre-populated when the budget step is entered with
// no stored selection
const (
	DefaultBudgetMin = 50
	DefaultBudgetMax = 250
)

var (
	typeSelectStep = &api.StepDefinition{
		Key:     KeyTypeSelect,
		Variant: api.VariantTypeSelect,
		Title:   "How will you be traveling?",
		Options: []string{"Leisure", "Business"},
	}

	leisureFlow = api.Flow{
		typeSelectStep,
		{
			Key:     KeyTravelReasons,
			Variant: api.VariantMultiChoice,
			Title:   "What brings you here?",
			Options: []string{
				"Discover new places",
				"Food and drinks",
				"Nightlife and events",
				"Art and culture",
				"Outdoors and wellness",
			},
		},
		{
			Key:     KeyInterestTags,
			Variant: api.VariantTagSelect,
			Title:   "Pick your interests",
			Multi:   true,
			Options: []string{
				"Live music", "Museums", "Street food", "Rooftops",
				"Markets", "Hidden gems", "Coffee", "Theater",
				"Festivals", "Day trips",
			},
		},
		{
			Key:     KeyBudget,
			Variant: api.VariantBudgetRange,
			Title:   "What's your budget?",
		},
		{
			Key:     KeyLocation,
			Variant: api.VariantLocationPick,
			Title:   "Where are you headed?",
		},
		{
			Key:     KeyCardSwipe,
			Variant: api.VariantCardSwipe,
			Title:   "Swipe what you like",
		},
		{
			Key:     KeyTravelName,
			Variant: api.VariantTravelName,
			Title:   "What should we call you?",
		},
		{
			Key:     KeyTravelEmail,
			Variant: api.VariantTravelEmail,
			Title:   "Where can we reach you?",
		},
		{
			Key:     KeyCodeVerify,
			Variant: api.VariantCodeVerify,
			Title:   "Enter your code",
		},
		{
			Key:     KeyTerminal,
			Variant: api.VariantTerminal,
			Title:   "You're all set",
		},
	}

	businessFlow = api.Flow{
		typeSelectStep,
		{
			Key:     KeyTravelGoal,
			Variant: api.VariantSingleChoice,
			Title:   "What's your main goal?",
			Options: []string{
				"Meet clients",
				"Attend a conference",
				"Scout a market",
				"Team offsite",
			},
		},
		{
			Key:     KeyConnectionTags,
			Variant: api.VariantTagSelect,
			Title:   "Who do you want to meet?",
			Multi:   true,
			Options: []string{
				"Founders", "Investors", "Engineers", "Designers",
				"Marketers", "Operators", "Recruiters",
			},
		},
		{
			Key:     KeyIndustryTags,
			Variant: api.VariantBusinessTagSelect,
			Title:   "Which industries interest you?",
			Options: []string{
				"Fintech", "Health", "Climate", "Consumer",
				"Enterprise", "Media", "Travel", "AI",
			},
		},
		{
			Key:     KeyNetworkingStyle,
			Variant: api.VariantSingleChoice,
			Title:   "How do you like to connect?",
			Options: []string{
				"Small dinners",
				"Large mixers",
				"One-on-one coffees",
				"Industry panels",
			},
		},
		{
			Key:     KeyLocation,
			Variant: api.VariantLocationPick,
			Title:   "Where are you headed?",
		},
		{
			Key:     KeyCardSwipe,
			Variant: api.VariantCardSwipe,
			Title:   "Swipe what you like",
		},
		{
			Key:     KeyTravelEmail,
			Variant: api.VariantTravelEmail,
			Title:   "Where can we reach you?",
		},
		{
			Key:     KeyBusinessPersonal,
			Variant: api.VariantBusinessPersonalForm,
			Title:   "Tell us about yourself",
		},
		{
			Key:     KeyBusinessWork,
			Variant: api.VariantBusinessWorkForm,
			Title:   "Tell us about your work",
		},
		{
			Key:     KeyCodeVerify,
			Variant: api.VariantCodeVerify,
			Title:   "Enter your code",
		},
		{
			Key:     KeyTerminal,
			Variant: api.VariantTerminal,
			Title:   "You're all set",
		},
	}

	initialFlow = api.Flow{typeSelectStep}
)

// InitialFlow is the pre-choice flow: the singleton type-select sequence
// active until the user declares a flow kind
func InitialFlow() api.Flow {
	return initialFlow
}

// GetFlow returns the ordered step sequence for a flow kind. It is pure
// and deterministic: the same kind always yields the same sequence
func GetFlow(kind api.FlowKind) api.Flow {
	switch kind {
	case api.FlowBusiness:
		return businessFlow
	case api.FlowLeisure:
		return leisureFlow
	default:
		return initialFlow
	}
}
