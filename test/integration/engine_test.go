package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/onboard/internal/assert/helpers"
	"github.com/wayfare-app/onboard/internal/client"
	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/pkg/api"
)

// TestLeisureJourney walks the full leisure signup end to end: choose,
// answer every step, send the code, verify it, and complete
func TestLeisureJourney(t *testing.T) {
	env := helpers.NewTestEnv(t)
	defer env.Cleanup()

	ctx := context.Background()
	eng := env.Engine

	id, err := eng.StartSession(ctx)
	require.NoError(t, err)
	require.NoError(t, eng.ChooseFlow(ctx, id, api.FlowLeisure))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyTravelReasons, 0))
	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyTravelReasons, 3))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyInterestTags, 1))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetBudget(ctx, id, engine.KeyBudget, 80, 200))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetLocation(ctx, id, engine.KeyLocation,
		&api.Location{
			ID:       "bcn",
			Name:     "Barcelona",
			FullName: "Barcelona, Spain",
		}))
	require.NoError(t, eng.Advance(ctx, id))

	cards, err := eng.LoadDeck(ctx, id)
	require.NoError(t, err)
	for i, card := range cards {
		dir := engine.SwipeRight
		if i%2 == 1 {
			dir = engine.SwipeLeft
		}
		require.NoError(t, eng.RecordSwipe(ctx, id, card.ID, dir))
	}
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetTravelName(ctx, id, "Ada"))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetTravelEmail(ctx, id, "ada@example.com"))
	require.NoError(t, eng.Advance(ctx, id))

	st, err := eng.GetSession(ctx, id)
	require.NoError(t, err)
	require.True(t, st.AtVariant(api.VariantCodeVerify))
	assert.Equal(t, env.Config.ResendCooldownSeconds, st.ResendCooldown)

	calls := env.Accounts.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, api.FlowLeisure, calls[0].Type)
	assert.Equal(t, "ada@example.com", calls[0].Email)
	assert.Equal(t, "Ada", calls[0].Name)
	assert.Equal(t, "Barcelona, Spain", calls[0].Location)
	assert.Equal(t, 80, calls[0].BudgetMin)
	assert.Equal(t, 200, calls[0].BudgetMax)

	// entering the full code auto-submits
	require.NoError(t, eng.SetCode(ctx, id, "123456"))

	st, err = eng.GetSession(ctx, id)
	require.NoError(t, err)
	require.True(t, st.AtVariant(api.VariantTerminal))
	require.Len(t, env.Accounts.VerifyCalls(), 1)

	creds, err := env.Auth.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-123", creds.AccessToken)

	require.NoError(t, eng.Complete(ctx, id))

	st, err = eng.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, api.SessionCompleted, st.Status)
	assert.Equal(t, []string{api.NavigateMain}, env.Navigator.Actions())
}

// TestBusinessJourney walks the business flow through its forms to the
// send-code transition and verification
func TestBusinessJourney(t *testing.T) {
	env := helpers.NewTestEnv(t)
	defer env.Cleanup()

	ctx := context.Background()
	eng := env.Engine

	id, err := eng.StartSession(ctx)
	require.NoError(t, err)
	require.NoError(t, eng.ChooseFlow(ctx, id, api.FlowBusiness))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.Select(ctx, id, engine.KeyTravelGoal, 1))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyConnectionTags, 0))
	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyConnectionTags, 2))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyIndustryTags, 7))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.Select(ctx, id, engine.KeyNetworkingStyle, 0))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetLocation(ctx, id, engine.KeyLocation,
		&api.Location{ID: "ber", Name: "Berlin"}))
	require.NoError(t, eng.Advance(ctx, id))

	cards, err := eng.LoadDeck(ctx, id)
	require.NoError(t, err)
	for _, card := range cards {
		require.NoError(t, eng.RecordSwipe(ctx, id, card.ID, engine.SwipeUp))
	}
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetTravelEmail(ctx, id, "grace@corp.example"))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetBusinessPersonalForm(ctx, id,
		&api.BusinessPersonalForm{
			FullName:  "Grace Hopper",
			Expertise: "Compilers",
		}))
	require.NoError(t, eng.Advance(ctx, id))

	require.NoError(t, eng.SetBusinessWorkForm(ctx, id,
		&api.BusinessWorkForm{
			Role:       "CTO",
			Company:    "Flow Systems",
			Stage:      "Series B",
			Industries: []string{"Enterprise"},
		}))
	require.NoError(t, eng.Advance(ctx, id))

	st, err := eng.GetSession(ctx, id)
	require.NoError(t, err)
	require.True(t, st.AtVariant(api.VariantCodeVerify))

	calls := env.Accounts.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, api.FlowBusiness, calls[0].Type)
	assert.Equal(t, "grace@corp.example", calls[0].Email)
	assert.Equal(t, "Grace Hopper", calls[0].FullName)
	assert.Equal(t, "Compilers", calls[0].Expertise)
	assert.Equal(t, "Attend a conference", calls[0].TravelGoal)
	assert.Equal(t, "Small dinners", calls[0].NetworkingStyle)
	assert.Equal(t, []string{"Founders", "Engineers"},
		calls[0].ConnectionTags)
	assert.Equal(t, []string{"AI"}, calls[0].IndustryTags)
	assert.Equal(t, "CTO", calls[0].Role)
	assert.Equal(t, "Flow Systems", calls[0].Company)
	assert.Equal(t, []string{"Enterprise"}, calls[0].Industries)

	require.NoError(t, eng.SetCode(ctx, id, "654321"))

	st, err = eng.GetSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.AtVariant(api.VariantTerminal))
}

// TestDuplicateEmailOffersSignIn exercises the duplicate-account dialog
// path: failure surfaced, cursor unmoved, sign-in abandons the session
func TestDuplicateEmailOffersSignIn(t *testing.T) {
	env := helpers.NewTestEnv(t)
	defer env.Cleanup()

	ctx := context.Background()
	eng := env.Engine

	id, err := eng.StartSession(ctx)
	require.NoError(t, err)
	require.NoError(t, eng.ChooseFlow(ctx, id, api.FlowLeisure))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyTravelReasons, 0))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyInterestTags, 0))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.SetLocation(ctx, id, engine.KeyLocation,
		&api.Location{ID: "par", Name: "Paris"}))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.SetTravelName(ctx, id, "Sam"))
	require.NoError(t, eng.Advance(ctx, id))
	require.NoError(t, eng.SetTravelEmail(ctx, id, "taken@example.com"))

	env.Accounts.CreateErr = &client.RemoteError{
		Kind:   api.ErrorKindDuplicateEmail,
		Detail: "Email already exists",
	}

	st, err := eng.GetSession(ctx, id)
	require.NoError(t, err)
	emailStep := st.Cursor

	require.NoError(t, eng.Advance(ctx, id))

	st, err = eng.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, emailStep, st.Cursor)
	require.NotNil(t, st.LastFailure)
	assert.Equal(t, api.ErrorKindDuplicateEmail, st.LastFailure.Kind)

	require.NoError(t, eng.SignInInstead(ctx, id))

	st, err = eng.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, api.SessionAbandoned, st.Status)
	assert.Equal(t, []string{api.NavigateSignIn}, env.Navigator.Actions())
}
