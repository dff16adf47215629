package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/onboard/internal/assert/helpers"
	"github.com/wayfare-app/onboard/internal/client"
	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/pkg/api"
)

// walkToEmail drives a leisure session to the travel-email step with every
// earlier step answered
func walkToEmail(
	t *testing.T, env *helpers.TestEnv, ctx context.Context,
) api.SessionID {
	t.Helper()
	eng := env.Engine

	id := startLeisure(t, env, ctx)
	require.NoError(t, eng.Advance(ctx, id)) // travel-reasons

	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyTravelReasons, 0))
	require.NoError(t, eng.Advance(ctx, id)) // interest-tags

	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyInterestTags, 2))
	require.NoError(t, eng.ToggleIndex(ctx, id, engine.KeyInterestTags, 5))
	require.NoError(t, eng.Advance(ctx, id)) // budget-range

	require.NoError(t, eng.SetBudget(ctx, id, engine.KeyBudget, 100, 300))
	require.NoError(t, eng.Advance(ctx, id)) // location-pick

	require.NoError(t, eng.SetLocation(ctx, id, engine.KeyLocation,
		&api.Location{ID: "mad", Name: "Madrid", FullName: "Madrid, Spain"}))
	require.NoError(t, eng.Advance(ctx, id)) // card-swipe

	_, err := eng.LoadDeck(ctx, id)
	require.NoError(t, err)
	require.NoError(t, eng.RecordSwipe(ctx, id, "card-0", engine.SwipeRight))
	require.NoError(t, eng.RecordSwipe(ctx, id, "card-1", engine.SwipeLeft))
	require.NoError(t, eng.RecordSwipe(ctx, id, "card-2", engine.SwipeUp))
	require.NoError(t, eng.Advance(ctx, id)) // travel-name

	require.NoError(t, eng.SetTravelName(ctx, id, "Ada"))
	require.NoError(t, eng.Advance(ctx, id)) // travel-email

	require.NoError(t, eng.SetTravelEmail(ctx, id, "ada@example.com"))
	return id
}

// walkToCode additionally sends the code, landing on the code-verify step
func walkToCode(
	t *testing.T, env *helpers.TestEnv, ctx context.Context,
) api.SessionID {
	t.Helper()
	id := walkToEmail(t, env, ctx)
	require.NoError(t, env.Engine.Advance(ctx, id))

	st, err := env.Engine.GetSession(ctx, id)
	require.NoError(t, err)
	require.True(t, st.AtVariant(api.VariantCodeVerify))
	return id
}

func TestSendCodeOnAdvance(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToEmail(t, env, ctx)

		require.NoError(t, env.Engine.Advance(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantCodeVerify))
		assert.Empty(t, st.Code)
		assert.False(t, st.Submitting)
		assert.Equal(t,
			env.Config.ResendCooldownSeconds, st.ResendCooldown)

		calls := env.Accounts.CreateCalls()
		require.Len(t, calls, 1)
		payload := calls[0]
		assert.Equal(t, api.FlowLeisure, payload.Type)
		assert.Equal(t, "ada@example.com", payload.Email)
		assert.Equal(t, "Ada", payload.Name)
		assert.Equal(t, "Madrid, Spain", payload.Location)
		assert.Equal(t, []string{"Discover new places"},
			payload.TravelReasons)
		assert.Equal(t, []string{"Street food", "Hidden gems"},
			payload.InterestTags)
		assert.Equal(t, 100, payload.BudgetMin)
		assert.Equal(t, 300, payload.BudgetMax)
		assert.Equal(t,
			[]api.CardID{"card-0", "card-2"}, payload.Likes)
		assert.Equal(t, []api.CardID{"card-1"}, payload.Dislikes)
	})
}

func TestSendCodeDuplicateEmail(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToEmail(t, env, ctx)

		env.Accounts.CreateErr = &client.RemoteError{
			Kind:   api.ErrorKindDuplicateEmail,
			Detail: "Email already exists",
		}
		require.NoError(t, env.Engine.Advance(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)

		// the cursor does not advance; the failure offers the sign-in path
		assert.True(t, st.AtVariant(api.VariantTravelEmail))
		assert.False(t, st.Submitting)
		require.NotNil(t, st.LastFailure)
		assert.Equal(t, api.ErrorKindDuplicateEmail, st.LastFailure.Kind)
		assert.Equal(t, "Email already exists", st.LastFailure.Detail)
	})
}

func TestSendCodeGenericFailure(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToEmail(t, env, ctx)

		env.Accounts.CreateErr = errors.New("connection refused")
		require.NoError(t, env.Engine.Advance(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantTravelEmail))
		require.NotNil(t, st.LastFailure)
		assert.Equal(t, api.ErrorKindGeneric, st.LastFailure.Kind)

		require.NoError(t, env.Engine.DismissFailure(ctx, id))
		st, err = env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, st.LastFailure)
	})
}

func TestValidateCodeSuccess(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToCode(t, env, ctx)

		require.NoError(t, env.Engine.SetCode(ctx, id, "123456"))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantTerminal))
		assert.False(t, st.Verifying)

		calls := env.Accounts.VerifyCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "ada@example.com", calls[0].Email)
		assert.Equal(t, "123456", calls[0].OTPCode)

		// credentials and the query-cache entry were written through
		creds, err := env.Auth.GetCredentials(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-123", creds.AccessToken)
		assert.Equal(t, api.DefaultTokenType, creds.TokenType)
		require.NotNil(t, creds.User)
		assert.Equal(t, "user-123", creds.User.ID)
	})
}

func TestValidateCodeFailureKeepsCode(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToCode(t, env, ctx)

		env.Accounts.VerifyErr = errors.New("expired: code too old")
		require.NoError(t, env.Engine.SetCode(ctx, id, "654321"))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantCodeVerify))
		assert.False(t, st.Verifying)

		// the entry is kept for correction; the failure is the fixed
		// verification kind with no server detail leaked
		assert.Equal(t, "654321", st.Code)
		require.NotNil(t, st.LastFailure)
		assert.Equal(t, api.ErrorKindVerification, st.LastFailure.Kind)
		assert.Empty(t, st.LastFailure.Detail)

		// a later retry is not blocked
		env.Accounts.VerifyErr = nil
		require.NoError(t, env.Engine.ValidateCode(ctx, id))
		st, err = env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantTerminal))
	})
}

func TestAdvanceSubmitsEnteredCode(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToCode(t, env, ctx)

		env.Accounts.VerifyErr = errors.New("expired: code too old")
		require.NoError(t, env.Engine.SetCode(ctx, id, "123456"))

		// tapping Continue after a failed auto-submit re-validates the
		// entered code; the cursor never crosses the code step while the
		// account service keeps rejecting it
		require.NoError(t, env.Engine.Advance(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantCodeVerify))
		assert.Len(t, env.Accounts.VerifyCalls(), 2)
		require.NotNil(t, st.LastFailure)
		assert.Equal(t, api.ErrorKindVerification, st.LastFailure.Kind)

		env.Accounts.VerifyErr = nil
		require.NoError(t, env.Engine.Advance(ctx, id))

		st, err = env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantTerminal))
		assert.Len(t, env.Accounts.VerifyCalls(), 3)

		creds, err := env.Auth.GetCredentials(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-123", creds.AccessToken)
	})
}

func TestValidateCodeLockDropsSecondCall(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToCode(t, env, ctx)

		gate := make(chan struct{})
		env.Accounts.Gate = gate

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.Engine.SetCode(ctx, id, "123456"))
		}()

		// wait for the auto-submit to be holding the gate, then fire the
		// manual confirmation; the lock drops it without a second call
		assert.Eventually(t, func() bool {
			return len(env.Accounts.VerifyCalls()) == 1
		}, helpers.DefaultWaitTimeout, 5*time.Millisecond)

		require.NoError(t, env.Engine.ValidateCode(ctx, id))
		assert.Len(t, env.Accounts.VerifyCalls(), 1)

		close(gate)
		wg.Wait()
		assert.Len(t, env.Accounts.VerifyCalls(), 1)
	})
}

func TestResendGatedByCooldown(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToCode(t, env, ctx)

		err := env.Engine.ResendCode(ctx, id)
		assert.ErrorIs(t, err, engine.ErrCooldownActive)
		assert.Len(t, env.Accounts.CreateCalls(), 1)
	})
}

func TestResendAtZeroReusesPayload(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()

		// with no cooldown configured, resend is permitted immediately
		env.Config.ResendCooldownSeconds = 0
		id := walkToCode(t, env, ctx)

		require.NoError(t, env.Engine.ResendCode(ctx, id))

		calls := env.Accounts.CreateCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, calls[0].Email, calls[1].Email)
		assert.Equal(t, calls[0].InterestTags, calls[1].InterestTags)

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantCodeVerify))
	})
}

func TestStaleSendCompletionDropped(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToEmail(t, env, ctx)

		gate := make(chan struct{})
		env.Accounts.Gate = gate

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.Engine.Advance(ctx, id))
		}()

		assert.Eventually(t, func() bool {
			return len(env.Accounts.CreateCalls()) == 1
		}, helpers.DefaultWaitTimeout, 5*time.Millisecond)

		// the user navigates back while the send is in flight; its
		// completion must not yank them to the code step
		require.NoError(t, env.Engine.Retreat(ctx, id))
		close(gate)
		wg.Wait()

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantTravelName))
		assert.False(t, st.Submitting)
		assert.Zero(t, st.ResendCooldown)
	})
}

func TestStaleSendFailureDropped(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToEmail(t, env, ctx)

		gate := make(chan struct{})
		env.Accounts.Gate = gate
		env.Accounts.CreateErr = errors.New("connection refused")

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.Engine.Advance(ctx, id))
		}()

		assert.Eventually(t, func() bool {
			return len(env.Accounts.CreateCalls()) == 1
		}, helpers.DefaultWaitTimeout, 5*time.Millisecond)

		// the user navigates back while the send is in flight; the failure
		// must not surface a dialog against a step no longer shown
		require.NoError(t, env.Engine.Retreat(ctx, id))
		close(gate)
		wg.Wait()

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.True(t, st.AtVariant(api.VariantTravelName))
		assert.False(t, st.Submitting)
		assert.Nil(t, st.LastFailure)
	})
}

func TestCompleteAfterVerification(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id := walkToCode(t, env, ctx)

		require.NoError(t, env.Engine.SetCode(ctx, id, "123456"))
		require.NoError(t, env.Engine.Complete(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, api.SessionCompleted, st.Status)
		assert.Equal(t, []string{api.NavigateMain}, env.Navigator.Actions())
	})
}
