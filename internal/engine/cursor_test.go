package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/onboard/internal/assert/helpers"
	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/pkg/api"
)

func TestAdvanceBlockedByGate(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id, err := env.Engine.StartSession(ctx)
		require.NoError(t, err)

		// type-select unanswered
		err = env.Engine.Advance(ctx, id)
		assert.ErrorIs(t, err, engine.ErrCannotAdvance)

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Cursor)
	})
}

func TestAdvanceAfterChoosing(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id, err := env.Engine.StartSession(ctx)
		require.NoError(t, err)

		require.NoError(t, env.Engine.ChooseFlow(ctx, id, api.FlowLeisure))
		require.NoError(t, env.Engine.Advance(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, st.Cursor)
		assert.Equal(t, api.FlowLeisure, st.FlowKind)
	})
}

func TestRetreatAtZeroAbandons(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id, err := env.Engine.StartSession(ctx)
		require.NoError(t, err)

		require.NoError(t, env.Engine.Retreat(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, api.SessionAbandoned, st.Status)
		assert.Equal(t, []string{api.NavigateBack}, env.Navigator.Actions())

		// an ended session rejects further operations
		err = env.Engine.Advance(ctx, id)
		assert.ErrorIs(t, err, engine.ErrSessionEnded)
	})
}

func TestCursorStaysInBounds(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id, err := env.Engine.StartSession(ctx)
		require.NoError(t, err)

		require.NoError(t, env.Engine.ChooseFlow(ctx, id, api.FlowLeisure))
		require.NoError(t, env.Engine.Advance(ctx, id))
		require.NoError(t, env.Engine.Retreat(ctx, id))

		st, err := env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Cursor)
		assert.Equal(t, api.SessionActive, st.Status)

		flowLen := len(engine.GetFlow(api.FlowLeisure))
		for range flowLen * 2 {
			_ = env.Engine.Advance(ctx, id)
		}
		st, err = env.Engine.GetSession(ctx, id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, st.Cursor, 0)
		assert.Less(t, st.Cursor, flowLen)
	})
}

func TestCompleteRequiresTerminal(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id, err := env.Engine.StartSession(ctx)
		require.NoError(t, err)

		err = env.Engine.Complete(ctx, id)
		assert.ErrorIs(t, err, engine.ErrWrongStep)
	})
}

func TestEndedSessionCannotEndAgain(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		id, err := env.Engine.StartSession(ctx)
		require.NoError(t, err)

		require.NoError(t, env.Engine.Retreat(ctx, id))

		// an abandoned session has no further status transitions; neither
		// ending path fires its navigation side effect again
		err = env.Engine.Complete(ctx, id)
		assert.ErrorIs(t, err, engine.ErrSessionEnded)
		err = env.Engine.SignInInstead(ctx, id)
		assert.ErrorIs(t, err, engine.ErrSessionEnded)

		assert.Equal(t, []string{api.NavigateBack}, env.Navigator.Actions())
	})
}

func TestGetSessionUnknown(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		_, err := env.Engine.GetSession(context.Background(), "nope")
		assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	})
}
