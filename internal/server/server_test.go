package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/onboard/internal/assert/helpers"
	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/internal/server"
	"github.com/wayfare-app/onboard/pkg/api"
)

type testServerEnv struct {
	Server *server.Server
	Router http.Handler
	*helpers.TestEnv
}

func testServer(t *testing.T) *testServerEnv {
	t.Helper()

	env := helpers.NewTestEnv(t)
	srv := server.NewServer(env.Engine, env.EventHub)

	return &testServerEnv{
		Server:  srv,
		Router:  srv.SetupRoutes(),
		TestEnv: env,
	}
}

func (env *testServerEnv) do(
	t *testing.T, method, path string, body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

func (env *testServerEnv) createSession(t *testing.T) api.SessionID {
	t.Helper()

	w := env.do(t, "POST", "/session", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var res api.SessionCreatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.SessionID)
	return res.SessionID
}

func decodeSession(
	t *testing.T, w *httptest.ResponseRecorder,
) *api.SessionResponse {
	t.Helper()
	var res api.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return &res
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var res api.HealthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "ok", res.Status)
}

func TestCreateAndGetSession(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)

	w := env.do(t, "GET", "/session/"+string(id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	res := decodeSession(t, w)
	assert.Equal(t, id, res.Session.ID)
	assert.Equal(t, 0, res.Session.Cursor)
	assert.False(t, res.CanAdvance)
}

func TestGetSessionNotFound(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do(t, "GET", "/session/no-such-session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChooseFlowEndpoint(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	path := "/session/" + string(id) + "/flow"

	w := env.do(t, "POST", path, api.ChooseFlowRequest{
		Kind: api.FlowLeisure,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	res := decodeSession(t, w)
	assert.Equal(t, api.FlowLeisure, res.Session.FlowKind)
	assert.True(t, res.CanAdvance)
	assert.Greater(t, len(res.Session.Flow), 1)

	w = env.do(t, "POST", path, api.ChooseFlowRequest{
		Kind: api.FlowBusiness,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChooseFlowInvalidKind(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)

	w := env.do(t, "POST", "/session/"+string(id)+"/flow",
		api.ChooseFlowRequest{Kind: "cruise"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)

	req := httptest.NewRequest("POST", "/session/"+string(id)+"/flow",
		bytes.NewReader([]byte("not-json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvanceBlockedByGate(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)

	w := env.do(t, "POST", "/session/"+string(id)+"/advance", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestToggleEndpoint(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	require.NoError(t, env.Engine.ChooseFlow(
		context.Background(), id, api.FlowLeisure,
	))

	path := "/session/" + string(id) + "/toggle"
	w := env.do(t, "POST", path, api.ToggleRequest{
		Key:   engine.KeyTravelReasons,
		Index: 2,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	res := decodeSession(t, w)
	indices := res.Session.Selections.SelectedIndices(engine.KeyTravelReasons)
	assert.Equal(t, []int{2}, indices)
}

func TestToggleSingleSelectRejected(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	require.NoError(t, env.Engine.ChooseFlow(
		context.Background(), id, api.FlowBusiness,
	))

	w := env.do(t, "POST", "/session/"+string(id)+"/toggle",
		api.ToggleRequest{Key: engine.KeyTravelGoal, Index: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBudgetEndpointClamps(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	require.NoError(t, env.Engine.ChooseFlow(
		context.Background(), id, api.FlowLeisure,
	))

	w := env.do(t, "POST", "/session/"+string(id)+"/budget",
		api.BudgetRequest{Key: engine.KeyBudget, Min: -10, Max: 9000})
	assert.Equal(t, http.StatusOK, w.Code)

	res := decodeSession(t, w)
	v, ok := res.Session.Selections.Get(engine.KeyBudget)
	require.True(t, ok)
	require.NotNil(t, v.Budget)
	assert.Equal(t, api.BudgetFloor, v.Budget.Min)
	assert.Equal(t, api.BudgetCeil, v.Budget.Max)
}

func TestSwipeUnknownDirection(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	require.NoError(t, env.Engine.ChooseFlow(
		context.Background(), id, api.FlowLeisure,
	))

	w := env.do(t, "POST", "/session/"+string(id)+"/swipe",
		api.SwipeRequest{Card: "card-0", Direction: "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeckEndpoint(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	require.NoError(t, env.Engine.ChooseFlow(
		context.Background(), id, api.FlowLeisure,
	))

	w := env.do(t, "POST", "/session/"+string(id)+"/deck", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var res api.DeckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Count)
	assert.Len(t, res.Cards, 3)
}

func TestResendOutsideCodeStep(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)

	w := env.do(t, "POST", "/session/"+string(id)+"/resend", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlowViewEndpoint(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	require.NoError(t, env.Engine.ChooseFlow(
		context.Background(), id, api.FlowLeisure,
	))

	w := env.do(t, "GET", "/session/"+string(id)+"/flow", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var res api.FlowViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, api.FlowLeisure, res.Kind)
	assert.Len(t, res.Steps, len(engine.GetFlow(api.FlowLeisure)))

	var tagStep *api.FlowStepView
	for _, step := range res.Steps {
		if step.Key == engine.KeyInterestTags {
			tagStep = step
		}
	}
	require.NotNil(t, tagStep)
	require.NotEmpty(t, tagStep.Colors)
	for _, opt := range tagStep.Options {
		assert.Equal(t,
			engine.ColorFor(opt, engine.DefaultTagColors),
			tagStep.Colors[opt])
	}

	// non-tag steps carry no colors
	for _, step := range res.Steps {
		if step.Key == engine.KeyBudget {
			assert.Empty(t, step.Colors)
		}
	}
}

func TestRetreatAtZeroEndsSession(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	id := env.createSession(t)
	path := "/session/" + string(id)

	w := env.do(t, "POST", path+"/retreat", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	res := decodeSession(t, w)
	assert.Equal(t, api.SessionAbandoned, res.Session.Status)

	w = env.do(t, "POST", path+"/advance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do(t, "GET", "/ws", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
