package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/pkg/api"
)

func sessionID(c *gin.Context) api.SessionID {
	return api.SessionID(c.Param("sessionID"))
}

func (s *Server) createSession(c *gin.Context) {
	id, err := s.engine.StartSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SessionCreatedResponse{
		SessionID: id,
	})
}

func (s *Server) getSession(c *gin.Context) {
	st, err := s.engine.GetSession(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SessionResponse{
		Session:    st,
		CanAdvance: engine.CanAdvance(st),
	})
}

func (s *Server) getSessionFlow(c *gin.Context) {
	st, err := s.engine.GetSession(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	steps := make([]*api.FlowStepView, len(st.Flow))
	for i, step := range st.Flow {
		steps[i] = &api.FlowStepView{
			StepDefinition: step,
			Colors:         stepColors(step),
		}
	}
	c.JSON(http.StatusOK, api.FlowViewResponse{
		Kind:   st.FlowKind,
		Cursor: st.Cursor,
		Steps:  steps,
	})
}

// stepColors assigns tag steps a deterministic color per option label
func stepColors(step *api.StepDefinition) map[string]string {
	switch step.Variant {
	case api.VariantTagSelect, api.VariantBusinessTagSelect:
	default:
		return nil
	}

	colors := make(map[string]string, len(step.Options))
	for _, opt := range step.Options {
		colors[opt] = engine.ColorFor(opt, engine.DefaultTagColors)
	}
	return colors
}

func (s *Server) chooseFlow(c *gin.Context) {
	var req api.ChooseFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.ChooseFlow(
		c.Request.Context(), sessionID(c), req.Kind,
	))
}

func (s *Server) setSelection(c *gin.Context) {
	var req api.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.Select(
		c.Request.Context(), sessionID(c), req.Key, req.Index,
	))
}

func (s *Server) toggleIndex(c *gin.Context) {
	var req api.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.ToggleIndex(
		c.Request.Context(), sessionID(c), req.Key, req.Index,
	))
}

func (s *Server) setBudget(c *gin.Context) {
	var req api.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetBudget(
		c.Request.Context(), sessionID(c), req.Key, req.Min, req.Max,
	))
}

func (s *Server) setLocation(c *gin.Context) {
	var req api.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetLocation(
		c.Request.Context(), sessionID(c), req.Key, req.Location,
	))
}

func (s *Server) setEmail(c *gin.Context) {
	var req api.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetTravelEmail(
		c.Request.Context(), sessionID(c), req.Value,
	))
}

func (s *Server) setName(c *gin.Context) {
	var req api.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetTravelName(
		c.Request.Context(), sessionID(c), req.Value,
	))
}

func (s *Server) setCode(c *gin.Context) {
	var req api.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetCode(
		c.Request.Context(), sessionID(c), req.Value,
	))
}

func (s *Server) setPersonalForm(c *gin.Context) {
	var form api.PersonalForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetPersonalForm(
		c.Request.Context(), sessionID(c), &form,
	))
}

func (s *Server) setBusinessPersonalForm(c *gin.Context) {
	var form api.BusinessPersonalForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetBusinessPersonalForm(
		c.Request.Context(), sessionID(c), &form,
	))
}

func (s *Server) setBusinessWorkForm(c *gin.Context) {
	var form api.BusinessWorkForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.SetBusinessWorkForm(
		c.Request.Context(), sessionID(c), &form,
	))
}

func (s *Server) loadDeck(c *gin.Context) {
	cards, err := s.engine.LoadDeck(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeckResponse{
		Cards: cards,
		Count: len(cards),
	})
}

func (s *Server) recordSwipe(c *gin.Context) {
	var req api.SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.respond(c, s.engine.RecordSwipe(
		c.Request.Context(), sessionID(c), req.Card, req.Direction,
	))
}

func (s *Server) advance(c *gin.Context) {
	s.respond(c, s.engine.Advance(c.Request.Context(), sessionID(c)))
}

func (s *Server) retreat(c *gin.Context) {
	s.respond(c, s.engine.Retreat(c.Request.Context(), sessionID(c)))
}

func (s *Server) resendCode(c *gin.Context) {
	s.respond(c, s.engine.ResendCode(c.Request.Context(), sessionID(c)))
}

func (s *Server) dismissFailure(c *gin.Context) {
	s.respond(c, s.engine.DismissFailure(c.Request.Context(), sessionID(c)))
}

func (s *Server) signInInstead(c *gin.Context) {
	s.respond(c, s.engine.SignInInstead(c.Request.Context(), sessionID(c)))
}

func (s *Server) complete(c *gin.Context) {
	s.respond(c, s.engine.Complete(c.Request.Context(), sessionID(c)))
}

// respond answers a state-changing call with the refreshed session so
// clients render from one source of truth
func (s *Server) respond(c *gin.Context, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	st, err := s.engine.GetSession(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SessionResponse{
		Session:    st,
		CanAdvance: engine.CanAdvance(st),
	})
}
