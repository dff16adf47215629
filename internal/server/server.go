package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/util"
)

// Server implements the HTTP API for the onboarding flow engine
type Server struct {
	engine   *engine.Engine
	eventHub timebox.EventHub
	sockets  util.Set[*Client]
	mu       sync.Mutex
}

var ErrInvalidJSON = errors.New("invalid JSON payload")

// NewServer creates a new HTTP API server
func NewServer(eng *engine.Engine, hub timebox.EventHub) *Server {
	return &Server{
		engine:   eng,
		eventHub: hub,
		sockets:  util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleWebSocket)

	router.POST("/session", s.createSession)
	session := router.Group("/session/:sessionID")
	{
		session.GET("", s.getSession)
		session.GET("/flow", s.getSessionFlow)

		session.POST("/flow", s.chooseFlow)
		session.POST("/selection", s.setSelection)
		session.POST("/toggle", s.toggleIndex)
		session.POST("/budget", s.setBudget)
		session.POST("/location", s.setLocation)
		session.POST("/email", s.setEmail)
		session.POST("/name", s.setName)
		session.POST("/code", s.setCode)
		session.POST("/form/personal", s.setPersonalForm)
		session.POST("/form/business-personal", s.setBusinessPersonalForm)
		session.POST("/form/business-work", s.setBusinessWorkForm)

		session.POST("/deck", s.loadDeck)
		session.POST("/swipe", s.recordSwipe)

		session.POST("/advance", s.advance)
		session.POST("/retreat", s.retreat)
		session.POST("/resend", s.resendCode)
		session.POST("/dismiss", s.dismissFailure)
		session.POST("/sign-in", s.signInInstead)
		session.POST("/complete", s.complete)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Service: "wayfare-onboard",
		Version: "1.0.0",
	})
}

// statusFor maps engine sentinel errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrSessionEnded),
		errors.Is(err, engine.ErrFlowChosen),
		errors.Is(err, engine.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.Is(err, engine.ErrCannotAdvance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrCooldownActive):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrInvalidFlowKind),
		errors.Is(err, engine.ErrStepNotFound),
		errors.Is(err, engine.ErrWrongStep),
		errors.Is(err, engine.ErrNotMultiSelect),
		errors.Is(err, engine.ErrUnknownDirection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Error:  ErrInvalidJSON.Error() + ": " + err.Error(),
		Status: http.StatusBadRequest,
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
