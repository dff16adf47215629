package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kode4food/timebox"

	app "github.com/wayfare-app/onboard"
	"github.com/wayfare-app/onboard/internal/authstore"
	"github.com/wayfare-app/onboard/internal/client"
	"github.com/wayfare-app/onboard/internal/config"
	"github.com/wayfare-app/onboard/internal/engine"
	"github.com/wayfare-app/onboard/internal/server"
	"github.com/wayfare-app/onboard/pkg/log"
)

type onboard struct {
	cfg          *config.Config
	timebox      *timebox.Timebox
	sessionStore *timebox.Store
	auth         *authstore.Store
	engine       *engine.Engine
	apiServer    *server.Server
	httpServer   *http.Server
	quit         chan os.Signal
}

var (
	ErrCreateTimebox      = errors.New("failed to create timebox")
	ErrCreateSessionStore = errors.New("failed to create session store")
)

const sessionCacheSize = 1000

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &onboard{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *onboard) run() error {
	if err := s.initializeStores(); err != nil {
		return err
	}

	s.initializeEngine()
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *onboard) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Onboarding engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("session_redis_addr", s.cfg.SessionStore.Addr),
		slog.Int("session_redis_db", s.cfg.SessionStore.DB),
		slog.String("auth_redis_addr", s.cfg.Auth.Addr),
		slog.Int("auth_redis_db", s.cfg.Auth.DB),
		slog.String("account_service_url", s.cfg.AccountServiceURL),
		slog.String("feed_service_url", s.cfg.FeedServiceURL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *onboard) initializeStores() error {
	var err error

	s.timebox, err = timebox.NewTimebox(timebox.Config{
		MaxRetries: timebox.DefaultMaxRetries,
		CacheSize:  sessionCacheSize,
		Workers:    true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateTimebox, err)
	}

	s.sessionStore, err = s.timebox.NewStore(s.cfg.SessionStore)
	if err != nil {
		_ = s.timebox.Close()
		return fmt.Errorf("%w: %w", ErrCreateSessionStore, err)
	}

	s.auth = authstore.New(s.cfg.Auth)
	return nil
}

func (s *onboard) initializeEngine() {
	accounts := client.NewHTTPAccountClient(
		s.cfg.AccountServiceURL, s.cfg.RequestTimeout,
	)
	feed := client.NewHTTPFeedClient(
		s.cfg.FeedServiceURL, s.cfg.RequestTimeout,
	)
	navigator := server.NewNavigator()

	s.engine = engine.New(
		s.sessionStore, s.timebox.GetHub(), engine.Dependencies{
			Accounts:  accounts,
			Feed:      feed,
			Locator:   &client.DeniedLocator{},
			Creds:     s.auth,
			Navigator: navigator,
		}, s.cfg,
	)
	s.engine.Start()

	s.apiServer = server.NewServer(s.engine, s.timebox.GetHub())
	navigator.Bind(s.apiServer)
}

func (s *onboard) startServer() {
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *onboard) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()

	if err := s.engine.Stop(); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}

	_ = s.auth.Close()
	_ = s.timebox.Close()

	slog.Info("Server exited")
}
