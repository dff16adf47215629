package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kode4food/timebox"
	"github.com/stretchr/testify/assert"

	"github.com/wayfare-app/onboard/internal/authstore"
	"github.com/wayfare-app/onboard/internal/client"
	"github.com/wayfare-app/onboard/internal/config"
	"github.com/wayfare-app/onboard/internal/engine"
)

// TestEnv holds all the components needed for engine testing
type TestEnv struct {
	Engine    *engine.Engine
	Redis     *miniredis.Miniredis
	Accounts  *FakeAccountClient
	Feed      *FakeFeedClient
	Navigator *FakeNavigator
	Locator   *client.FixedLocator
	Auth      *authstore.Store
	Config    *config.Config
	EventHub  timebox.EventHub
	Timers    *ManualTimers
	Cleanup   func()
}

const defaultStoreTimeout = 5 * time.Second

// NewTestConfig creates a configuration suitable for tests: debug logging
// and short delays
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

// NewTestEnv creates a fully configured engine environment backed by an
// in-memory Redis, fake collaborators, and manual timers
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	server, err := miniredis.Run()
	assert.NoError(t, err)

	tb, err := timebox.NewTimebox(timebox.Config{
		MaxRetries: timebox.DefaultMaxRetries,
		CacheSize:  100,
	})
	assert.NoError(t, err)

	cfg := NewTestConfig()
	cfg.SessionStore.Addr = server.Addr()
	cfg.SessionStore.Prefix = "test-session"
	cfg.Auth.Addr = server.Addr()
	cfg.Auth.Prefix = "test-auth"

	sessionStore, err := tb.NewStore(cfg.SessionStore)
	assert.NoError(t, err)

	accounts := NewFakeAccountClient()
	feed := NewFakeFeedClient(3)
	navigator := &FakeNavigator{}
	locator := &client.FixedLocator{
		Position: client.Position{Latitude: 40.4168, Longitude: -3.7038},
	}
	auth := authstore.New(cfg.Auth)
	timers := NewManualTimers()

	hub := tb.GetHub()
	eng := engine.New(sessionStore, hub, engine.Dependencies{
		Accounts:  accounts,
		Feed:      feed,
		Locator:   locator,
		Creds:     auth,
		Navigator: navigator,
	}, cfg).WithTimers(timers.Constructor)

	cleanup := func() {
		_ = eng.Stop()
		_ = auth.Close()
		_ = tb.Close()
		server.Close()
	}

	return &TestEnv{
		Engine:    eng,
		Redis:     server,
		Accounts:  accounts,
		Feed:      feed,
		Navigator: navigator,
		Locator:   locator,
		Auth:      auth,
		Config:    cfg,
		EventHub:  hub,
		Timers:    timers,
		Cleanup:   cleanup,
	}
}

// Context returns a context bounded by the store timeout
func (e *TestEnv) Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(
		context.Background(), defaultStoreTimeout,
	)
	t.Cleanup(cancel)
	return ctx
}

// WithTestEnv creates a test environment, executes the provided function
// with it, and ensures cleanup happens automatically
func WithTestEnv(t *testing.T, fn func(*TestEnv)) {
	t.Helper()
	env := NewTestEnv(t)
	defer env.Cleanup()
	fn(env)
}

// WithEngine creates a test environment, executes the provided function
// with its engine, and ensures cleanup happens automatically
func WithEngine(t *testing.T, fn func(*engine.Engine)) {
	t.Helper()
	WithTestEnv(t, func(env *TestEnv) {
		fn(env.Engine)
	})
}

// WithStartedEnv creates a test environment with the engine's event loop
// running, so per-session actors receive routed events
func WithStartedEnv(t *testing.T, fn func(*TestEnv)) {
	t.Helper()
	WithTestEnv(t, func(env *TestEnv) {
		env.Engine.Start()
		fn(env)
	})
}
