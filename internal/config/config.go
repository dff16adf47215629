package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/timebox"
)

type (
	// Config holds configuration settings for the onboarding service
	Config struct {
		// API server
		APIHost  string
		APIPort  int
		LogLevel string

		// Collaborator endpoints
		AccountServiceURL string
		FeedServiceURL    string
		RequestTimeout    time.Duration

		// Stores
		SessionStore timebox.StoreConfig
		Auth         AuthStoreConfig

		// Wizard timing
		ResendCooldownSeconds int
		ChoiceAdvanceDelay    time.Duration
		LocationAdvanceDelay  time.Duration
		DeckAdvanceDelay      time.Duration

		// Feed
		DeckPageSize int

		ShutdownTimeout time.Duration
	}

	// AuthStoreConfig holds the Redis settings for the credential, query
	// cache, and location-preference stores
	AuthStoreConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultRedisPrefix   = "onboard"

	DefaultSnapshotWorkers     = 4
	DefaultSnapshotQueueSize   = 1000
	DefaultSnapshotSaveTimeout = 30 * time.Second

	DefaultRequestTimeout  = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultResendCooldownSeconds = 59
	DefaultChoiceAdvanceDelay    = 150 * time.Millisecond
	DefaultLocationAdvanceDelay  = 300 * time.Millisecond
	DefaultDeckAdvanceDelay      = 500 * time.Millisecond

	DefaultDeckPageSize = 20
	MaxDeckPageSize     = 100
	MaxCooldownSeconds  = 600
)

var (
	ErrInvalidAPIPort        = errors.New("invalid API port")
	ErrAccountServiceURL     = errors.New("account service URL required")
	ErrInvalidRequestTimeout = errors.New("request timeout must be positive")
	ErrInvalidCooldown       = errors.New("resend cooldown must be positive")
	ErrInvalidDeckPageSize   = errors.New("deck page size must be positive")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, stores, collaborators, and wizard timing
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:           DefaultAPIHost,
		APIPort:           DefaultAPIPort,
		LogLevel:          "info",
		AccountServiceURL: "http://localhost:9090",
		FeedServiceURL:    "http://localhost:9091",
		RequestTimeout:    DefaultRequestTimeout,
		SessionStore: timebox.StoreConfig{
			Addr:         DefaultRedisEndpoint,
			Password:     "",
			DB:           DefaultRedisDB,
			Prefix:       DefaultRedisPrefix,
			WorkerCount:  DefaultSnapshotWorkers,
			MaxQueueSize: DefaultSnapshotQueueSize,
			SaveTimeout:  DefaultSnapshotSaveTimeout,
		},
		Auth: AuthStoreConfig{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
		ResendCooldownSeconds: DefaultResendCooldownSeconds,
		ChoiceAdvanceDelay:    DefaultChoiceAdvanceDelay,
		LocationAdvanceDelay:  DefaultLocationAdvanceDelay,
		DeckAdvanceDelay:      DefaultDeckAdvanceDelay,
		DeckPageSize:          DefaultDeckPageSize,
		ShutdownTimeout:       DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadStoreConfigFromEnv(&c.SessionStore, "SESSION")
	loadAuthConfigFromEnv(&c.Auth, "AUTH")

	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if accountURL := os.Getenv("ACCOUNT_SERVICE_URL"); accountURL != "" {
		c.AccountServiceURL = accountURL
	}
	if feedURL := os.Getenv("FEED_SERVICE_URL"); feedURL != "" {
		c.FeedServiceURL = feedURL
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"RESEND_COOLDOWN_SECONDS", &c.ResendCooldownSeconds,
		0, MaxCooldownSeconds,
	); err != nil {
		return err
	}
	return loadEnvInt(
		"DECK_PAGE_SIZE", &c.DeckPageSize, 0, MaxDeckPageSize,
	)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.AccountServiceURL == "" {
		return ErrAccountServiceURL
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}
	if c.ResendCooldownSeconds <= 0 {
		return ErrInvalidCooldown
	}
	if c.DeckPageSize <= 0 {
		return ErrInvalidDeckPageSize
	}
	return nil
}

func loadStoreConfigFromEnv(s *timebox.StoreConfig, prefix string) {
	if addr := os.Getenv(prefix + "_REDIS_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv(prefix + "_REDIS_PASSWORD"); password != "" {
		s.Password = password
	}
	if dbStr := os.Getenv(prefix + "_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			s.DB = db
		}
	}
	if envPrefix := os.Getenv(prefix + "_REDIS_PREFIX"); envPrefix != "" {
		s.Prefix = envPrefix
	}
}

func loadAuthConfigFromEnv(a *AuthStoreConfig, prefix string) {
	if addr := os.Getenv(prefix + "_REDIS_ADDR"); addr != "" {
		a.Addr = addr
	}
	if password := os.Getenv(prefix + "_REDIS_PASSWORD"); password != "" {
		a.Password = password
	}
	if dbStr := os.Getenv(prefix + "_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			a.DB = db
		}
	}
	if envPrefix := os.Getenv(prefix + "_REDIS_PREFIX"); envPrefix != "" {
		a.Prefix = envPrefix
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
