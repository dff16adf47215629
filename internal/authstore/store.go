// Package authstore persists the durable outcomes of a completed wizard:
// the credential pair, the query-cache entry the rest of the app observes,
// and the user's location preference. Everything here is written through as
// a side effect of specific session transitions; the session itself is
// never persisted.
package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wayfare-app/onboard/internal/config"
	"github.com/wayfare-app/onboard/pkg/api"
)

// Store is a Redis-backed credential, query-cache, and location-preference
// store
type Store struct {
	client *redis.Client
	prefix string
}

const (
	tokenKey    = "authToken"
	userKey     = "authUser"
	queryKey    = "query:auth"
	locationKey = "userLocation"
)

var ErrNilCredentials = errors.New("credentials missing token or user")

// New creates a store from the auth store configuration
func New(cfg config.AuthStoreConfig) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: cfg.Prefix,
	}
}

// Close releases the underlying Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// SetCredentials persists the access token and serialized user record, and
// updates the auth query-cache entry so the rest of the app observes the
// new session immediately
func (s *Store) SetCredentials(
	ctx context.Context, res *api.VerifyResponse,
) error {
	if res == nil || res.AccessToken == "" || res.User == nil {
		return ErrNilCredentials
	}

	user, err := json.Marshal(res.User)
	if err != nil {
		return err
	}
	cached, err := json.Marshal(res)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(tokenKey), res.AccessToken, 0)
	pipe.Set(ctx, s.key(userKey), user, 0)
	pipe.Set(ctx, s.key(queryKey), cached, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// SetUserLocation writes the location preference. Callers treat failures
// as best-effort
func (s *Store) SetUserLocation(
	ctx context.Context, pref *api.LocationPreference,
) error {
	data, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(locationKey), data, 0).Err()
}

// GetCredentials reads back the cached verification response, primarily
// for tests and diagnostics
func (s *Store) GetCredentials(
	ctx context.Context,
) (*api.VerifyResponse, error) {
	data, err := s.client.Get(ctx, s.key(queryKey)).Bytes()
	if err != nil {
		return nil, err
	}
	var res api.VerifyResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetUserLocation reads back the stored location preference
func (s *Store) GetUserLocation(
	ctx context.Context,
) (*api.LocationPreference, error) {
	data, err := s.client.Get(ctx, s.key(locationKey)).Bytes()
	if err != nil {
		return nil, err
	}
	var pref api.LocationPreference
	if err := json.Unmarshal(data, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

func (s *Store) key(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}
