package client

import (
	"context"
	"errors"
)

type (
	// Position is a device coordinate pair
	Position struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}

	// Locator is the geolocation collaborator: a foreground permission
	// check and a best-effort position read. Position failures are
	// swallowed by callers and must never block the wizard
	Locator interface {
		PermissionGranted(context.Context) bool
		CurrentPosition(context.Context) (Position, error)
	}

	// DeniedLocator reports no permission; used when the service runs
	// without a device bridge
	DeniedLocator struct{}

	// FixedLocator reports permission granted and a fixed position
	FixedLocator struct {
		Position Position
	}
)

var ErrNoPosition = errors.New("position unavailable")

var (
	_ Locator = (*DeniedLocator)(nil)
	_ Locator = (*FixedLocator)(nil)
)

func (DeniedLocator) PermissionGranted(context.Context) bool {
	return false
}

func (DeniedLocator) CurrentPosition(context.Context) (Position, error) {
	return Position{}, ErrNoPosition
}

func (l *FixedLocator) PermissionGranted(context.Context) bool {
	return true
}

func (l *FixedLocator) CurrentPosition(context.Context) (Position, error) {
	return l.Position, nil
}
