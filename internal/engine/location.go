package engine

import (
	"context"
	"log/slog"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/log"
)

// CurrentLocationLabel is the display label for a device-location
// preference
const CurrentLocationLabel = "Current Location"

// storeLocationPreference writes the chosen location through to the
// preference store. Invoked on location selection and again after a
// successful verification as a safety net. Deliberately best-effort: a
// missing permission, an unreadable position, or a failed write is
// logged and otherwise ignored; it never blocks the flow
func (e *Engine) storeLocationPreference(
	id api.SessionID, loc *api.Location,
) {
	ctx, cancel := context.WithTimeout(e.ctx, e.config.RequestTimeout)
	defer cancel()

	pref := e.buildLocationPreference(ctx, loc)
	if err := e.creds.SetUserLocation(ctx, pref); err != nil {
		slog.Warn("Failed to store location preference",
			log.SessionID(id),
			log.Error(err))
	}
}

// buildLocationPreference constructs either a current-location shape,
// with coordinates left zeroed when unavailable, or a named-location
// shape without coordinates
func (e *Engine) buildLocationPreference(
	ctx context.Context, loc *api.Location,
) *api.LocationPreference {
	if !loc.IsCurrentLocation {
		label := loc.FullName
		if label == "" {
			label = loc.Name
		}
		return &api.LocationPreference{
			Label:   label,
			Name:    loc.Name,
			PlaceID: loc.ID,
		}
	}

	pref := &api.LocationPreference{
		Current: true,
		Label:   CurrentLocationLabel,
	}
	if !e.locator.PermissionGranted(ctx) {
		return pref
	}
	pos, err := e.locator.CurrentPosition(ctx)
	if err != nil {
		slog.Debug("Position read failed", log.Error(err))
		return pref
	}
	pref.Latitude = pos.Latitude
	pref.Longitude = pos.Longitude
	return pref
}

// runLocationSafetyNet re-runs the location side effect after a
// successful verification, covering a write that failed when the
// location was first chosen
func (e *Engine) runLocationSafetyNet(id api.SessionID) {
	st, err := e.GetSession(e.ctx, id)
	if err != nil {
		return
	}
	v, ok := st.Selections.Get(KeyLocation)
	if !ok || v == nil || v.Location == nil {
		return
	}
	e.storeLocationPreference(id, v.Location)
}
