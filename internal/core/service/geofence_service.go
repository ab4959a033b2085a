package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// reasonGeocodingFailed marks addresses that could not be verified. The
// conservative default is to block unverifiable addresses, not admit them.
const reasonGeocodingFailed = "geocoding_failed"

// GeofenceService validates candidate addresses against the configured
// service-area polygon, at signup time and at checkout time.
type GeofenceService struct {
	settings ports.SettingsStore
	geocoder ports.Geocoder
	logger   zerolog.Logger
}

func NewGeofenceService(settings ports.SettingsStore, geocoder ports.Geocoder, logger zerolog.Logger) *GeofenceService {
	return &GeofenceService{settings: settings, geocoder: geocoder, logger: logger}
}

// ValidateAddress geocodes the address and tests containment. A nil polygon
// means no restriction: every address is valid without any geocoding call.
func (s *GeofenceService) ValidateAddress(ctx context.Context, address domain.Address) (*ports.GeofenceCheck, error) {
	geofence, err := s.settings.Geofence(ctx)
	if err != nil {
		return nil, fmt.Errorf("geofence settings: %w", err)
	}
	if geofence == nil {
		return &ports.GeofenceCheck{Valid: true}, nil
	}

	coord, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Info().Err(err).Str("line1", address.Line1).Msg("geofence check blocked unverifiable address")
		return &ports.GeofenceCheck{Valid: false, Reason: reasonGeocodingFailed}, nil
	}

	return &ports.GeofenceCheck{Valid: geofence.Polygon().Contains(coord)}, nil
}
