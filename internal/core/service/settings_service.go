package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// SettingsService reads delivery configuration and applies admin-gated,
// validated writes. Reads are public; writes require the marketplace
// current-user to carry the admin flag.
type SettingsService struct {
	store       ports.SettingsStore
	marketplace ports.MarketplaceClient
	logger      zerolog.Logger
}

func NewSettingsService(store ports.SettingsStore, marketplace ports.MarketplaceClient, logger zerolog.Logger) *SettingsService {
	return &SettingsService{store: store, marketplace: marketplace, logger: logger}
}

func (s *SettingsService) DeliveryRate(ctx context.Context) (int64, error) {
	return s.store.DeliveryRate(ctx)
}

// UpdateDeliveryRate sets the per-mile rate. Zero disables fee calculation.
func (s *SettingsService) UpdateDeliveryRate(ctx context.Context, userToken string, centsPerMile int64) error {
	if err := s.requireAdmin(ctx, userToken); err != nil {
		return err
	}
	if centsPerMile < 0 {
		return fmt.Errorf("%w: rate must be a non-negative integer", domain.ErrInvalidRate)
	}
	if err := s.store.SetDeliveryRate(ctx, centsPerMile); err != nil {
		return fmt.Errorf("set delivery rate: %w", err)
	}
	s.logger.Info().Int64("rate_cents_per_mile", centsPerMile).Msg("delivery rate updated")
	return nil
}

func (s *SettingsService) Geofence(ctx context.Context) (*domain.GeoJSONPolygon, error) {
	return s.store.Geofence(ctx)
}

// UpdateGeofence sets or clears the service-area polygon. nil clears the
// restriction; a non-nil polygon must be a valid GeoJSON Polygon with an
// outer ring of at least four points.
func (s *SettingsService) UpdateGeofence(ctx context.Context, userToken string, polygon *domain.GeoJSONPolygon) error {
	if err := s.requireAdmin(ctx, userToken); err != nil {
		return err
	}
	if polygon != nil {
		if err := polygon.Validate(); err != nil {
			return err
		}
	}
	if err := s.store.SetGeofence(ctx, polygon); err != nil {
		return fmt.Errorf("set geofence: %w", err)
	}
	s.logger.Info().Bool("cleared", polygon == nil).Msg("geofence updated")
	return nil
}

func (s *SettingsService) requireAdmin(ctx context.Context, userToken string) error {
	user, err := s.marketplace.ShowCurrentUser(ctx, userToken)
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}
	if !user.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
