package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// SettingsStore persists the admin-tunable delivery configuration as small
// JSON documents. This core only consumes and validates the values; the
// persistence mechanism belongs to the store.
type SettingsStore interface {
	// DeliveryRate returns the configured rate in cents per mile.
	// 0 means fee calculation is disabled.
	DeliveryRate(ctx context.Context) (int64, error)
	SetDeliveryRate(ctx context.Context, centsPerMile int64) error

	// Geofence returns the configured service-area polygon, or nil when no
	// restriction is set.
	Geofence(ctx context.Context) (*domain.GeoJSONPolygon, error)
	SetGeofence(ctx context.Context, polygon *domain.GeoJSONPolygon) error
}

// SettingsService exposes settings reads plus admin-gated, validated writes.
type SettingsService interface {
	DeliveryRate(ctx context.Context) (int64, error)
	UpdateDeliveryRate(ctx context.Context, userToken string, centsPerMile int64) error
	Geofence(ctx context.Context) (*domain.GeoJSONPolygon, error)
	UpdateGeofence(ctx context.Context, userToken string, polygon *domain.GeoJSONPolygon) error
}
