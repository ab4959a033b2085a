package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

const (
	keyDeliveryRate = "settings:delivery"
	keyGeofence     = "settings:geofence"
)

// SettingsStore persists the admin-tunable delivery configuration as small
// JSON documents in Redis. Missing keys decode to the defaults: zero rate
// (fee disabled) and nil geofence (no restriction).
type SettingsStore struct {
	client *redis.Client
}

func NewSettingsStore(client *redis.Client) *SettingsStore {
	return &SettingsStore{client: client}
}

type deliveryRateDoc struct {
	RatePerMileCents int64     `json:"delivery_rate_per_mile_cents"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type geofenceDoc struct {
	Polygon   *domain.GeoJSONPolygon `json:"polygon"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (s *SettingsStore) DeliveryRate(ctx context.Context) (int64, error) {
	raw, err := s.client.Get(ctx, keyDeliveryRate).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read delivery rate: %w", err)
	}

	var doc deliveryRateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("decode delivery rate: %w", err)
	}
	return doc.RatePerMileCents, nil
}

func (s *SettingsStore) SetDeliveryRate(ctx context.Context, centsPerMile int64) error {
	raw, err := json.Marshal(deliveryRateDoc{RatePerMileCents: centsPerMile, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode delivery rate: %w", err)
	}
	if err := s.client.Set(ctx, keyDeliveryRate, raw, 0).Err(); err != nil {
		return fmt.Errorf("write delivery rate: %w", err)
	}
	return nil
}

func (s *SettingsStore) Geofence(ctx context.Context) (*domain.GeoJSONPolygon, error) {
	raw, err := s.client.Get(ctx, keyGeofence).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geofence: %w", err)
	}

	var doc geofenceDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode geofence: %w", err)
	}
	return doc.Polygon, nil
}

// SetGeofence stores the polygon, or deletes the key when polygon is nil so a
// cleared restriction reads back as the default.
func (s *SettingsStore) SetGeofence(ctx context.Context, polygon *domain.GeoJSONPolygon) error {
	if polygon == nil {
		if err := s.client.Del(ctx, keyGeofence).Err(); err != nil {
			return fmt.Errorf("clear geofence: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(geofenceDoc{Polygon: polygon, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode geofence: %w", err)
	}
	if err := s.client.Set(ctx, keyGeofence, raw, 0).Err(); err != nil {
		return fmt.Errorf("write geofence: %w", err)
	}
	return nil
}
