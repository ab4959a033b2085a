package service

import (
	"context"
	"errors"
	"testing"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

func adminMarketplace() *stubMarketplace {
	m := newStubMarketplace()
	m.currentUser = &ports.CurrentUser{ID: "admin_1", IsAdmin: true}
	return m
}

func TestSettings_UpdateRate_RequiresAdmin(t *testing.T) {
	store := &stubSettingsStore{}
	svc := NewSettingsService(store, newStubMarketplace(), discardLogger)

	err := svc.UpdateDeliveryRate(context.Background(), "token", 150)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-admin write must be forbidden, got %v", err)
	}
	if len(store.rateSet) != 0 {
		t.Error("forbidden write must not touch the store")
	}
}

func TestSettings_UpdateRate_AdminSucceeds(t *testing.T) {
	store := &stubSettingsStore{}
	svc := NewSettingsService(store, adminMarketplace(), discardLogger)

	if err := svc.UpdateDeliveryRate(context.Background(), "token", 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.rate != 150 {
		t.Errorf("stored rate = %d, want 150", store.rate)
	}
}

func TestSettings_UpdateRate_ZeroDisables(t *testing.T) {
	store := &stubSettingsStore{rate: 150}
	svc := NewSettingsService(store, adminMarketplace(), discardLogger)

	if err := svc.UpdateDeliveryRate(context.Background(), "token", 0); err != nil {
		t.Fatalf("zero is a legal rate (fee disabled): %v", err)
	}
	if store.rate != 0 {
		t.Errorf("stored rate = %d, want 0", store.rate)
	}
}

func TestSettings_UpdateRate_RejectsNegative(t *testing.T) {
	svc := NewSettingsService(&stubSettingsStore{}, adminMarketplace(), discardLogger)

	err := svc.UpdateDeliveryRate(context.Background(), "token", -5)
	if !errors.Is(err, domain.ErrInvalidRate) {
		t.Fatalf("negative rate must be rejected, got %v", err)
	}
}

func TestSettings_UpdateGeofence_ValidPolygon(t *testing.T) {
	store := &stubSettingsStore{}
	svc := NewSettingsService(store, adminMarketplace(), discardLogger)

	if err := svc.UpdateGeofence(context.Background(), "token", squareFence()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.geofence == nil {
		t.Error("polygon was not stored")
	}
}

func TestSettings_UpdateGeofence_NilClears(t *testing.T) {
	store := &stubSettingsStore{geofence: squareFence()}
	svc := NewSettingsService(store, adminMarketplace(), discardLogger)

	if err := svc.UpdateGeofence(context.Background(), "token", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.geofence != nil {
		t.Error("nil polygon must clear the restriction")
	}
}

func TestSettings_UpdateGeofence_RejectsDegenerateRing(t *testing.T) {
	svc := NewSettingsService(&stubSettingsStore{}, adminMarketplace(), discardLogger)

	bad := &domain.GeoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][2]float64{{{0, 0}, {1, 1}, {0, 0}}},
	}
	err := svc.UpdateGeofence(context.Background(), "token", bad)
	if !errors.Is(err, domain.ErrInvalidPolygon) {
		t.Fatalf("three-point ring must be rejected, got %v", err)
	}
}

func TestSettings_UpdateGeofence_TokenResolutionFailure(t *testing.T) {
	m := newStubMarketplace()
	m.currentUserErr = errors.New("session expired")
	svc := NewSettingsService(&stubSettingsStore{}, m, discardLogger)

	if err := svc.UpdateGeofence(context.Background(), "stale", squareFence()); err == nil {
		t.Fatal("unresolvable token must fail the write")
	}
}
