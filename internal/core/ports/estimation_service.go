package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// EstimateCartInput is a quote request for a cart spanning one or more
// sellers.
type EstimateCartInput struct {
	ListingIDs      []string
	ShippingAddress domain.Address
}

// GeofenceCheck is the outcome of validating an address against the
// configured service area.
type GeofenceCheck struct {
	Valid  bool
	Reason string
}

// EstimationService produces a single delivery-fee quote for a multi-seller
// cart. Quotes are side-effect-free and safe to supersede.
type EstimationService interface {
	EstimateCartDelivery(ctx context.Context, in EstimateCartInput) (*domain.RouteQuote, error)
}

// GeofenceService validates candidate addresses against the configured
// service-area polygon.
type GeofenceService interface {
	ValidateAddress(ctx context.Context, address domain.Address) (*GeofenceCheck, error)
}
