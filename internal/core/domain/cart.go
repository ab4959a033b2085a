package domain

import (
	"errors"
	"time"
)

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrForbidden           = errors.New("access forbidden")
	ErrGeocodeFailed       = errors.New("geocoding failed")
	ErrBuyerUnlocatable    = errors.New("buyer address could not be geocoded")
	ErrInvalidRate         = errors.New("invalid delivery rate")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoShippingAddress   = errors.New("transaction has no shipping address")
)

// DeliveryMethod is how a single cart item is fulfilled.
type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// CartLineItem is one listing in a buyer's cart. The listing itself lives in
// the marketplace backend and is referenced by ID only.
type CartLineItem struct {
	ListingID      string         `json:"listing_id" bson:"listing_id"`
	Title          string         `json:"title,omitempty" bson:"title,omitempty"`
	Quantity       int            `json:"quantity" bson:"quantity"`
	DeliveryMethod DeliveryMethod `json:"delivery_method,omitempty" bson:"delivery_method,omitempty"`
	AddedAt        time.Time      `json:"added_at" bson:"added_at"`
}

// ResolutionSource identifies which fallback step produced a seller location.
type ResolutionSource string

const (
	SourceListingGeolocation ResolutionSource = "listing_geolocation"
	SourceSellerCoordinates  ResolutionSource = "seller_coordinates"
	SourceSellerAddress      ResolutionSource = "seller_address_geocoded"
	SourceListingLocation    ResolutionSource = "listing_location_geocoded"
)

// SellerLocation is a resolved origin for one cart listing, tagged with the
// source that produced it for diagnostics.
type SellerLocation struct {
	ListingID  string           `json:"listing_id"`
	Coordinate Coordinate       `json:"coordinate"`
	Source     ResolutionSource `json:"source"`
}

// RouteQuote is the computed delivery fee for a multi-origin cart. Derived
// data: it is recomputed on every request and never persisted.
type RouteQuote struct {
	TotalDistanceMiles float64 `json:"total_distance_miles"`
	RateCentsPerMile   int64   `json:"rate_cents_per_mile"`
	TotalFeeCents      int64   `json:"total_fee_cents"`
}
