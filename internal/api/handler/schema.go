package handler

import (
	"github.com/farmfed/delivery-system/internal/core/domain"
)

// --- Shared request / response types ---

type addressRequest struct {
	Line1      string `json:"line1"       validate:"required"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// toDomain converts the request address, defaulting the country to US the way
// the storefront does.
func (a addressRequest) toDomain() domain.Address {
	country := a.Country
	if country == "" {
		country = "US"
	}
	return domain.Address{
		Line1:      a.Line1,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    country,
	}
}

type estimateRequest struct {
	ListingIDs      []string       `json:"listing_ids"      validate:"required,min=1,dive,required"`
	ShippingAddress addressRequest `json:"shipping_address" validate:"required"`
}

type estimateResponse struct {
	TotalDistanceMiles float64 `json:"total_distance_miles"`
	RateCentsPerMile   int64   `json:"rate_cents_per_mile"`
	TotalFeeCents      int64   `json:"total_fee_cents"`
}

type geofenceValidateRequest struct {
	Address addressRequest `json:"address" validate:"required"`
}

type geofenceValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type deliverySettingsResponse struct {
	RateCentsPerMile int64 `json:"rate_cents_per_mile"`
}

type updateDeliverySettingsRequest struct {
	RateCentsPerMile *int64 `json:"rate_cents_per_mile" validate:"required"`
}

type geofenceSettingsResponse struct {
	Polygon *domain.GeoJSONPolygon `json:"polygon"`
}

type updateGeofenceSettingsRequest struct {
	Polygon *domain.GeoJSONPolygon `json:"polygon"`
}

type cartItemRequest struct {
	ListingID      string `json:"listing_id"      validate:"required"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"        validate:"required,min=1"`
	DeliveryMethod string `json:"delivery_method" validate:"omitempty,oneof=shipping pickup"`
}

type saveCartRequest struct {
	Items []cartItemRequest `json:"items" validate:"dive"`
}

type cartResponse struct {
	Items []domain.CartLineItem `json:"items"`
}

type cardRequest struct {
	Token string `json:"token" validate:"required"`
}

type checkoutRequest struct {
	BuyerID         string          `json:"buyer_id" validate:"required"`
	PaymentMethodID string          `json:"payment_method_id"`
	Card            *cardRequest    `json:"card"`
	ShippingAddress *addressRequest `json:"shipping_address"`
	DeliveryFee     *feeRequest     `json:"delivery_fee"`
	ProcessAlias    string          `json:"process_alias"`
}

type feeRequest struct {
	TotalDistanceMiles float64 `json:"total_distance_miles"`
	RateCentsPerMile   int64   `json:"rate_cents_per_mile"`
	TotalFeeCents      int64   `json:"total_fee_cents"`
}

type checkoutResponse struct {
	RunID         string                      `json:"run_id"`
	State         string                      `json:"state"`
	FailureReason string                      `json:"failure_reason,omitempty"`
	Results       []domain.CheckoutItemResult `json:"results"`
}

type checkoutRunsResponse struct {
	Runs []*domain.CheckoutRun `json:"runs"`
}

type createTaskRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

type createTaskResponse struct {
	TaskID      string `json:"task_id,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
}
