package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// CardDetails is a tokenized card collected by the storefront. Raw card
// numbers never reach this service.
type CardDetails struct {
	Token string
}

// CheckoutInput starts a checkout run over the buyer's current cart.
// Exactly one payment source applies, in priority order: an explicit
// PaymentMethodID, the buyer's saved method on their processor profile, or a
// Card that will be turned into a method during the payment-setup phase.
type CheckoutInput struct {
	BuyerID         string
	UserToken       string
	PaymentMethodID string
	Card            *CardDetails
	ShippingAddress *domain.Address
	DeliveryFee     *domain.RouteQuote // optional precomputed quote; recomputed when nil
	ProcessAlias    string
}

// CheckoutService drives the sequential multi-item checkout run.
// The returned run is terminal; business failures (payment setup, item
// charges) are reported through its state and results, not through err.
type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*domain.CheckoutRun, error)
}
