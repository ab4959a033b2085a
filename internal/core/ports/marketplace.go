package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// Listing is the subset of a marketplace listing this service consumes.
type Listing struct {
	ID              string
	Title           string
	Geolocation     *domain.Coordinate // recorded listing geolocation, if any
	LocationAddress string             // free-text public location field
	ProcessAlias    string             // transaction process for this listing
}

// SellerProfile carries the seller fields visible only through the
// integration (elevated) data access path.
type SellerProfile struct {
	ID         string
	Coordinate *domain.Coordinate // private address coordinates, if recorded
	Address    *domain.Address    // private address text, if recorded
}

// ListingWithSeller pairs a listing with its author. Seller is nil when the
// listing was fetched through the public path, which cannot see private
// seller data.
type ListingWithSeller struct {
	Listing Listing
	Seller  *SellerProfile
}

// Order is the marketplace transaction created by the privileged initiate
// call, with the payment-processor intent it opened.
type Order struct {
	ID                        string
	PaymentIntentID           string
	PaymentIntentClientSecret string
}

// InitiateOrderInput carries everything needed to open one transaction.
type InitiateOrderInput struct {
	ListingID        string
	Quantity         int
	DeliveryMethod   domain.DeliveryMethod
	ShippingAddress  *domain.Address // only for shipping items
	DeliveryFeeCents int64           // route fee attributed to this item
	ProcessAlias     string
}

// Transaction is the view of an existing transaction needed to create a
// delivery task: where to deliver, to whom, and what.
type Transaction struct {
	ID              string
	ShippingAddress *domain.Address
	CustomerName    string
	CustomerPhone   string
	ListingTitle    string
}

// CurrentUser is the authenticated marketplace user behind a request.
type CurrentUser struct {
	ID                  string
	IsAdmin             bool
	ProcessorCustomerID string // payment-processor customer profile
	PaymentMethodID     string // saved reusable payment method, if any
}

// MarketplaceClient is the capability surface consumed from the hosted
// marketplace backend. The backend itself is an opaque remote system.
type MarketplaceClient interface {
	// ShowListingWithSeller fetches a listing and its author through the
	// integration credentials. Returns domain.ErrPermissionDenied when the
	// integration path is unavailable so callers can degrade to ShowListing.
	ShowListingWithSeller(ctx context.Context, listingID string) (*ListingWithSeller, error)

	// ShowListing fetches a listing through the public path.
	ShowListing(ctx context.Context, listingID string) (*Listing, error)

	// InitiateOrder opens a transaction via the privileged initiation call.
	InitiateOrder(ctx context.Context, in InitiateOrderInput) (*Order, error)

	// TransitionTransaction drives a named transition on a transaction using
	// the operator (integration) credentials.
	TransitionTransaction(ctx context.Context, transactionID, transition string) error

	// ShowTransaction fetches a transaction as the given user, who must be a
	// participant to see protected data such as the shipping address.
	ShowTransaction(ctx context.Context, userToken, transactionID string) (*Transaction, error)

	// ShowCurrentUser resolves the user behind an opaque session token.
	ShowCurrentUser(ctx context.Context, userToken string) (*CurrentUser, error)
}
