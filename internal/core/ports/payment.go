package ports

import "context"

// SetupIntent is the processor primitive for saving a reusable payment method.
type SetupIntent struct {
	ID           string
	ClientSecret string
}

// PaymentClient is the capability surface consumed from the external payment
// processor.
type PaymentClient interface {
	// CreateSetupIntent opens a setup intent on the buyer's customer profile.
	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)

	// ConfirmSetupIntent confirms the setup intent with the supplied card and
	// returns the resulting reusable payment-method reference.
	ConfirmSetupIntent(ctx context.Context, setupIntentID, cardToken string) (string, error)

	// ConfirmPaymentIntent authorizes a specific charge with an established
	// payment method.
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID, paymentMethodID string) error

	// AttachPaymentMethod persists the payment method against the customer
	// profile for reuse beyond this run.
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
}
