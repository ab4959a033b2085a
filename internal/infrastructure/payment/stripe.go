package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.stripe.com"
	defaultTimeout = 20 * time.Second
)

// StripeClient drives the payment-processor primitives the checkout run
// needs: setup intents for saving a card and payment-intent confirmation for
// charging each item. Requests use the form-encoded API with the secret key.
type StripeClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewStripeClient(baseURL, secretKey string, logger zerolog.Logger) *StripeClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &StripeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

type setupIntentPayload struct {
	ID            string `json:"id"`
	ClientSecret  string `json:"client_secret"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
}

type paymentIntentPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type stripeErrorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSetupIntent opens a setup intent on the customer profile.
func (c *StripeClient) CreateSetupIntent(ctx context.Context, customerID string) (*ports.SetupIntent, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("usage", "off_session")

	var out setupIntentPayload
	if err := c.post(ctx, "/v1/setup_intents", form, &out); err != nil {
		return nil, fmt.Errorf("create setup intent: %w", err)
	}
	return &ports.SetupIntent{ID: out.ID, ClientSecret: out.ClientSecret}, nil
}

// ConfirmSetupIntent confirms the intent with a tokenized card and returns the
// resulting reusable payment method.
func (c *StripeClient) ConfirmSetupIntent(ctx context.Context, setupIntentID, cardToken string) (string, error) {
	form := url.Values{}
	form.Set("payment_method_data[type]", "card")
	form.Set("payment_method_data[card][token]", cardToken)

	var out setupIntentPayload
	if err := c.post(ctx, "/v1/setup_intents/"+url.PathEscape(setupIntentID)+"/confirm", form, &out); err != nil {
		return "", fmt.Errorf("confirm setup intent: %w", err)
	}
	if out.Status != "succeeded" || out.PaymentMethod == "" {
		return "", fmt.Errorf("setup intent %s not usable: status %s", setupIntentID, out.Status)
	}
	return out.PaymentMethod, nil
}

// ConfirmPaymentIntent authorizes the charge the marketplace opened for one
// item, reusing the established payment method.
func (c *StripeClient) ConfirmPaymentIntent(ctx context.Context, paymentIntentID, paymentMethodID string) error {
	form := url.Values{}
	form.Set("payment_method", paymentMethodID)

	var out paymentIntentPayload
	if err := c.post(ctx, "/v1/payment_intents/"+url.PathEscape(paymentIntentID)+"/confirm", form, &out); err != nil {
		return fmt.Errorf("confirm payment intent: %w", err)
	}
	switch out.Status {
	case "succeeded", "requires_capture", "processing":
		return nil
	default:
		return fmt.Errorf("payment intent %s not confirmed: status %s", paymentIntentID, out.Status)
	}
}

// AttachPaymentMethod persists the method on the customer for later runs.
func (c *StripeClient) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	form := url.Values{}
	form.Set("customer", customerID)

	if err := c.post(ctx, "/v1/payment_methods/"+url.PathEscape(paymentMethodID)+"/attach", form, nil); err != nil {
		return fmt.Errorf("attach payment method: %w", err)
	}
	return nil
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("processor request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read processor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr stripeErrorPayload
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("path", path).
				Str("code", apiErr.Error.Code).
				Msg("processor request declined")
			return fmt.Errorf("processor: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("processor %s: status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode processor response: %w", err)
	}
	return nil
}
