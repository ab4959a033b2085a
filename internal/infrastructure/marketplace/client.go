package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to the hosted marketplace backend over its JSON API. Two
// credential paths exist: the integration token for privileged operator
// calls, and per-request user tokens for participant-scoped reads.
type Client struct {
	baseURL          string
	integrationToken string
	httpClient       *http.Client
	logger           zerolog.Logger
}

func NewClient(baseURL, integrationToken string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		integrationToken: integrationToken,
		httpClient:       &http.Client{Timeout: defaultTimeout},
		logger:           logger,
	}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type listingPayload struct {
	ID         string `json:"id"`
	Attributes struct {
		Title        string `json:"title"`
		ProcessAlias string `json:"processAlias"`
		Geolocation  *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geolocation"`
		PublicData struct {
			Location struct {
				Address string `json:"address"`
			} `json:"location"`
		} `json:"publicData"`
	} `json:"attributes"`
}

type authorPayload struct {
	ID         string `json:"id"`
	Attributes struct {
		Profile struct {
			ProtectedData struct {
				Address *addressPayload `json:"address"`
				Lat     *float64        `json:"lat"`
				Lng     *float64        `json:"lng"`
			} `json:"protectedData"`
		} `json:"profile"`
	} `json:"attributes"`
}

type addressPayload struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a *addressPayload) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		Line1:      a.Line1,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

type transactionPayload struct {
	ID         string `json:"id"`
	Attributes struct {
		ProtectedData struct {
			ShippingAddress *addressPayload `json:"shippingAddress"`
			CustomerName    string          `json:"customerName"`
			CustomerPhone   string          `json:"customerPhone"`
			ListingTitle    string          `json:"listingTitle"`
		} `json:"protectedData"`
		PaymentIntent struct {
			ID           string `json:"id"`
			ClientSecret string `json:"clientSecret"`
		} `json:"paymentIntent"`
	} `json:"attributes"`
}

type currentUserPayload struct {
	ID         string `json:"id"`
	Attributes struct {
		Profile struct {
			PrivateData struct {
				IsAdmin bool `json:"isAdmin"`
			} `json:"privateData"`
		} `json:"profile"`
		ProcessorCustomer struct {
			ID                     string `json:"id"`
			DefaultPaymentMethodID string `json:"defaultPaymentMethodId"`
		} `json:"processorCustomer"`
	} `json:"attributes"`
}

// ---------------------------------------------------------------------------
// MarketplaceClient implementation
// ---------------------------------------------------------------------------

// ShowListingWithSeller fetches a listing plus its author through the
// integration path. Without an integration token the elevated path does not
// exist, reported as domain.ErrPermissionDenied so the caller can degrade.
func (c *Client) ShowListingWithSeller(ctx context.Context, listingID string) (*ports.ListingWithSeller, error) {
	if c.integrationToken == "" {
		return nil, domain.ErrPermissionDenied
	}

	var body struct {
		Data     listingPayload  `json:"data"`
		Included []authorPayload `json:"included"`
	}
	path := "/integration/listings/" + url.PathEscape(listingID) + "?include=author"
	if err := c.do(ctx, http.MethodGet, path, c.integrationToken, nil, &body); err != nil {
		return nil, err
	}

	out := &ports.ListingWithSeller{Listing: toListing(body.Data)}
	if len(body.Included) > 0 {
		out.Seller = toSeller(body.Included[0])
	}
	return out, nil
}

// ShowListing fetches a listing through the public path. Author private data
// is not visible here.
func (c *Client) ShowListing(ctx context.Context, listingID string) (*ports.Listing, error) {
	var body struct {
		Data listingPayload `json:"data"`
	}
	path := "/listings/" + url.PathEscape(listingID)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &body); err != nil {
		return nil, err
	}
	listing := toListing(body.Data)
	return &listing, nil
}

// InitiateOrder opens a transaction through the privileged initiation call,
// which can attach the computed delivery fee as a transaction line item.
func (c *Client) InitiateOrder(ctx context.Context, in ports.InitiateOrderInput) (*ports.Order, error) {
	payload := map[string]any{
		"processAlias": in.ProcessAlias,
		"transition":   "transition/request-payment",
		"params": map[string]any{
			"listingId":      in.ListingID,
			"quantity":       in.Quantity,
			"deliveryMethod": string(in.DeliveryMethod),
			"protectedData":  initiateProtectedData(in),
			"deliveryFee":    in.DeliveryFeeCents,
		},
	}

	var body struct {
		Data transactionPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/integration/transactions/initiate", c.integrationToken, payload, &body); err != nil {
		return nil, err
	}
	return &ports.Order{
		ID:                        body.Data.ID,
		PaymentIntentID:           body.Data.Attributes.PaymentIntent.ID,
		PaymentIntentClientSecret: body.Data.Attributes.PaymentIntent.ClientSecret,
	}, nil
}

// TransitionTransaction drives a named transition with operator credentials.
func (c *Client) TransitionTransaction(ctx context.Context, transactionID, transition string) error {
	payload := map[string]any{
		"id":         transactionID,
		"transition": transition,
		"params":     map[string]any{},
	}
	path := "/integration/transactions/transition"
	return c.do(ctx, http.MethodPost, path, c.integrationToken, payload, nil)
}

// ShowTransaction fetches a transaction as the given participant.
func (c *Client) ShowTransaction(ctx context.Context, userToken, transactionID string) (*ports.Transaction, error) {
	var body struct {
		Data transactionPayload `json:"data"`
	}
	path := "/transactions/" + url.PathEscape(transactionID)
	if err := c.do(ctx, http.MethodGet, path, userToken, nil, &body); err != nil {
		return nil, err
	}

	protected := body.Data.Attributes.ProtectedData
	return &ports.Transaction{
		ID:              body.Data.ID,
		ShippingAddress: protected.ShippingAddress.toDomain(),
		CustomerName:    protected.CustomerName,
		CustomerPhone:   protected.CustomerPhone,
		ListingTitle:    protected.ListingTitle,
	}, nil
}

// ShowCurrentUser resolves the user behind a session token.
func (c *Client) ShowCurrentUser(ctx context.Context, userToken string) (*ports.CurrentUser, error) {
	var body struct {
		Data currentUserPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/current_user", userToken, nil, &body); err != nil {
		return nil, err
	}
	return &ports.CurrentUser{
		ID:                  body.Data.ID,
		IsAdmin:             body.Data.Attributes.Profile.PrivateData.IsAdmin,
		ProcessorCustomerID: body.Data.Attributes.ProcessorCustomer.ID,
		PaymentMethodID:     body.Data.Attributes.ProcessorCustomer.DefaultPaymentMethodID,
	}, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) error {
	var reqBody *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if strings.Contains(path, "/transactions") {
			return domain.ErrTransactionNotFound
		}
		return domain.ErrListingNotFound
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s %s", domain.ErrPermissionDenied, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("marketplace request failed")
		return fmt.Errorf("marketplace %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode marketplace response: %w", err)
	}
	return nil
}

func toListing(p listingPayload) ports.Listing {
	listing := ports.Listing{
		ID:              p.ID,
		Title:           p.Attributes.Title,
		ProcessAlias:    p.Attributes.ProcessAlias,
		LocationAddress: p.Attributes.PublicData.Location.Address,
	}
	if geo := p.Attributes.Geolocation; geo != nil {
		listing.Geolocation = &domain.Coordinate{Lat: geo.Lat, Lng: geo.Lng}
	}
	return listing
}

func toSeller(p authorPayload) *ports.SellerProfile {
	seller := &ports.SellerProfile{ID: p.ID}
	protected := p.Attributes.Profile.ProtectedData
	if protected.Lat != nil && protected.Lng != nil {
		seller.Coordinate = &domain.Coordinate{Lat: *protected.Lat, Lng: *protected.Lng}
	}
	seller.Address = protected.Address.toDomain()
	return seller
}

func initiateProtectedData(in ports.InitiateOrderInput) map[string]any {
	data := map[string]any{}
	if in.ShippingAddress != nil {
		data["shippingAddress"] = map[string]string{
			"line1":      in.ShippingAddress.Line1,
			"city":       in.ShippingAddress.City,
			"state":      in.ShippingAddress.State,
			"postalCode": in.ShippingAddress.PostalCode,
			"country":    in.ShippingAddress.Country,
		}
	}
	return data
}
