package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

const (
	defaultBaseURL = "https://onfleet.com"
	defaultTimeout = 15 * time.Second
)

// OnfleetClient creates last-mile delivery tasks through the Onfleet API.
// The API key doubles as the enable switch: an empty key leaves the
// integration off and every task request becomes a graceful skip upstream.
type OnfleetClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewOnfleetClient(baseURL, apiKey string, logger zerolog.Logger) *OnfleetClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OnfleetClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// Configured reports whether an API key is present.
func (c *OnfleetClient) Configured() bool {
	return c.apiKey != ""
}

type taskRequest struct {
	Destination taskDestination `json:"destination"`
	Recipients  []taskRecipient `json:"recipients"`
	Notes       string          `json:"notes,omitempty"`
	Metadata    []taskMetadata  `json:"metadata,omitempty"`
}

type taskDestination struct {
	Address struct {
		Unparsed string `json:"unparsed"`
	} `json:"address"`
}

type taskRecipient struct {
	Name                      string `json:"name"`
	Phone                     string `json:"phone,omitempty"`
	SkipPhoneNumberValidation bool   `json:"skipPhoneNumberValidation,omitempty"`
}

type taskMetadata struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type taskResponse struct {
	ID          string `json:"id"`
	TrackingURL string `json:"trackingURL"`
}

// CreateTask creates one delivery task. The transaction ID rides along as
// task metadata so the completion webhook can be linked back.
func (c *OnfleetClient) CreateTask(ctx context.Context, in ports.DeliveryTaskInput) (*ports.DeliveryTask, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("delivery provider not configured")
	}

	payload := taskRequest{Notes: in.Notes}
	payload.Destination.Address.Unparsed = unparsedAddress(in.Destination)

	recipient := taskRecipient{Name: in.RecipientName, Phone: in.RecipientPhone}
	if recipient.Phone == "" {
		recipient.SkipPhoneNumberValidation = true
	}
	payload.Recipients = []taskRecipient{recipient}

	if in.TransactionID != "" {
		payload.Metadata = []taskMetadata{{Name: "transactionId", Type: "string", Value: in.TransactionID}}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/tasks", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delivery provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("transaction_id", in.TransactionID).
			Msg("delivery task rejected")
		return nil, fmt.Errorf("delivery provider: status %d", resp.StatusCode)
	}

	var task taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("decode task response: %w", err)
	}

	c.logger.Info().Str("task_id", task.ID).Str("transaction_id", in.TransactionID).Msg("delivery task created")
	return &ports.DeliveryTask{ID: task.ID, TrackingURL: task.TrackingURL}, nil
}

func unparsedAddress(a domain.Address) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Line1, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
