package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

const (
	defaultBaseURL = "https://api.mapbox.com"
	defaultTimeout = 10 * time.Second
)

// MapboxClient resolves postal addresses through the Mapbox forward-geocoding
// API, always requesting a single best match.
type MapboxClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      zerolog.Logger
}

func NewMapboxClient(baseURL, accessToken string, logger zerolog.Logger) *MapboxClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MapboxClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      logger,
	}
}

type mapboxResponse struct {
	Features []struct {
		Center [2]float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// Geocode resolves the address to coordinates. Failures (transport, non-2xx,
// empty feature list) all wrap domain.ErrGeocodeFailed so callers can treat
// them uniformly.
func (c *MapboxClient) Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error) {
	query := searchText(address)
	if query == "" {
		return domain.Coordinate{}, fmt.Errorf("%w: empty address", domain.ErrGeocodeFailed)
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s&limit=1",
		c.baseURL, url.PathEscape(query), url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("geocoding request rejected")
		return domain.Coordinate{}, fmt.Errorf("%w: status %d", domain.ErrGeocodeFailed, resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: decode response: %v", domain.ErrGeocodeFailed, err)
	}
	if len(body.Features) == 0 {
		return domain.Coordinate{}, fmt.Errorf("%w: no match for %q", domain.ErrGeocodeFailed, query)
	}

	center := body.Features[0].Center
	return domain.Coordinate{Lat: center[1], Lng: center[0]}, nil
}

// searchText joins the populated address parts into the free-text query the
// geocoding API expects.
func searchText(address domain.Address) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{address.Line1, address.City, address.State, address.PostalCode, address.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
