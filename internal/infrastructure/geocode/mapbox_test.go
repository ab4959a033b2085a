package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

func TestMapboxClient_Geocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/geocoding/v5/mapbox.places/")
		assert.Contains(t, r.URL.Path, "100 Farm Rd")
		assert.Equal(t, "tok_test", r.URL.Query().Get("access_token"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"features":[{"center":[-105.2705,40.0150]}]}`))
	}))
	defer server.Close()

	client := NewMapboxClient(server.URL, "tok_test", zerolog.Nop())
	coord, err := client.Geocode(context.Background(), domain.Address{
		Line1: "100 Farm Rd", City: "Boulder", State: "CO", PostalCode: "80301", Country: "US",
	})
	require.NoError(t, err)

	// center is [lng, lat]
	assert.InDelta(t, 40.0150, coord.Lat, 1e-9)
	assert.InDelta(t, -105.2705, coord.Lng, 1e-9)
}

func TestMapboxClient_Geocode_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer server.Close()

	client := NewMapboxClient(server.URL, "tok_test", zerolog.Nop())
	_, err := client.Geocode(context.Background(), domain.Address{Line1: "nowhere"})
	assert.True(t, errors.Is(err, domain.ErrGeocodeFailed))
}

func TestMapboxClient_Geocode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewMapboxClient(server.URL, "tok_test", zerolog.Nop())
	_, err := client.Geocode(context.Background(), domain.Address{Line1: "100 Farm Rd"})
	assert.True(t, errors.Is(err, domain.ErrGeocodeFailed))
}

func TestMapboxClient_Geocode_EmptyAddress(t *testing.T) {
	client := NewMapboxClient("http://unused", "tok_test", zerolog.Nop())
	_, err := client.Geocode(context.Background(), domain.Address{})
	assert.True(t, errors.Is(err, domain.ErrGeocodeFailed))
}

func TestSearchText_JoinsPopulatedParts(t *testing.T) {
	got := searchText(domain.Address{Line1: "100 Farm Rd", City: "Boulder", Country: "US"})
	assert.Equal(t, "100 Farm Rd, Boulder, US", got)
}
