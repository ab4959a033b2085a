package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

func TestClient_ShowListingWithSeller(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/integration/listings/l1", r.URL.Path)
		assert.Equal(t, "author", r.URL.Query().Get("include"))
		assert.Equal(t, "Bearer integ_token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{
			"data": {
				"id": "l1",
				"attributes": {
					"title": "Pasture Eggs",
					"processAlias": "default-purchase/release-1",
					"geolocation": {"lat": 40.01, "lng": -105.27}
				}
			},
			"included": [{
				"id": "u1",
				"attributes": {"profile": {"protectedData": {
					"address": {"line1": "1 Farm Ln", "city": "Boulder", "state": "CO", "postalCode": "80301", "country": "US"},
					"lat": 40.02,
					"lng": -105.28
				}}}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "integ_token", zerolog.Nop())
	got, err := client.ShowListingWithSeller(context.Background(), "l1")
	require.NoError(t, err)

	assert.Equal(t, "Pasture Eggs", got.Listing.Title)
	require.NotNil(t, got.Listing.Geolocation)
	assert.InDelta(t, 40.01, got.Listing.Geolocation.Lat, 1e-9)

	require.NotNil(t, got.Seller)
	require.NotNil(t, got.Seller.Coordinate)
	assert.InDelta(t, -105.28, got.Seller.Coordinate.Lng, 1e-9)
	require.NotNil(t, got.Seller.Address)
	assert.Equal(t, "1 Farm Ln", got.Seller.Address.Line1)
}

func TestClient_ShowListingWithSeller_NoIntegrationToken(t *testing.T) {
	client := NewClient("http://unused", "", zerolog.Nop())
	_, err := client.ShowListingWithSeller(context.Background(), "l1")
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestClient_ShowListing_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	_, err := client.ShowListing(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrListingNotFound))
}

func TestClient_ShowTransaction_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	_, err := client.ShowTransaction(context.Background(), "user_token", "tx_missing")
	assert.True(t, errors.Is(err, domain.ErrTransactionNotFound))
}

func TestClient_ShowCurrentUser_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	_, err := client.ShowCurrentUser(context.Background(), "stale_token")
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestClient_ShowCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current_user", r.URL.Path)
		assert.Equal(t, "Bearer user_token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data": {
			"id": "u1",
			"attributes": {
				"profile": {"privateData": {"isAdmin": true}},
				"processorCustomer": {"id": "cus_1", "defaultPaymentMethodId": "pm_1"}
			}
		}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	user, err := client.ShowCurrentUser(context.Background(), "user_token")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "cus_1", user.ProcessorCustomerID)
	assert.Equal(t, "pm_1", user.PaymentMethodID)
}

func TestClient_TransitionTransaction(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/integration/transactions/transition", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "integ_token", zerolog.Nop())
	err := client.TransitionTransaction(context.Background(), "tx_1", "transition/operator-mark-delivered")
	require.NoError(t, err)

	assert.Equal(t, "tx_1", gotBody["id"])
	assert.Equal(t, "transition/operator-mark-delivered", gotBody["transition"])
}
