package delivery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

func TestOnfleetClient_Configured(t *testing.T) {
	assert.False(t, NewOnfleetClient("", "", zerolog.Nop()).Configured())
	assert.True(t, NewOnfleetClient("", "key_test", zerolog.Nop()).Configured())
}

func TestOnfleetClient_CreateTask(t *testing.T) {
	var captured taskRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/tasks", r.URL.Path)

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key_test:"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"task_1","trackingURL":"https://onf.lt/abc"}`))
	}))
	defer server.Close()

	client := NewOnfleetClient(server.URL, "key_test", zerolog.Nop())
	task, err := client.CreateTask(context.Background(), ports.DeliveryTaskInput{
		TransactionID: "tx_1",
		RecipientName: "Casey Buyer",
		Notes:         "Heirloom tomatoes",
		Destination: domain.Address{
			Line1: "200 Market St", City: "Boulder", State: "CO", PostalCode: "80301", Country: "US",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "task_1", task.ID)
	assert.Equal(t, "https://onf.lt/abc", task.TrackingURL)

	assert.Equal(t, "200 Market St, Boulder, CO, 80301, US", captured.Destination.Address.Unparsed)
	require.Len(t, captured.Recipients, 1)
	assert.Equal(t, "Casey Buyer", captured.Recipients[0].Name)
	assert.True(t, captured.Recipients[0].SkipPhoneNumberValidation)
	require.Len(t, captured.Metadata, 1)
	assert.Equal(t, taskMetadata{Name: "transactionId", Type: "string", Value: "tx_1"}, captured.Metadata[0])
}

func TestOnfleetClient_CreateTask_PhoneSkipsValidationFlag(t *testing.T) {
	var captured taskRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"id":"task_2","trackingURL":""}`))
	}))
	defer server.Close()

	client := NewOnfleetClient(server.URL, "key_test", zerolog.Nop())
	_, err := client.CreateTask(context.Background(), ports.DeliveryTaskInput{
		RecipientName:  "Casey Buyer",
		RecipientPhone: "+13035550100",
		Destination:    domain.Address{Line1: "200 Market St"},
	})
	require.NoError(t, err)

	require.Len(t, captured.Recipients, 1)
	assert.Equal(t, "+13035550100", captured.Recipients[0].Phone)
	assert.False(t, captured.Recipients[0].SkipPhoneNumberValidation)
}

func TestOnfleetClient_CreateTask_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewOnfleetClient(server.URL, "key_bad", zerolog.Nop())
	_, err := client.CreateTask(context.Background(), ports.DeliveryTaskInput{
		RecipientName: "Casey Buyer",
		Destination:   domain.Address{Line1: "200 Market St"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestOnfleetClient_CreateTask_Unconfigured(t *testing.T) {
	client := NewOnfleetClient("", "", zerolog.Nop())
	_, err := client.CreateTask(context.Background(), ports.DeliveryTaskInput{RecipientName: "x"})
	require.Error(t, err)
}
