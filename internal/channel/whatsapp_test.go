package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppSend_ReturnsProviderMessageID(t *testing.T) {
	var got whatsAppRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gateway-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(whatsAppResponse{MessageID: "wamid.123"})
	}))
	defer srv.Close()

	ch := NewWhatsAppChannel(srv.URL, "gateway-token", 5*time.Second, testLogger())
	result := ch.Send(context.Background(), "+15550100", "site down")

	assert.True(t, result.Success)
	require.NotNil(t, result.ProviderMessageID)
	assert.Equal(t, "wamid.123", *result.ProviderMessageID)
	assert.Equal(t, "+15550100", got.To)
	assert.Equal(t, "site down", got.Body)
	assert.NotEmpty(t, got.IdempotencyKey, "every send carries a fresh idempotency key")
}

func TestWhatsAppSend_GatewayErrorSurfacesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(whatsAppResponse{Error: "recipient opted out"})
	}))
	defer srv.Close()

	ch := NewWhatsAppChannel(srv.URL, "", 5*time.Second, testLogger())
	result := ch.Send(context.Background(), "+15550100", "site down")

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "recipient opted out")
}

func TestWhatsAppSend_Non2xxWithoutBodyUsesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := NewWhatsAppChannel(srv.URL, "", 5*time.Second, testLogger())
	result := ch.Send(context.Background(), "+15550100", "site down")

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "status 500")
}

func TestWhatsAppSend_MissingGatewayURL(t *testing.T) {
	ch := NewWhatsAppChannel("", "", time.Second, testLogger())

	result := ch.Send(context.Background(), "+15550100", "site down")

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "not configured")
}
