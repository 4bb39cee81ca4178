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

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
)

func testLogger() *logger.Logger {
	log, _ := logger.New(logger.Config{Level: logger.ERROR, UseColors: false})
	return log
}

func TestWebhookSend_PostsJSONPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(5*time.Second, testLogger())
	result := ch.Send(context.Background(), srv.URL, "🚨 Site outage: Hilltop Relay")

	assert.True(t, result.Success)
	assert.NoError(t, result.Err)
	assert.Equal(t, "site-monitor", got.Source)
	assert.Equal(t, "🚨 Site outage: Hilltop Relay", got.Message)
}

func TestWebhookSend_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(5*time.Second, testLogger())
	result := ch.Send(context.Background(), srv.URL, "message")

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "status 502")
}

func TestWebhookSend_RejectsNonHTTPRecipient(t *testing.T) {
	ch := NewWebhookChannel(5*time.Second, testLogger())

	result := ch.Send(context.Background(), "ftp://example.com/hook", "message")

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "invalid webhook URL")
}

func TestWebhookName(t *testing.T) {
	ch := NewWebhookChannel(time.Second, testLogger())
	assert.Equal(t, models.ChannelWebhook, ch.Name())
}
