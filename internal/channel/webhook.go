package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
)

// WebhookChannel POSTs the message as JSON to the recipient URL.
type WebhookChannel struct {
	httpClient *http.Client
	log        *logger.Logger
}

type webhookPayload struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func NewWebhookChannel(timeout time.Duration, log *logger.Logger) *WebhookChannel {
	return &WebhookChannel{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (c *WebhookChannel) Name() models.NotificationChannel {
	return models.ChannelWebhook
}

func (c *WebhookChannel) Send(ctx context.Context, recipient, message string) Result {
	if !strings.HasPrefix(recipient, "http://") && !strings.HasPrefix(recipient, "https://") {
		return failure(fmt.Errorf("invalid webhook URL: %q", recipient))
	}

	body, err := json.Marshal(webhookPayload{
		Source:  "site-monitor",
		Message: message,
	})
	if err != nil {
		return failure(fmt.Errorf("failed to marshal webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient, bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Errorf("failed to create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Webhook send to %s failed: %v", recipient, err)
		return failure(fmt.Errorf("webhook send failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("Webhook %s returned status %d", recipient, resp.StatusCode)
		return failure(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}

	return success("")
}
