package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"

	"github.com/google/uuid"
)

// WhatsAppChannel sends messages through an HTTP WhatsApp gateway.
type WhatsAppChannel struct {
	gatewayURL string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

type whatsAppRequest struct {
	To             string `json:"to"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key"`
}

type whatsAppResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func NewWhatsAppChannel(gatewayURL, token string, timeout time.Duration, log *logger.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{
		gatewayURL: gatewayURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (c *WhatsAppChannel) Name() models.NotificationChannel {
	return models.ChannelWhatsApp
}

func (c *WhatsAppChannel) Send(ctx context.Context, recipient, message string) Result {
	if c.gatewayURL == "" {
		return failure(fmt.Errorf("whatsapp gateway URL not configured"))
	}

	payload := whatsAppRequest{
		To:             recipient,
		Body:           message,
		IdempotencyKey: uuid.NewString(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(fmt.Errorf("failed to marshal whatsapp payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Errorf("failed to create whatsapp request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("WhatsApp send to %s failed: %v", recipient, err)
		return failure(fmt.Errorf("whatsapp send failed: %w", err))
	}
	defer resp.Body.Close()

	var gwResp whatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		gwResp = whatsAppResponse{}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := gwResp.Error
		if reason == "" {
			reason = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		c.log.Error("WhatsApp gateway rejected message to %s: %s", recipient, reason)
		return failure(fmt.Errorf("whatsapp send failed: %s", reason))
	}

	c.log.Debug("WhatsApp message sent to %s (provider id %s)", recipient, gwResp.MessageID)
	return success(gwResp.MessageID)
}
