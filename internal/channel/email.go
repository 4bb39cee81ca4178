package channel

import (
	"context"
	"fmt"
	"strings"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"

	"github.com/resend/resend-go/v2"
)

// EmailChannel sends messages through the Resend API.
type EmailChannel struct {
	client *resend.Client
	from   string
	log    *logger.Logger
}

func NewEmailChannel(apiKey, from string, log *logger.Logger) *EmailChannel {
	ch := &EmailChannel{from: from, log: log}
	if apiKey == "" {
		log.Warn("RESEND_API_KEY not set, email channel will reject sends")
		return ch
	}
	ch.client = resend.NewClient(apiKey)
	return ch
}

func (c *EmailChannel) Name() models.NotificationChannel {
	return models.ChannelEmail
}

func (c *EmailChannel) Send(ctx context.Context, recipient, message string) Result {
	if c.client == nil {
		return failure(fmt.Errorf("email channel not configured"))
	}
	if recipient == "" {
		return failure(fmt.Errorf("email recipient is required"))
	}

	subject := subjectFromBody(message)

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{recipient},
		Subject: subject,
		Text:    message,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		c.log.Error("Email send to %s failed: %v", recipient, err)
		return failure(fmt.Errorf("email send failed: %w", err))
	}

	c.log.Debug("Email sent to %s (provider id %s)", recipient, sent.Id)
	return success(sent.Id)
}

// subjectFromBody uses the first line of the message as the subject, the
// way the message builders lay alerts out.
func subjectFromBody(message string) string {
	line := message
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		line = message[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "Site alert"
	}
	if len(line) > 120 {
		line = line[:120]
	}
	return line
}
