package models

import "time"

type NotificationChannel string

const (
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelEmail    NotificationChannel = "email"
	ChannelWebhook  NotificationChannel = "webhook"
	ChannelSMS      NotificationChannel = "sms"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationRetry   NotificationStatus = "retry"
)

type MessageType string

const (
	MessageComplete MessageType = "complete"
	MessageSummary  MessageType = "summary"
	MessageRecovery MessageType = "recovery"
)

// AlertNotification records one delivery attempt through one channel. A row
// is inserted as pending before the network call and updated in place to
// sent or failed afterwards. Rows cascade away with their owning event.
type AlertNotification struct {
	ID                int                 `json:"id" db:"id"`
	AlertEventID      int                 `json:"alert_event_id" db:"alert_event_id"`
	Channel           NotificationChannel `json:"channel" db:"channel"`
	Recipient         string              `json:"recipient" db:"recipient"`
	Status            NotificationStatus  `json:"status" db:"status"`
	MessageType       MessageType         `json:"message_type" db:"message_type"`
	MessageContent    string              `json:"message_content" db:"message_content"`
	ProviderMessageID *string             `json:"provider_message_id" db:"provider_message_id"`
	SentAt            *time.Time          `json:"sent_at" db:"sent_at"`
	DeliveredAt       *time.Time          `json:"delivered_at" db:"delivered_at"`
	FailedAt          *time.Time          `json:"failed_at" db:"failed_at"`
	RetryCount        int                 `json:"retry_count" db:"retry_count"`
	ErrorMessage      *string             `json:"error_message" db:"error_message"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
}
