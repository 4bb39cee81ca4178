package models

import "time"

type EventType string

const (
	EventSiteOutage      EventType = "site_outage"
	EventSiteDegraded    EventType = "site_degraded"
	EventSiteRecovered   EventType = "site_recovered"
	EventDeviceOutage    EventType = "device_outage"
	EventDeviceRecovered EventType = "device_recovered"
	EventCustom          EventType = "custom"
)

type EventSeverity string

const (
	SeverityCritical EventSeverity = "critical"
	SeverityHigh     EventSeverity = "high"
	SeverityMedium   EventSeverity = "medium"
	SeverityLow      EventSeverity = "low"
	SeverityInfo     EventSeverity = "info"
)

type EventStatus string

const (
	EventActive       EventStatus = "active"
	EventAcknowledged EventStatus = "acknowledged"
	EventResolved     EventStatus = "resolved"
	EventIgnored      EventStatus = "ignored"
)

// AlertEvent is a recorded incident with a lifecycle independent of the
// site's live status. Transitions only move forward: active→acknowledged→
// resolved, active→resolved, or active→ignored. Events are never reopened.
//
// Invariant: at most one active outage-class event (site_outage or
// site_degraded) exists per site at any time.
type AlertEvent struct {
	ID                int           `json:"id" db:"id"`
	EventType         EventType     `json:"event_type" db:"event_type"`
	Severity          EventSeverity `json:"severity" db:"severity"`
	Status            EventStatus   `json:"status" db:"status"`
	SiteID            *string       `json:"site_id" db:"site_id"`
	Title             string        `json:"title" db:"title"`
	Description       string        `json:"description" db:"description"`
	DeviceCount       int           `json:"device_count" db:"device_count"`
	DeviceOutageCount int           `json:"device_outage_count" db:"device_outage_count"`
	OutagePercentage  float64       `json:"outage_percentage" db:"outage_percentage"`
	AcknowledgedBy    *string       `json:"acknowledged_by" db:"acknowledged_by"`
	AcknowledgedAt    *time.Time    `json:"acknowledged_at" db:"acknowledged_at"`
	AcknowledgedNote  *string       `json:"acknowledged_note" db:"acknowledged_note"`
	ResolvedBy        *string       `json:"resolved_by" db:"resolved_by"`
	ResolvedAt        *time.Time    `json:"resolved_at" db:"resolved_at"`
	ResolvedNote      *string       `json:"resolved_note" db:"resolved_note"`
	AutoResolved      bool          `json:"auto_resolved" db:"auto_resolved"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// IsOutageClass reports whether the event type participates in the
// one-active-event-per-site dedup rule.
func (t EventType) IsOutageClass() bool {
	return t == EventSiteOutage || t == EventSiteDegraded
}

// EventFilter narrows ListEvents queries. Zero values mean "any".
type EventFilter struct {
	Status   EventStatus
	Severity EventSeverity
	Type     EventType
	Limit    int
}
