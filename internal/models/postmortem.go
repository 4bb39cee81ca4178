package models

import "time"

type PostMortemStatus string

const (
	PostMortemDraft      PostMortemStatus = "draft"
	PostMortemInProgress PostMortemStatus = "in_progress"
	PostMortemCompleted  PostMortemStatus = "completed"
	PostMortemReviewed   PostMortemStatus = "reviewed"
)

// TimelineEntry is one timestamped note in an incident timeline.
type TimelineEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// ActionItem is a follow-up task captured during the write-up.
type ActionItem struct {
	Description string     `json:"description"`
	Owner       string     `json:"owner"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Done        bool       `json:"done"`
}

// PostMortem is the structured write-up of a resolved incident. It links to
// at most one alert event (standalone write-ups carry a nil AlertEventID);
// the link is not a foreign key, so a dangling event id is tolerated.
type PostMortem struct {
	ID              int              `json:"id" db:"id"`
	AlertEventID    *int             `json:"alert_event_id" db:"alert_event_id"`
	Status          PostMortemStatus `json:"status" db:"status"`
	Title           string           `json:"title" db:"title"`
	Summary         string           `json:"summary" db:"summary"`
	RootCause       string           `json:"root_cause" db:"root_cause"`
	Impact          string           `json:"impact" db:"impact"`
	Severity        EventSeverity    `json:"severity" db:"severity"`
	IncidentStart   *time.Time       `json:"incident_start" db:"incident_start"`
	IncidentEnd     *time.Time       `json:"incident_end" db:"incident_end"`
	DetectionTime   time.Time        `json:"detection_time" db:"detection_time"`
	ResponseTime    *time.Time       `json:"response_time" db:"response_time"`
	ResolutionTime  *time.Time       `json:"resolution_time" db:"resolution_time"`
	DowntimeMinutes *float64         `json:"downtime_minutes" db:"downtime_minutes"`
	Timeline        []TimelineEntry  `json:"timeline" db:"timeline"`
	ActionItems     []ActionItem     `json:"action_items" db:"action_items"`
	Preventive      []string         `json:"preventive_actions" db:"preventive_actions"`
	Author          string           `json:"author" db:"author"`
	ReviewedBy      *string          `json:"reviewed_by" db:"reviewed_by"`
	CompletedAt     *time.Time       `json:"completed_at" db:"completed_at"`
	ReviewedAt      *time.Time       `json:"reviewed_at" db:"reviewed_at"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// RecomputeDowntime refreshes DowntimeMinutes from the incident boundaries.
// It clears the value when either boundary is missing.
func (p *PostMortem) RecomputeDowntime() {
	if p.IncidentStart == nil || p.IncidentEnd == nil {
		p.DowntimeMinutes = nil
		return
	}
	minutes := p.IncidentEnd.Sub(*p.IncidentStart).Minutes()
	p.DowntimeMinutes = &minutes
}

// PostMortemReport is a post-mortem plus the derived incident metrics.
type PostMortemReport struct {
	PostMortem             PostMortem `json:"post_mortem"`
	MTTRMinutes            *float64   `json:"mttr_minutes"`
	DetectionDelayMinutes  *float64   `json:"detection_delay_minutes"`
	ResponseDelayMinutes   *float64   `json:"response_delay_minutes"`
	TotalResolutionMinutes *float64   `json:"total_resolution_minutes"`
}
