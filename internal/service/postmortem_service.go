package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/repository"
)

// PostMortemInput carries fields for creating a write-up. Timeline fields
// left nil are defaulted from the linked event when one is given.
type PostMortemInput struct {
	AlertEventID   *int                   `json:"alert_event_id"`
	Title          string                 `json:"title"`
	Summary        string                 `json:"summary"`
	RootCause      string                 `json:"root_cause"`
	Impact         string                 `json:"impact"`
	Severity       models.EventSeverity   `json:"severity"`
	IncidentStart  *time.Time             `json:"incident_start"`
	IncidentEnd    *time.Time             `json:"incident_end"`
	DetectionTime  *time.Time             `json:"detection_time"`
	ResponseTime   *time.Time             `json:"response_time"`
	ResolutionTime *time.Time             `json:"resolution_time"`
	Timeline       []models.TimelineEntry `json:"timeline"`
	ActionItems    []models.ActionItem    `json:"action_items"`
	Preventive     []string               `json:"preventive_actions"`
	Author         string                 `json:"author"`
}

// PostMortemUpdate is a partial update; nil fields are left untouched.
type PostMortemUpdate struct {
	Title          *string                `json:"title"`
	Summary        *string                `json:"summary"`
	RootCause      *string                `json:"root_cause"`
	Impact         *string                `json:"impact"`
	Severity       *models.EventSeverity  `json:"severity"`
	IncidentStart  *time.Time             `json:"incident_start"`
	IncidentEnd    *time.Time             `json:"incident_end"`
	ResponseTime   *time.Time             `json:"response_time"`
	ResolutionTime *time.Time             `json:"resolution_time"`
	Timeline       []models.TimelineEntry `json:"timeline"`
	ActionItems    []models.ActionItem    `json:"action_items"`
	Preventive     []string               `json:"preventive_actions"`
	Author         *string                `json:"author"`
}

// IPostMortemService is the incident documentation lifecycle.
type IPostMortemService interface {
	Create(ctx context.Context, input PostMortemInput) (*models.PostMortem, error)
	Get(ctx context.Context, id int) (*models.PostMortem, error)
	List(ctx context.Context, limit int) ([]models.PostMortem, error)
	Update(ctx context.Context, id int, update PostMortemUpdate) (*models.PostMortem, error)
	Complete(ctx context.Context, id int) (*models.PostMortem, error)
	Review(ctx context.Context, id int, reviewer string) (*models.PostMortem, error)
	GenerateReport(ctx context.Context, id int) (*models.PostMortemReport, error)
	Delete(ctx context.Context, id int) error
}

type PostMortemService struct {
	repo   repository.IPostMortemRepository
	events repository.IEventRepository
	log    *logger.Logger
}

func NewPostMortemService(repo repository.IPostMortemRepository, events repository.IEventRepository, log *logger.Logger) *PostMortemService {
	return &PostMortemService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// Create inserts a draft write-up. When an event id is given, the write-up
// is the event's single post-mortem (duplicates are rejected) and empty
// fields default from the event: title, severity, incident start,
// detection time from creation, response time from acknowledgment and
// resolution time from resolution.
func (s *PostMortemService) Create(ctx context.Context, input PostMortemInput) (*models.PostMortem, error) {
	pm := &models.PostMortem{
		AlertEventID:   input.AlertEventID,
		Status:         models.PostMortemDraft,
		Title:          input.Title,
		Summary:        input.Summary,
		RootCause:      input.RootCause,
		Impact:         input.Impact,
		Severity:       input.Severity,
		IncidentStart:  input.IncidentStart,
		IncidentEnd:    input.IncidentEnd,
		ResponseTime:   input.ResponseTime,
		ResolutionTime: input.ResolutionTime,
		Timeline:       input.Timeline,
		ActionItems:    input.ActionItems,
		Preventive:     input.Preventive,
		Author:         input.Author,
	}
	if input.DetectionTime != nil {
		pm.DetectionTime = *input.DetectionTime
	}

	if input.AlertEventID != nil {
		existing, err := s.repo.GetByEventID(ctx, *input.AlertEventID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewValidation("alert_event_id",
				fmt.Sprintf("event %d already has post-mortem %d", *input.AlertEventID, existing.ID))
		}

		event, err := s.events.GetByID(ctx, *input.AlertEventID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if event != nil {
			s.applyEventDefaults(pm, event)
		}
	}

	if pm.DetectionTime.IsZero() {
		return nil, apperrors.NewValidation("detection_time", "is required")
	}
	if pm.Severity == "" {
		pm.Severity = models.SeverityMedium
	}

	pm.RecomputeDowntime()

	if err := s.repo.Create(ctx, pm); err != nil {
		return nil, err
	}

	s.log.Info("Created post-mortem %d", pm.ID)
	return pm, nil
}

func (s *PostMortemService) applyEventDefaults(pm *models.PostMortem, event *models.AlertEvent) {
	if pm.Title == "" {
		pm.Title = "Post-mortem: " + event.Title
	}
	if pm.Severity == "" {
		pm.Severity = event.Severity
	}
	if pm.IncidentStart == nil {
		start := event.CreatedAt
		pm.IncidentStart = &start
	}
	if pm.DetectionTime.IsZero() {
		pm.DetectionTime = event.CreatedAt
	}
	if pm.ResponseTime == nil && event.AcknowledgedAt != nil {
		pm.ResponseTime = event.AcknowledgedAt
	}
	if pm.ResolutionTime == nil && event.ResolvedAt != nil {
		pm.ResolutionTime = event.ResolvedAt
	}
	if pm.IncidentEnd == nil && event.ResolvedAt != nil {
		pm.IncidentEnd = event.ResolvedAt
	}
}

func (s *PostMortemService) Get(ctx context.Context, id int) (*models.PostMortem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PostMortemService) List(ctx context.Context, limit int) ([]models.PostMortem, error) {
	return s.repo.List(ctx, limit)
}

// Update merges the provided fields and recomputes the downtime whenever an
// incident boundary moved. Reviewed write-ups are immutable.
func (s *PostMortemService) Update(ctx context.Context, id int, update PostMortemUpdate) (*models.PostMortem, error) {
	pm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if pm.Status == models.PostMortemReviewed {
		return nil, apperrors.NewValidation("status", "reviewed post-mortems cannot be updated")
	}

	if update.Title != nil {
		pm.Title = *update.Title
	}
	if update.Summary != nil {
		pm.Summary = *update.Summary
	}
	if update.RootCause != nil {
		pm.RootCause = *update.RootCause
	}
	if update.Impact != nil {
		pm.Impact = *update.Impact
	}
	if update.Severity != nil {
		pm.Severity = *update.Severity
	}
	if update.Author != nil {
		pm.Author = *update.Author
	}
	if update.Timeline != nil {
		pm.Timeline = update.Timeline
	}
	if update.ActionItems != nil {
		pm.ActionItems = update.ActionItems
	}
	if update.Preventive != nil {
		pm.Preventive = update.Preventive
	}
	if update.ResponseTime != nil {
		pm.ResponseTime = update.ResponseTime
	}
	if update.ResolutionTime != nil {
		pm.ResolutionTime = update.ResolutionTime
	}

	boundariesChanged := false
	if update.IncidentStart != nil {
		pm.IncidentStart = update.IncidentStart
		boundariesChanged = true
	}
	if update.IncidentEnd != nil {
		pm.IncidentEnd = update.IncidentEnd
		boundariesChanged = true
	}
	if boundariesChanged {
		pm.RecomputeDowntime()
	}

	if pm.Status == models.PostMortemDraft {
		pm.Status = models.PostMortemInProgress
	}

	if err := s.repo.Update(ctx, pm); err != nil {
		return nil, err
	}

	return pm, nil
}

// Complete marks the write-up completed and stamps the time.
func (s *PostMortemService) Complete(ctx context.Context, id int) (*models.PostMortem, error) {
	pm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if pm.Status == models.PostMortemReviewed {
		return nil, apperrors.NewValidation("status", "post-mortem is already reviewed")
	}

	now := time.Now()
	pm.Status = models.PostMortemCompleted
	pm.CompletedAt = &now

	if err := s.repo.Update(ctx, pm); err != nil {
		return nil, err
	}

	s.log.Info("Post-mortem %d completed", id)
	return pm, nil
}

// Review marks the write-up reviewed. Reviewed is terminal.
func (s *PostMortemService) Review(ctx context.Context, id int, reviewer string) (*models.PostMortem, error) {
	pm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pm.Status = models.PostMortemReviewed
	pm.ReviewedAt = &now
	if reviewer != "" {
		pm.ReviewedBy = &reviewer
	}

	if err := s.repo.Update(ctx, pm); err != nil {
		return nil, err
	}

	s.log.Info("Post-mortem %d reviewed", id)
	return pm, nil
}

// GenerateReport returns the record plus derived incident metrics. MTTR is
// the computed downtime; the delay metrics are nil whenever their inputs
// are missing.
func (s *PostMortemService) GenerateReport(ctx context.Context, id int) (*models.PostMortemReport, error) {
	pm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &models.PostMortemReport{
		PostMortem:  *pm,
		MTTRMinutes: pm.DowntimeMinutes,
	}

	if pm.IncidentStart != nil {
		detectionDelay := pm.DetectionTime.Sub(*pm.IncidentStart).Minutes()
		report.DetectionDelayMinutes = &detectionDelay

		if pm.ResolutionTime != nil {
			total := pm.ResolutionTime.Sub(*pm.IncidentStart).Minutes()
			report.TotalResolutionMinutes = &total
		}
	}

	if pm.ResponseTime != nil {
		responseDelay := pm.ResponseTime.Sub(pm.DetectionTime).Minutes()
		report.ResponseDelayMinutes = &responseDelay
	}

	return report, nil
}

func (s *PostMortemService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Deleted post-mortem %d", id)
	return nil
}
