package service

import (
	"context"
	"fmt"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/mqtt"
	"SiteMonitorAPI/internal/repository"
	"SiteMonitorAPI/internal/websocket"
)

// CustomEventInput carries caller-supplied fields for a manual event.
// Manual events bypass the per-site dedup rule.
type CustomEventInput struct {
	EventType         models.EventType     `json:"event_type"`
	Severity          models.EventSeverity `json:"severity"`
	SiteID            *string              `json:"site_id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	DeviceCount       int                  `json:"device_count"`
	DeviceOutageCount int                  `json:"device_outage_count"`
	OutagePercentage  float64              `json:"outage_percentage"`
}

// IEventService is the alert event lifecycle.
type IEventService interface {
	CreateCustomEvent(ctx context.Context, input CustomEventInput) (*models.AlertEvent, error)
	GetEvent(ctx context.Context, id int) (*models.AlertEvent, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.AlertEvent, error)
	GetActiveEvents(ctx context.Context) ([]models.AlertEvent, error)
	Acknowledge(ctx context.Context, id int, actor string, note *string) (*models.AlertEvent, error)
	Resolve(ctx context.Context, id int, actor string, note *string, auto bool) (*models.AlertEvent, error)
	Ignore(ctx context.Context, id int) (*models.AlertEvent, error)
	Delete(ctx context.Context, id int) error
}

type EventService struct {
	repo      repository.IEventRepository
	hub       *websocket.Hub
	publisher *mqtt.Publisher
	log       *logger.Logger
}

func NewEventService(repo repository.IEventRepository, hub *websocket.Hub, publisher *mqtt.Publisher, log *logger.Logger) *EventService {
	return &EventService{
		repo:      repo,
		hub:       hub,
		publisher: publisher,
		log:       log,
	}
}

var validSeverities = map[models.EventSeverity]bool{
	models.SeverityCritical: true,
	models.SeverityHigh:     true,
	models.SeverityMedium:   true,
	models.SeverityLow:      true,
	models.SeverityInfo:     true,
}

var validEventTypes = map[models.EventType]bool{
	models.EventSiteOutage:      true,
	models.EventSiteDegraded:    true,
	models.EventSiteRecovered:   true,
	models.EventDeviceOutage:    true,
	models.EventDeviceRecovered: true,
	models.EventCustom:          true,
}

// CreateCustomEvent inserts a new active event from caller-supplied fields.
func (s *EventService) CreateCustomEvent(ctx context.Context, input CustomEventInput) (*models.AlertEvent, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidation("title", "is required")
	}
	if input.EventType == "" {
		input.EventType = models.EventCustom
	}
	if !validEventTypes[input.EventType] {
		return nil, apperrors.NewValidation("event_type", fmt.Sprintf("unknown type %q", input.EventType))
	}
	if input.Severity == "" {
		input.Severity = models.SeverityMedium
	}
	if !validSeverities[input.Severity] {
		return nil, apperrors.NewValidation("severity", fmt.Sprintf("unknown severity %q", input.Severity))
	}

	event := &models.AlertEvent{
		EventType:         input.EventType,
		Severity:          input.Severity,
		Status:            models.EventActive,
		SiteID:            input.SiteID,
		Title:             input.Title,
		Description:       input.Description,
		DeviceCount:       input.DeviceCount,
		DeviceOutageCount: input.DeviceOutageCount,
		OutagePercentage:  input.OutagePercentage,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.hub.Broadcast(websocket.TypeEventCreated, event)
	s.publisher.Publish("events/created", event)
	s.log.Info("Created custom event %d (%s/%s)", event.ID, event.EventType, event.Severity)

	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int) (*models.AlertEvent, error) {
	return s.repo.GetByID(ctx, id)
}

// ListEvents returns filtered events, newest first.
func (s *EventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.AlertEvent, error) {
	return s.repo.List(ctx, filter)
}

func (s *EventService) GetActiveEvents(ctx context.Context) ([]models.AlertEvent, error) {
	return s.repo.GetActive(ctx)
}

// Acknowledge stamps the actor onto the event. The repository does not guard
// against acknowledging an already-resolved event.
func (s *EventService) Acknowledge(ctx context.Context, id int, actor string, note *string) (*models.AlertEvent, error) {
	if actor == "" {
		return nil, apperrors.NewValidation("acknowledged_by", "is required")
	}

	if err := s.repo.Acknowledge(ctx, id, actor, note); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(websocket.TypeEventUpdated, event)
	s.publisher.Publish("events/acknowledged", event)
	s.log.Info("Event %d acknowledged by %s", id, actor)

	return event, nil
}

// Resolve closes the event and stamps the resolver.
func (s *EventService) Resolve(ctx context.Context, id int, actor string, note *string, auto bool) (*models.AlertEvent, error) {
	if actor == "" {
		return nil, apperrors.NewValidation("resolved_by", "is required")
	}

	if err := s.repo.Resolve(ctx, id, actor, note, auto); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(websocket.TypeEventResolved, event)
	s.publisher.Publish("events/resolved", event)
	s.log.Info("Event %d resolved by %s (auto=%v)", id, actor, auto)

	return event, nil
}

// Ignore silences an active event without resolving it. Only active events
// can be ignored; the monitored condition may still be ongoing, so the site
// keeps its status and no recovery message is sent. Ignored is terminal.
func (s *EventService) Ignore(ctx context.Context, id int) (*models.AlertEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventActive {
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("only active events can be ignored, event %d is %s", id, event.Status))
	}

	if err := s.repo.Ignore(ctx, id); err != nil {
		return nil, err
	}

	event, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(websocket.TypeEventUpdated, event)
	s.publisher.Publish("events/ignored", event)
	s.log.Info("Event %d ignored", id)

	return event, nil
}

// Delete hard-deletes the event along with its notifications and any
// linked post-mortem.
func (s *EventService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Deleted event %d", id)
	return nil
}
