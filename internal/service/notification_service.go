package service

import (
	"context"
	"errors"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/channel"
	"SiteMonitorAPI/internal/config"
	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/metrics"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/repository"
)

// INotificationService is the dispatcher plus delivery-record queries.
type INotificationService interface {
	DispatchEvent(ctx context.Context, event *models.AlertEvent) ([]models.AlertNotification, error)
	Dispatch(ctx context.Context, event *models.AlertEvent, msgType models.MessageType) ([]models.AlertNotification, error)
	IncrementRetryCount(ctx context.Context, id int) error
	Resend(ctx context.Context, id int) (*models.AlertNotification, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.AlertNotification, error)
	ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.AlertNotification, error)
}

// NotificationService formats messages and pushes them through every
// configured channel, persisting one delivery record per attempt.
type NotificationService struct {
	repo      repository.INotificationRepository
	sites     repository.ISiteRepository
	registry  *channel.Registry
	cfg       config.NotificationConfig
	collector *metrics.Collector
	log       *logger.Logger
}

func NewNotificationService(
	repo repository.INotificationRepository,
	sites repository.ISiteRepository,
	registry *channel.Registry,
	cfg config.NotificationConfig,
	collector *metrics.Collector,
	log *logger.Logger,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		sites:     sites,
		registry:  registry,
		cfg:       cfg,
		collector: collector,
		log:       log,
	}
}

// DispatchEvent picks the message shapes from the event's lifecycle state:
// resolved events get the recovery message, everything else gets the full
// outage detail followed by the terse summary.
func (s *NotificationService) DispatchEvent(ctx context.Context, event *models.AlertEvent) ([]models.AlertNotification, error) {
	if event.Status == models.EventResolved {
		return s.Dispatch(ctx, event, models.MessageRecovery)
	}

	sent, err := s.Dispatch(ctx, event, models.MessageComplete)
	if err != nil {
		return sent, err
	}
	summaries, err := s.Dispatch(ctx, event, models.MessageSummary)
	return append(sent, summaries...), err
}

// Dispatch sends one message shape for the event to every configured
// recipient on every registered channel. Channel failures are recorded on
// the delivery row and never returned; only persistence failures surface.
func (s *NotificationService) Dispatch(ctx context.Context, event *models.AlertEvent, msgType models.MessageType) ([]models.AlertNotification, error) {
	site := s.siteSnapshot(ctx, event)
	content := s.buildMessage(site, event, msgType)

	var sent []models.AlertNotification
	for _, name := range s.registry.Names() {
		ch, _ := s.registry.Get(name)
		for _, recipient := range s.recipients(name) {
			record, err := s.sendOne(ctx, event, ch, recipient, msgType, content)
			if err != nil {
				return sent, err
			}
			sent = append(sent, *record)
		}
	}

	if len(sent) == 0 {
		s.log.Warn("No recipients configured, event %d not notified", event.ID)
	}

	return sent, nil
}

// sendOne persists a pending record, performs the network call and updates
// the record in place with the outcome.
func (s *NotificationService) sendOne(
	ctx context.Context,
	event *models.AlertEvent,
	ch channel.Channel,
	recipient string,
	msgType models.MessageType,
	content string,
) (*models.AlertNotification, error) {
	record := &models.AlertNotification{
		AlertEventID:   event.ID,
		Channel:        ch.Name(),
		Recipient:      recipient,
		Status:         models.NotificationPending,
		MessageType:    msgType,
		MessageContent: content,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	result := ch.Send(sendCtx, recipient, content)
	cancel()

	if result.Success {
		if err := s.repo.MarkSent(ctx, record.ID, result.ProviderMessageID); err != nil {
			return nil, err
		}
		s.collector.IncNotificationsSent()
	} else {
		errMsg := "send failed"
		if result.Err != nil {
			errMsg = result.Err.Error()
		}
		if err := s.repo.MarkFailed(ctx, record.ID, errMsg); err != nil {
			return nil, err
		}
		s.collector.IncNotificationsFailed()
		s.log.Error("Delivery via %s to %s failed for event %d: %s",
			ch.Name(), recipient, event.ID, errMsg)
	}

	return s.repo.GetByID(ctx, record.ID)
}

// IncrementRetryCount bumps retry_count without changing status.
func (s *NotificationService) IncrementRetryCount(ctx context.Context, id int) error {
	return s.repo.IncrementRetry(ctx, id)
}

// Resend re-sends an existing delivery record's content to its original
// recipient and bumps the retry counter. There is no automatic retry
// scheduler; resends are always caller-triggered.
func (s *NotificationService) Resend(ctx context.Context, id int) (*models.AlertNotification, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ch, ok := s.registry.Get(record.Channel)
	if !ok {
		return nil, apperrors.NewValidation("channel", "no adapter registered for "+string(record.Channel))
	}

	if err := s.repo.IncrementRetry(ctx, id); err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	result := ch.Send(sendCtx, record.Recipient, record.MessageContent)
	cancel()

	if result.Success {
		if err := s.repo.MarkSent(ctx, id, result.ProviderMessageID); err != nil {
			return nil, err
		}
		s.collector.IncNotificationsSent()
	} else {
		errMsg := "send failed"
		if result.Err != nil {
			errMsg = result.Err.Error()
		}
		if err := s.repo.MarkFailed(ctx, id, errMsg); err != nil {
			return nil, err
		}
		s.collector.IncNotificationsFailed()
	}

	return s.repo.GetByID(ctx, id)
}

func (s *NotificationService) ListByEvent(ctx context.Context, eventID int) ([]models.AlertNotification, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *NotificationService) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.AlertNotification, error) {
	return s.repo.ListByStatus(ctx, status, limit)
}

func (s *NotificationService) buildMessage(site *models.MonitoredSite, event *models.AlertEvent, msgType models.MessageType) string {
	switch msgType {
	case models.MessageSummary:
		return BuildSummaryMessage(site, event)
	case models.MessageRecovery:
		return BuildRecoveryMessage(site, event)
	default:
		return BuildCompleteMessage(site, event)
	}
}

// siteSnapshot looks up the event's site; events with no site (or a site
// that has since vanished) still get a message built from the event itself.
func (s *NotificationService) siteSnapshot(ctx context.Context, event *models.AlertEvent) *models.MonitoredSite {
	if event.SiteID == nil {
		return nil
	}

	site, err := s.sites.GetBySiteID(ctx, *event.SiteID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.log.Warn("Failed to load site %s for event %d: %v", *event.SiteID, event.ID, err)
		}
		return nil
	}
	return site
}

func (s *NotificationService) recipients(name models.NotificationChannel) []string {
	switch name {
	case models.ChannelWhatsApp:
		return s.cfg.WhatsAppRecipients
	case models.ChannelEmail:
		return s.cfg.EmailRecipients
	case models.ChannelWebhook:
		return s.cfg.WebhookURLs
	default:
		return nil
	}
}
