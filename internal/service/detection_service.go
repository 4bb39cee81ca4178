package service

import (
	"context"
	"fmt"
	"time"

	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/metrics"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/mqtt"
	"SiteMonitorAPI/internal/repository"
	"SiteMonitorAPI/internal/source"
	"SiteMonitorAPI/internal/websocket"

	"github.com/google/uuid"
)

// ScanSummary is the outcome of one full scan cycle.
type ScanSummary struct {
	ScanID         string    `json:"scan_id"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
	TotalSites     int       `json:"total_sites"`
	HealthySites   int       `json:"healthy_sites"`
	DegradedSites  int       `json:"degraded_sites"`
	DownSites      int       `json:"down_sites"`
	EventsCreated  int       `json:"events_created"`
	EventsResolved int       `json:"events_resolved"`
	SiteErrors     []string  `json:"site_errors,omitempty"`

	// Carried for the dispatcher, not serialized into status payloads.
	CreatedEvents  []models.AlertEvent `json:"-"`
	ResolvedEvents []models.AlertEvent `json:"-"`
}

// IDetectionService classifies sites and maintains the event lifecycle
// driven by fleet status.
type IDetectionService interface {
	ScanAllSites(ctx context.Context) (*ScanSummary, error)
}

// DetectionService polls the fleet-status source, classifies every site and
// creates or auto-resolves outage events.
type DetectionService struct {
	source    source.ISiteSource
	sites     repository.ISiteRepository
	events    repository.IEventRepository
	hub       *websocket.Hub
	publisher *mqtt.Publisher
	collector *metrics.Collector
	log       *logger.Logger
	threshold float64
}

func NewDetectionService(
	src source.ISiteSource,
	sites repository.ISiteRepository,
	events repository.IEventRepository,
	hub *websocket.Hub,
	publisher *mqtt.Publisher,
	collector *metrics.Collector,
	log *logger.Logger,
	outageThresholdPct float64,
) *DetectionService {
	return &DetectionService{
		source:    src,
		sites:     sites,
		events:    events,
		hub:       hub,
		publisher: publisher,
		collector: collector,
		log:       log,
		threshold: outageThresholdPct,
	}
}

// ScanAllSites runs one detection cycle over the full roster. A source
// failure aborts the whole cycle before any write so a down backend cannot
// raise false alerts. A failure on one site is logged and skipped; the rest
// of the roster still gets processed.
func (s *DetectionService) ScanAllSites(ctx context.Context) (*ScanSummary, error) {
	started := time.Now()

	records, err := s.source.FetchSites(ctx)
	if err != nil {
		s.collector.IncScanFailures()
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	summary := &ScanSummary{
		ScanID:    uuid.NewString(),
		StartedAt: started,
	}
	summary.TotalSites = len(records)

	for _, record := range records {
		if err := s.processSite(ctx, record, summary); err != nil {
			s.log.Error("Skipping site %s after processing error: %v", record.ID, err)
			summary.SiteErrors = append(summary.SiteErrors,
				fmt.Sprintf("%s: %v", record.ID, err))
		}
	}

	summary.DurationMS = time.Since(started).Milliseconds()

	s.collector.IncScanCycles()
	s.collector.AddSitesScanned(summary.TotalSites)

	s.hub.Broadcast(websocket.TypeScanSummary, summary)
	s.publisher.Publish("scans", summary)

	s.log.Info("Scan %s complete: %d sites (%d healthy, %d degraded, %d down), %d events created, %d resolved",
		summary.ScanID, summary.TotalSites, summary.HealthySites,
		summary.DegradedSites, summary.DownSites,
		summary.EventsCreated, summary.EventsResolved)

	return summary, nil
}

// processSite classifies one site, upserts its snapshot and reconciles its
// outage events. The dedup/auto-resolve decision is made against the site's
// own event set within this call.
func (s *DetectionService) processSite(ctx context.Context, record source.SiteRecord, summary *ScanSummary) error {
	pct := models.ComputeOutagePercentage(record.DeviceCount, record.DeviceOutageCount)
	status := models.ClassifySite(pct, s.threshold)

	site := &models.MonitoredSite{
		SiteID:            record.ID,
		Name:              record.Name,
		DeviceCount:       record.DeviceCount,
		DeviceOutageCount: record.DeviceOutageCount,
		OutagePercentage:  pct,
		Status:            status,
		ContactName:       record.Contact.Name,
		ContactPhone:      record.Contact.Phone,
		ContactEmail:      record.Contact.Email,
		Latitude:          record.Location.Lat,
		Longitude:         record.Location.Lon,
		Note:              record.Note,
		LastChecked:       time.Now(),
	}

	if err := s.sites.Upsert(ctx, site); err != nil {
		return err
	}

	switch status {
	case models.SiteDown:
		summary.DownSites++
		return s.ensureOutageEvent(ctx, site, models.EventSiteOutage, models.SeverityCritical, summary)
	case models.SiteDegraded:
		summary.DegradedSites++
		return s.ensureOutageEvent(ctx, site, models.EventSiteDegraded, models.SeverityHigh, summary)
	default:
		summary.HealthySites++
		return s.resolveOutageEvents(ctx, site, summary)
	}
}

// ensureOutageEvent creates a new outage-class event unless the site already
// has an active one. An already-active event is left untouched, including
// its severity: a degraded site crossing the down threshold neither raises
// a second event nor re-severitizes the existing one.
func (s *DetectionService) ensureOutageEvent(
	ctx context.Context,
	site *models.MonitoredSite,
	eventType models.EventType,
	severity models.EventSeverity,
	summary *ScanSummary,
) error {
	active, err := s.events.GetActiveOutageBySite(ctx, site.SiteID)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		s.log.Debug("Site %s already has an active %s event, skipping", site.SiteID, active[0].EventType)
		return nil
	}

	title := fmt.Sprintf("Site outage: %s", site.Name)
	if eventType == models.EventSiteDegraded {
		title = fmt.Sprintf("Site degraded: %s", site.Name)
	}
	description := fmt.Sprintf("%d of %d devices are down (%.1f%%)",
		site.DeviceOutageCount, site.DeviceCount, site.OutagePercentage)

	event := &models.AlertEvent{
		EventType:         eventType,
		Severity:          severity,
		Status:            models.EventActive,
		SiteID:            &site.SiteID,
		Title:             title,
		Description:       description,
		DeviceCount:       site.DeviceCount,
		DeviceOutageCount: site.DeviceOutageCount,
		OutagePercentage:  site.OutagePercentage,
	}

	if err := s.events.Create(ctx, event); err != nil {
		return err
	}

	summary.EventsCreated++
	summary.CreatedEvents = append(summary.CreatedEvents, *event)

	s.collector.IncEventsCreated()
	s.hub.Broadcast(websocket.TypeEventCreated, event)
	s.publisher.Publish("events/created", event)

	s.log.Warn("Created %s/%s event %d for site %s (%.1f%% down)",
		event.EventType, event.Severity, event.ID, site.SiteID, site.OutagePercentage)

	return nil
}

// resolveOutageEvents closes every active outage-class event for a site
// that reported healthy this cycle.
func (s *DetectionService) resolveOutageEvents(ctx context.Context, site *models.MonitoredSite, summary *ScanSummary) error {
	active, err := s.events.GetActiveOutageBySite(ctx, site.SiteID)
	if err != nil {
		return err
	}

	for _, event := range active {
		recovered := site.DeviceCount - site.DeviceOutageCount
		note := fmt.Sprintf("Site recovered: %d of %d devices back online", recovered, site.DeviceCount)

		if err := s.events.Resolve(ctx, event.ID, "system", &note, true); err != nil {
			return err
		}

		resolved, err := s.events.GetByID(ctx, event.ID)
		if err != nil {
			return err
		}

		summary.EventsResolved++
		summary.ResolvedEvents = append(summary.ResolvedEvents, *resolved)

		s.collector.IncEventsResolved()
		s.hub.Broadcast(websocket.TypeEventResolved, resolved)
		s.publisher.Publish("events/resolved", resolved)

		s.log.Info("Auto-resolved event %d for site %s", event.ID, site.SiteID)
	}

	return nil
}
