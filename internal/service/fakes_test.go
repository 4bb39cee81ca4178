package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/channel"
	"SiteMonitorAPI/internal/logger"
	"SiteMonitorAPI/internal/models"
	"SiteMonitorAPI/internal/source"
)

func newTestLogger() *logger.Logger {
	log, _ := logger.New(logger.Config{Level: logger.ERROR, UseColors: false})
	return log
}

// fakeSource returns a fixed roster or a configured error.
type fakeSource struct {
	records []source.SiteRecord
	err     error
	calls   int
}

func (f *fakeSource) FetchSites(ctx context.Context) ([]source.SiteRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, fmt.Errorf("fetch failed: %w", f.err)
	}
	return f.records, nil
}

// fakeSiteRepo keeps snapshots in a map keyed by external site id.
type fakeSiteRepo struct {
	mu        sync.Mutex
	sites     map[string]*models.MonitoredSite
	nextID    int
	upsertErr map[string]error
}

func newFakeSiteRepo() *fakeSiteRepo {
	return &fakeSiteRepo{
		sites:     make(map[string]*models.MonitoredSite),
		upsertErr: make(map[string]error),
	}
}

func (f *fakeSiteRepo) Upsert(ctx context.Context, site *models.MonitoredSite) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.upsertErr[site.SiteID]; err != nil {
		return err
	}

	if existing, ok := f.sites[site.SiteID]; ok {
		site.ID = existing.ID
	} else {
		f.nextID++
		site.ID = f.nextID
	}
	copied := *site
	f.sites[site.SiteID] = &copied
	return nil
}

func (f *fakeSiteRepo) GetBySiteID(ctx context.Context, siteID string) (*models.MonitoredSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	site, ok := f.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
	}
	copied := *site
	return &copied, nil
}

func (f *fakeSiteRepo) GetAll(ctx context.Context) ([]models.MonitoredSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.MonitoredSite
	for _, s := range f.sites {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSiteRepo) GetByStatus(ctx context.Context, statuses ...models.SiteStatus) ([]models.MonitoredSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.MonitoredSite
	for _, s := range f.sites {
		for _, status := range statuses {
			if s.Status == status {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

// fakeEventRepo keeps events in insertion order.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.AlertEvent
	nextID int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	event.ID = f.nextID
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Status == "" {
		event.Status = models.EventActive
	}
	copied := *event
	f.events = append(f.events, &copied)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.AlertEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.AlertEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.AlertEvent
	for _, e := range f.events {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && e.Severity != filter.Severity {
			continue
		}
		if filter.Type != "" && e.EventType != filter.Type {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEventRepo) GetActive(ctx context.Context) ([]models.AlertEvent, error) {
	return f.List(ctx, models.EventFilter{Status: models.EventActive})
}

func (f *fakeEventRepo) GetActiveOutageBySite(ctx context.Context, siteID string) ([]models.AlertEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.AlertEvent
	for _, e := range f.events {
		if e.Status != models.EventActive || !e.EventType.IsOutageClass() {
			continue
		}
		if e.SiteID != nil && *e.SiteID == siteID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Acknowledge(ctx context.Context, id int, actor string, note *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.ID == id {
			now := time.Now()
			e.Status = models.EventAcknowledged
			e.AcknowledgedBy = &actor
			e.AcknowledgedAt = &now
			e.AcknowledgedNote = note
			e.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeEventRepo) Resolve(ctx context.Context, id int, actor string, note *string, auto bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.ID == id {
			now := time.Now()
			e.Status = models.EventResolved
			e.ResolvedBy = &actor
			e.ResolvedAt = &now
			e.ResolvedNote = note
			e.AutoResolved = auto
			e.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeEventRepo) Ignore(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.ID == id {
			e.Status = models.EventIgnored
			e.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeEventRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, e := range f.events {
		if e.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
}

// fakeNotificationRepo keeps delivery records in insertion order.
type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []*models.AlertNotification
	nextID  int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.AlertNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	if n.Status == "" {
		n.Status = models.NotificationPending
	}
	copied := *n
	f.records = append(f.records, &copied)
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id int) (*models.AlertNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.records {
		if n.ID == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeNotificationRepo) MarkSent(ctx context.Context, id int, providerMessageID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.records {
		if n.ID == id {
			now := time.Now()
			n.Status = models.NotificationSent
			n.SentAt = &now
			n.ProviderMessageID = providerMessageID
			n.ErrorMessage = nil
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeNotificationRepo) MarkFailed(ctx context.Context, id int, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.records {
		if n.ID == id {
			now := time.Now()
			n.Status = models.NotificationFailed
			n.FailedAt = &now
			n.ErrorMessage = &errorMessage
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeNotificationRepo) IncrementRetry(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.records {
		if n.ID == id {
			n.RetryCount++
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeNotificationRepo) ListByEvent(ctx context.Context, eventID int) ([]models.AlertNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.AlertNotification
	for _, n := range f.records {
		if n.AlertEventID == eventID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.AlertNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.AlertNotification
	for _, n := range f.records {
		if n.Status == status {
			out = append(out, *n)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakePostMortemRepo keeps write-ups in a map.
type fakePostMortemRepo struct {
	mu     sync.Mutex
	pms    map[int]*models.PostMortem
	nextID int
}

func newFakePostMortemRepo() *fakePostMortemRepo {
	return &fakePostMortemRepo{pms: make(map[int]*models.PostMortem)}
}

func (f *fakePostMortemRepo) Create(ctx context.Context, pm *models.PostMortem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	pm.ID = f.nextID
	now := time.Now()
	pm.CreatedAt = now
	pm.UpdatedAt = now
	if pm.Status == "" {
		pm.Status = models.PostMortemDraft
	}
	copied := *pm
	f.pms[pm.ID] = &copied
	return nil
}

func (f *fakePostMortemRepo) GetByID(ctx context.Context, id int) (*models.PostMortem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pm, ok := f.pms[id]
	if !ok {
		return nil, fmt.Errorf("post-mortem %d: %w", id, apperrors.ErrNotFound)
	}
	copied := *pm
	return &copied, nil
}

func (f *fakePostMortemRepo) GetByEventID(ctx context.Context, eventID int) (*models.PostMortem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pm := range f.pms {
		if pm.AlertEventID != nil && *pm.AlertEventID == eventID {
			copied := *pm
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePostMortemRepo) Update(ctx context.Context, pm *models.PostMortem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.pms[pm.ID]; !ok {
		return fmt.Errorf("post-mortem %d: %w", pm.ID, apperrors.ErrNotFound)
	}
	pm.UpdatedAt = time.Now()
	copied := *pm
	f.pms[pm.ID] = &copied
	return nil
}

func (f *fakePostMortemRepo) List(ctx context.Context, limit int) ([]models.PostMortem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.PostMortem
	for _, pm := range f.pms {
		out = append(out, *pm)
	}
	return out, nil
}

func (f *fakePostMortemRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.pms[id]; !ok {
		return fmt.Errorf("post-mortem %d: %w", id, apperrors.ErrNotFound)
	}
	delete(f.pms, id)
	return nil
}

// fakeChannel records sends and returns a scripted result.
type fakeChannel struct {
	name   models.NotificationChannel
	result channel.Result

	mu   sync.Mutex
	sent []string
}

func (f *fakeChannel) Name() models.NotificationChannel {
	return f.name
}

func (f *fakeChannel) Send(ctx context.Context, recipient, message string) channel.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recipient)
	return f.result
}

func (f *fakeChannel) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
