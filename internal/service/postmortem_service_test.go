package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"
)

func seedResolvedEvent(t *testing.T, events *fakeEventRepo) *models.AlertEvent {
	t.Helper()

	siteID := "site-14"
	event := &models.AlertEvent{
		EventType:         models.EventSiteOutage,
		Severity:          models.SeverityCritical,
		SiteID:            &siteID,
		Title:             "Site outage: Hilltop Relay",
		DeviceCount:       23,
		DeviceOutageCount: 22,
		OutagePercentage:  95.65,
	}
	require.NoError(t, events.Create(context.Background(), event))

	note := "acknowledged, dispatching crew"
	require.NoError(t, events.Acknowledge(context.Background(), event.ID, "kinyua", &note))
	require.NoError(t, events.Resolve(context.Background(), event.ID, "kinyua", nil, false))

	got, err := events.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	return got
}

func TestPostMortemCreate_DefaultsFromEvent(t *testing.T) {
	events := newFakeEventRepo()
	svc := NewPostMortemService(newFakePostMortemRepo(), events, newTestLogger())

	event := seedResolvedEvent(t, events)

	pm, err := svc.Create(context.Background(), PostMortemInput{
		AlertEventID: &event.ID,
		Author:       "kinyua",
	})

	require.NoError(t, err)
	assert.Equal(t, models.PostMortemDraft, pm.Status)
	assert.Equal(t, "Post-mortem: Site outage: Hilltop Relay", pm.Title)
	assert.Equal(t, models.SeverityCritical, pm.Severity)
	require.NotNil(t, pm.IncidentStart)
	assert.True(t, pm.IncidentStart.Equal(event.CreatedAt))
	assert.True(t, pm.DetectionTime.Equal(event.CreatedAt))
	require.NotNil(t, pm.ResponseTime)
	assert.True(t, pm.ResponseTime.Equal(*event.AcknowledgedAt))
	require.NotNil(t, pm.ResolutionTime)
	assert.True(t, pm.ResolutionTime.Equal(*event.ResolvedAt))
	require.NotNil(t, pm.IncidentEnd)
	require.NotNil(t, pm.DowntimeMinutes)
}

func TestPostMortemCreate_RejectsDuplicateForEvent(t *testing.T) {
	events := newFakeEventRepo()
	svc := NewPostMortemService(newFakePostMortemRepo(), events, newTestLogger())

	event := seedResolvedEvent(t, events)

	_, err := svc.Create(context.Background(), PostMortemInput{AlertEventID: &event.ID})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), PostMortemInput{AlertEventID: &event.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "already has post-mortem")
}

func TestPostMortemCreate_DanglingEventReferenceTolerated(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	missing := 404
	detected := time.Now()
	pm, err := svc.Create(context.Background(), PostMortemInput{
		AlertEventID:  &missing,
		Title:         "Write-up for a purged event",
		DetectionTime: &detected,
	})

	require.NoError(t, err)
	require.NotNil(t, pm.AlertEventID)
	assert.Equal(t, missing, *pm.AlertEventID)
}

func TestPostMortemCreate_StandaloneRequiresDetectionTime(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	_, err := svc.Create(context.Background(), PostMortemInput{
		Title: "Fiber cut on the ring road",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "detection_time")
}

func TestPostMortemCreate_StandaloneDefaultsSeverityMedium(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	detected := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	pm, err := svc.Create(context.Background(), PostMortemInput{
		Title:         "Fiber cut on the ring road",
		DetectionTime: &detected,
	})

	require.NoError(t, err)
	assert.Nil(t, pm.AlertEventID)
	assert.Equal(t, models.SeverityMedium, pm.Severity)
	assert.Nil(t, pm.DowntimeMinutes, "no incident boundaries yet")
}

func TestPostMortemUpdate_RecomputesDowntimeAndPromotesDraft(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	detected := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	pm, err := svc.Create(context.Background(), PostMortemInput{
		Title:         "Fiber cut on the ring road",
		DetectionTime: &detected,
	})
	require.NoError(t, err)

	start := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(2*time.Hour + 35*time.Minute)
	updated, err := svc.Update(context.Background(), pm.ID, PostMortemUpdate{
		IncidentStart: &start,
		IncidentEnd:   &end,
	})

	require.NoError(t, err)
	assert.Equal(t, models.PostMortemInProgress, updated.Status)
	require.NotNil(t, updated.DowntimeMinutes)
	assert.InDelta(t, 155.0, *updated.DowntimeMinutes, 0.001)
}

func TestPostMortemUpdate_ReviewedIsImmutable(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	detected := time.Now()
	pm, err := svc.Create(context.Background(), PostMortemInput{
		Title:         "Power failure at exchange",
		DetectionTime: &detected,
	})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), pm.ID, "ops-lead")
	require.NoError(t, err)

	title := "renamed"
	_, err = svc.Update(context.Background(), pm.ID, PostMortemUpdate{Title: &title})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Complete(context.Background(), pm.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPostMortemComplete_StampsTime(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	detected := time.Now()
	pm, err := svc.Create(context.Background(), PostMortemInput{
		Title:         "Power failure at exchange",
		DetectionTime: &detected,
	})
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), pm.ID)

	require.NoError(t, err)
	assert.Equal(t, models.PostMortemCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
}

func TestGenerateReport_DerivedMetrics(t *testing.T) {
	repo := newFakePostMortemRepo()
	svc := NewPostMortemService(repo, newFakeEventRepo(), newTestLogger())

	start := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	detected := start.Add(12 * time.Minute)
	responded := detected.Add(8 * time.Minute)
	resolved := start.Add(155 * time.Minute)

	pm, err := svc.Create(context.Background(), PostMortemInput{
		Title:          "Fiber cut on the ring road",
		IncidentStart:  &start,
		IncidentEnd:    &resolved,
		DetectionTime:  &detected,
		ResponseTime:   &responded,
		ResolutionTime: &resolved,
	})
	require.NoError(t, err)

	report, err := svc.GenerateReport(context.Background(), pm.ID)

	require.NoError(t, err)
	require.NotNil(t, report.MTTRMinutes)
	assert.InDelta(t, 155.0, *report.MTTRMinutes, 0.001)
	require.NotNil(t, report.DetectionDelayMinutes)
	assert.InDelta(t, 12.0, *report.DetectionDelayMinutes, 0.001)
	require.NotNil(t, report.ResponseDelayMinutes)
	assert.InDelta(t, 8.0, *report.ResponseDelayMinutes, 0.001)
	require.NotNil(t, report.TotalResolutionMinutes)
	assert.InDelta(t, 155.0, *report.TotalResolutionMinutes, 0.001)
}

func TestGenerateReport_MissingInputsLeaveNilMetrics(t *testing.T) {
	svc := NewPostMortemService(newFakePostMortemRepo(), newFakeEventRepo(), newTestLogger())

	detected := time.Now()
	pm, err := svc.Create(context.Background(), PostMortemInput{
		Title:         "Brief degradation, cause unknown",
		DetectionTime: &detected,
	})
	require.NoError(t, err)

	report, err := svc.GenerateReport(context.Background(), pm.ID)

	require.NoError(t, err)
	assert.Nil(t, report.MTTRMinutes)
	assert.Nil(t, report.DetectionDelayMinutes)
	assert.Nil(t, report.ResponseDelayMinutes)
	assert.Nil(t, report.TotalResolutionMinutes)
}
