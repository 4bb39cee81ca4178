package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SiteMonitorAPI/internal/models"
)

func messageFixtures() (*models.MonitoredSite, *models.AlertEvent) {
	lat, lon := -1.28333, 36.81667
	site := &models.MonitoredSite{
		SiteID:            "site-14",
		Name:              "Hilltop Relay",
		Status:            models.SiteDown,
		DeviceCount:       23,
		DeviceOutageCount: 22,
		OutagePercentage:  95.65,
		ContactName:       "J. Wanjiru",
		ContactPhone:      "+254700000001",
		ContactEmail:      "wanjiru@example.com",
		Latitude:          &lat,
		Longitude:         &lon,
		Note:              "Gate key with the caretaker; backup node on the water tower.",
	}

	siteID := site.SiteID
	event := &models.AlertEvent{
		ID:                42,
		EventType:         models.EventSiteOutage,
		Severity:          models.SeverityCritical,
		Status:            models.EventActive,
		SiteID:            &siteID,
		Title:             "Site outage: Hilltop Relay",
		DeviceCount:       23,
		DeviceOutageCount: 22,
		OutagePercentage:  95.65,
		CreatedAt:         time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
	}
	return site, event
}

func TestBuildCompleteMessage_IncludesContactAndAccessNotes(t *testing.T) {
	site, event := messageFixtures()

	msg := BuildCompleteMessage(site, event)

	assert.Contains(t, msg, "Site outage: Hilltop Relay")
	assert.Contains(t, msg, "CRITICAL")
	assert.Contains(t, msg, "Hilltop Relay (site-14)")
	assert.Contains(t, msg, "22 of 23")
	assert.Contains(t, msg, "J. Wanjiru")
	assert.Contains(t, msg, "+254700000001")
	assert.Contains(t, msg, "backup node on the water tower")
	assert.Contains(t, msg, "-1.28333, 36.81667")
}

func TestBuildCompleteMessage_NoSiteFallsBackToEventCounts(t *testing.T) {
	_, event := messageFixtures()

	msg := BuildCompleteMessage(nil, event)

	assert.Contains(t, msg, "22 of 23")
	assert.NotContains(t, msg, "On-site contact")
}

func TestBuildSummaryMessage_IsOneLine(t *testing.T) {
	site, event := messageFixtures()

	msg := BuildSummaryMessage(site, event)

	assert.Equal(t, 1, len(strings.Split(msg, "\n")))
	assert.Contains(t, msg, "CRITICAL")
	assert.Contains(t, msg, "Hilltop Relay")
	assert.Contains(t, msg, "22 of 23 devices down")
}

func TestBuildRecoveryMessage_ReportsDowntime(t *testing.T) {
	site, event := messageFixtures()
	resolved := event.CreatedAt.Add(2*time.Hour + 35*time.Minute)
	event.Status = models.EventResolved
	event.ResolvedAt = &resolved
	note := "Site recovered: 23 of 23 devices back online"
	event.ResolvedNote = &note

	msg := BuildRecoveryMessage(site, event)

	assert.Contains(t, msg, "RECOVERED: Hilltop Relay")
	assert.Contains(t, msg, "2h 35m")
	assert.Contains(t, msg, "23 of 23 devices back online")
}

func TestFormatDowntime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{35 * time.Minute, "35m"},
		{2*time.Hour + 35*time.Minute, "2h 35m"},
		{90 * time.Second, "2m"},
		{0, "0m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDowntime(tt.d), "for %s", tt.d)
	}
}
