package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteMonitorAPI/internal/models"
)

func TestWritePDF(t *testing.T) {
	start := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(155 * time.Minute)
	downtime := 155.0
	due := start.AddDate(0, 0, 14)

	report := &models.PostMortemReport{
		PostMortem: models.PostMortem{
			ID:              7,
			Status:          models.PostMortemCompleted,
			Title:           "Fiber cut on the ring road",
			Summary:         "Backhoe severed the primary fiber during road works.",
			RootCause:       "No utility locate was requested before digging.",
			Impact:          "22 of 23 devices at Hilltop Relay offline for ~2.5 hours.",
			Severity:        models.SeverityCritical,
			IncidentStart:   &start,
			IncidentEnd:     &end,
			DetectionTime:   start.Add(12 * time.Minute),
			DowntimeMinutes: &downtime,
			Timeline: []models.TimelineEntry{
				{Timestamp: start.Add(12 * time.Minute), Description: "Outage alert fired"},
				{Timestamp: end, Description: "Splice completed, devices back online"},
			},
			ActionItems: []models.ActionItem{
				{Description: "Map secondary fiber route", Owner: "netops", DueDate: &due},
				{Description: "Subscribe to road-works notifications", Done: true},
			},
			Preventive: []string{"Add path diversity for the ring road segment"},
			Author:     "kinyua",
		},
		MTTRMinutes: &downtime,
	}

	var buf bytes.Buffer
	err := WritePDF(&buf, report)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output starts with the PDF magic")
	assert.Greater(t, buf.Len(), 1000)
}

func TestWritePDF_MinimalRecord(t *testing.T) {
	report := &models.PostMortemReport{
		PostMortem: models.PostMortem{
			Status:        models.PostMortemDraft,
			Title:         "Brief degradation, cause unknown",
			Severity:      models.SeverityMedium,
			DetectionTime: time.Now(),
		},
	}

	var buf bytes.Buffer
	err := WritePDF(&buf, report)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
