package models

import (
	"testing"
	"time"
)

func TestRecomputeDowntime(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(155 * time.Minute)

	pm := &PostMortem{IncidentStart: &start, IncidentEnd: &end}
	pm.RecomputeDowntime()

	if pm.DowntimeMinutes == nil {
		t.Fatal("DowntimeMinutes is nil, want 155")
	}
	if *pm.DowntimeMinutes != 155 {
		t.Errorf("DowntimeMinutes = %v, want 155", *pm.DowntimeMinutes)
	}
}

func TestRecomputeDowntimeClearsOnMissingBoundary(t *testing.T) {
	start := time.Now()
	old := 42.0

	pm := &PostMortem{IncidentStart: &start, DowntimeMinutes: &old}
	pm.RecomputeDowntime()

	if pm.DowntimeMinutes != nil {
		t.Errorf("DowntimeMinutes = %v, want nil when incident_end is missing", *pm.DowntimeMinutes)
	}
}
