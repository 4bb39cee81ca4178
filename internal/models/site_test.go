package models

import "testing"

func TestComputeOutagePercentage(t *testing.T) {
	tests := []struct {
		name        string
		deviceCount int
		outageCount int
		want        float64
	}{
		{name: "no devices", deviceCount: 0, outageCount: 0, want: 0},
		{name: "no outages", deviceCount: 10, outageCount: 0, want: 0},
		{name: "half down", deviceCount: 10, outageCount: 5, want: 50},
		{name: "all down", deviceCount: 8, outageCount: 8, want: 100},
		{name: "fractional", deviceCount: 3, outageCount: 1, want: 100.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOutagePercentage(tt.deviceCount, tt.outageCount)
			if got != tt.want {
				t.Errorf("ComputeOutagePercentage(%d, %d) = %v, want %v",
					tt.deviceCount, tt.outageCount, got, tt.want)
			}
		})
	}
}

func TestClassifySite(t *testing.T) {
	const threshold = 95.0

	tests := []struct {
		name string
		pct  float64
		want SiteStatus
	}{
		{name: "zero", pct: 0, want: SiteHealthy},
		{name: "just under degraded band", pct: 49.9, want: SiteHealthy},
		{name: "degraded lower bound", pct: 50, want: SiteDegraded},
		{name: "just under threshold", pct: 94.2, want: SiteDegraded},
		{name: "exactly at threshold", pct: 95, want: SiteDown},
		{name: "above threshold", pct: 95.65, want: SiteDown},
		{name: "fully down", pct: 100, want: SiteDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySite(tt.pct, threshold)
			if got != tt.want {
				t.Errorf("ClassifySite(%v, %v) = %v, want %v", tt.pct, threshold, got, tt.want)
			}
		})
	}
}

func TestClassifySiteCustomThreshold(t *testing.T) {
	// 45/69 devices down is 65.2%: degraded at the default threshold but
	// down when the operator lowered the threshold to 60%.
	pct := ComputeOutagePercentage(69, 45)

	if got := ClassifySite(pct, 95); got != SiteDegraded {
		t.Errorf("ClassifySite(%v, 95) = %v, want degraded", pct, got)
	}
	if got := ClassifySite(pct, 60); got != SiteDown {
		t.Errorf("ClassifySite(%v, 60) = %v, want down", pct, got)
	}
}
