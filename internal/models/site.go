package models

import "time"

// SiteStatus is the health classification derived from a site's outage percentage.
type SiteStatus string

const (
	SiteHealthy  SiteStatus = "healthy"
	SiteDegraded SiteStatus = "degraded"
	SiteDown     SiteStatus = "down"
)

// MonitoredSite is the persisted snapshot of a site as of the last scan cycle.
// Rows are keyed by the external SiteID and upserted every cycle; they are
// never deleted automatically.
type MonitoredSite struct {
	ID                int        `json:"id" db:"id"`
	SiteID            string     `json:"site_id" db:"site_id"`
	Name              string     `json:"name" db:"name"`
	DeviceCount       int        `json:"device_count" db:"device_count"`
	DeviceOutageCount int        `json:"device_outage_count" db:"device_outage_count"`
	OutagePercentage  float64    `json:"outage_percentage" db:"outage_percentage"`
	Status            SiteStatus `json:"status" db:"status"`
	ContactName       string     `json:"contact_name" db:"contact_name"`
	ContactPhone      string     `json:"contact_phone" db:"contact_phone"`
	ContactEmail      string     `json:"contact_email" db:"contact_email"`
	Latitude          *float64   `json:"latitude" db:"latitude"`
	Longitude         *float64   `json:"longitude" db:"longitude"`
	Note              string     `json:"note" db:"note"`
	LastChecked       time.Time  `json:"last_checked" db:"last_checked"`
}

// ComputeOutagePercentage returns outage/total*100, or 0 for sites with no
// devices.
func ComputeOutagePercentage(deviceCount, outageCount int) float64 {
	if deviceCount == 0 {
		return 0
	}
	return float64(outageCount) / float64(deviceCount) * 100
}

// ClassifySite maps an outage percentage onto a SiteStatus given the
// configured down threshold. Degraded starts at 50%.
func ClassifySite(outagePercentage, downThreshold float64) SiteStatus {
	switch {
	case outagePercentage >= downThreshold:
		return SiteDown
	case outagePercentage >= DegradedThresholdPercent:
		return SiteDegraded
	default:
		return SiteHealthy
	}
}

// DegradedThresholdPercent is the fixed lower bound of the degraded band.
const DegradedThresholdPercent = 50.0
