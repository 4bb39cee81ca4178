package service

import (
	"fmt"
	"strings"
	"time"

	"SiteMonitorAPI/internal/models"
)

// Message shapes are derived purely from a (site snapshot, event) pair. The
// site may be nil for custom events that reference no site.

// BuildCompleteMessage renders the full incident detail used for first
// notification of a new outage: counts, contact info and the site note
// (access instructions, backup node).
func BuildCompleteMessage(site *models.MonitoredSite, event *models.AlertEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 %s [%s]\n", event.Title, strings.ToUpper(string(event.Severity)))
	fmt.Fprintf(&b, "Detected: %s\n\n", event.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if site != nil {
		fmt.Fprintf(&b, "Site: %s (%s)\n", site.Name, site.SiteID)
		fmt.Fprintf(&b, "Devices down: %d of %d (%.1f%%)\n",
			site.DeviceOutageCount, site.DeviceCount, site.OutagePercentage)
		if site.ContactName != "" || site.ContactPhone != "" || site.ContactEmail != "" {
			fmt.Fprintf(&b, "\nOn-site contact: %s\n", site.ContactName)
			if site.ContactPhone != "" {
				fmt.Fprintf(&b, "Phone: %s\n", site.ContactPhone)
			}
			if site.ContactEmail != "" {
				fmt.Fprintf(&b, "Email: %s\n", site.ContactEmail)
			}
		}
		if site.Latitude != nil && site.Longitude != nil {
			fmt.Fprintf(&b, "Location: %.5f, %.5f\n", *site.Latitude, *site.Longitude)
		}
		if site.Note != "" {
			fmt.Fprintf(&b, "\nAccess notes: %s\n", site.Note)
		}
	} else {
		fmt.Fprintf(&b, "Devices down: %d of %d (%.1f%%)\n",
			event.DeviceOutageCount, event.DeviceCount, event.OutagePercentage)
	}

	if event.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", event.Description)
	}

	return b.String()
}

// BuildSummaryMessage renders the terse one-paragraph shape.
func BuildSummaryMessage(site *models.MonitoredSite, event *models.AlertEvent) string {
	name := siteLabel(site, event)
	return fmt.Sprintf("%s: %s — %d of %d devices down (%.1f%%). Detected %s.",
		strings.ToUpper(string(event.Severity)),
		name,
		event.DeviceOutageCount,
		event.DeviceCount,
		event.OutagePercentage,
		event.CreatedAt.Format("15:04 MST"),
	)
}

// BuildRecoveryMessage renders the closure shape with the computed downtime
// between event creation and resolution.
func BuildRecoveryMessage(site *models.MonitoredSite, event *models.AlertEvent) string {
	name := siteLabel(site, event)

	resolvedAt := time.Now()
	if event.ResolvedAt != nil {
		resolvedAt = *event.ResolvedAt
	}
	downtime := resolvedAt.Sub(event.CreatedAt)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ RECOVERED: %s\n", name)
	fmt.Fprintf(&b, "Total downtime: %s\n", formatDowntime(downtime))
	fmt.Fprintf(&b, "Resolved: %s", resolvedAt.Format("2006-01-02 15:04:05 MST"))
	if event.ResolvedNote != nil && *event.ResolvedNote != "" {
		fmt.Fprintf(&b, "\n%s", *event.ResolvedNote)
	}
	return b.String()
}

func siteLabel(site *models.MonitoredSite, event *models.AlertEvent) string {
	if site != nil {
		return site.Name
	}
	if event.SiteID != nil {
		return *event.SiteID
	}
	return event.Title
}

func formatDowntime(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
