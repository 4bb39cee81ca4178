// Package report renders post-mortem reports for export.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"SiteMonitorAPI/internal/models"
)

const timeLayout = "2006-01-02 15:04 MST"

// WritePDF renders the report as an A4 PDF document onto w.
func WritePDF(w io.Writer, r *models.PostMortemReport) error {
	pm := r.PostMortem

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(pm.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, pm.Title, "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s    Severity: %s    Author: %s",
		pm.Status, pm.Severity, orDash(pm.Author)), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	writeSection(pdf, "Summary", orDash(pm.Summary))
	writeSection(pdf, "Root Cause", orDash(pm.RootCause))
	writeSection(pdf, "Impact", orDash(pm.Impact))

	writeHeading(pdf, "Incident Metrics")
	writeMetric(pdf, "Incident start", formatTimePtr(pm.IncidentStart))
	writeMetric(pdf, "Incident end", formatTimePtr(pm.IncidentEnd))
	writeMetric(pdf, "Detected at", pm.DetectionTime.Format(timeLayout))
	writeMetric(pdf, "Responded at", formatTimePtr(pm.ResponseTime))
	writeMetric(pdf, "Resolved at", formatTimePtr(pm.ResolutionTime))
	writeMetric(pdf, "Downtime", formatMinutes(pm.DowntimeMinutes))
	writeMetric(pdf, "MTTR", formatMinutes(r.MTTRMinutes))
	writeMetric(pdf, "Detection delay", formatMinutes(r.DetectionDelayMinutes))
	writeMetric(pdf, "Response delay", formatMinutes(r.ResponseDelayMinutes))
	writeMetric(pdf, "Total resolution", formatMinutes(r.TotalResolutionMinutes))
	pdf.Ln(4)

	if len(pm.Timeline) > 0 {
		writeHeading(pdf, "Timeline")
		for _, entry := range pm.Timeline {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(45, 6, entry.Timestamp.Format(timeLayout), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 6, entry.Description, "", "L", false)
		}
		pdf.Ln(4)
	}

	if len(pm.ActionItems) > 0 {
		writeHeading(pdf, "Action Items")
		for _, item := range pm.ActionItems {
			marker := "[ ]"
			if item.Done {
				marker = "[x]"
			}
			line := fmt.Sprintf("%s %s", marker, item.Description)
			if item.Owner != "" {
				line += " - " + item.Owner
			}
			if item.DueDate != nil {
				line += " (due " + item.DueDate.Format("2006-01-02") + ")"
			}
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 6, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	if len(pm.Preventive) > 0 {
		writeSection(pdf, "Preventive Actions", "- "+strings.Join(pm.Preventive, "\n- "))
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Generated "+time.Now().Format(timeLayout), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func writeHeading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func writeSection(pdf *gofpdf.Fpdf, title, body string) {
	writeHeading(pdf, title)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(4)
}

func writeMetric(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}

func formatMinutes(m *float64) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f min", *m)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
