package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Panel Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Panel Summary
	sb.WriteString("## Panel Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Rows | %d |\n", r.PanelSummary.TotalRows))
	sb.WriteString(fmt.Sprintf("| Entities | %d |\n", r.PanelSummary.Entities))
	sb.WriteString(fmt.Sprintf("| Announcement Rows | %d |\n", r.PanelSummary.AnnouncementRows))
	sb.WriteString(fmt.Sprintf("| Macro Days | %d |\n", r.PanelSummary.MacroDays))
	if !r.PanelSummary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", r.PanelSummary.DateRangeStart.Format(dateLayout)))
		sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", r.PanelSummary.DateRangeEnd.Format(dateLayout)))
	}
	sb.WriteString("\n")

	// Surprises
	sb.WriteString("## Earnings Surprises\n\n")
	if len(r.Surprises) > 0 {
		sb.WriteString("| Entity | Ticker | Period End | Announced | Actual | Consensus | Surprise | Estimates | Basis |\n")
		sb.WriteString("|--------|--------|------------|-----------|--------|-----------|----------|-----------|-------|\n")
		for _, s := range r.Surprises {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.4f | %.4f | %.6f | %d | %s |\n",
				s.InternalID, s.Ticker,
				s.FiscalPeriodEnd.Format(dateLayout), s.AnnouncementDate.Format(dateLayout),
				s.Actual, s.Consensus, s.Surprise, s.NumEstimates, s.Basis))
		}
	} else {
		sb.WriteString("No surprises reconciled.\n")
	}
	sb.WriteString("\n")

	// Event Coverage
	sb.WriteString("## Event Windows\n\n")
	if len(r.EventCoverage) > 0 {
		sb.WriteString("| Entity | Event Date | Window Rows | Mean BHAR |\n")
		sb.WriteString("|--------|------------|-------------|----------|\n")
		for _, e := range r.EventCoverage {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %.6f |\n",
				e.InternalID, e.EventDate.Format(dateLayout), e.WindowRows, e.MeanBHAR))
		}
	} else {
		sb.WriteString("No event windows extracted.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
