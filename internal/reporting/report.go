package reporting

import "time"

// Report summarizes one pipeline run from stored data.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Panel coverage
	PanelSummary PanelSummary

	// Announcement outcomes (sorted by internal_id, announcement_date)
	Surprises []SurpriseRow

	// Event-window coverage per announcement
	EventCoverage []EventCoverageRow
}

// PanelSummary describes the assembled firm-day panel.
type PanelSummary struct {
	TotalRows        int
	Entities         int
	AnnouncementRows int
	MacroDays        int
	DateRangeStart   time.Time
	DateRangeEnd     time.Time
}

// SurpriseRow is one reconciled announcement in the report.
type SurpriseRow struct {
	InternalID       int64
	Ticker           string
	FiscalPeriodEnd  time.Time
	AnnouncementDate time.Time
	Actual           float64
	Consensus        float64
	Surprise         float64
	NumEstimates     int
	Basis            string
}

// EventCoverageRow counts the window rows extracted per announcement.
type EventCoverageRow struct {
	InternalID int64
	EventDate  time.Time
	WindowRows int
	MeanBHAR   float64 // mean BHAR over the window's post-announcement rows
}
