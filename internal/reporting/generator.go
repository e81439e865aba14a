package reporting

import (
	"context"
	"sort"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// Generator produces run reports from stored data.
type Generator struct {
	surpriseStore storage.SurpriseStore
	panelStore    storage.PanelStore
	eventStore    storage.EventWindowStore
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	surpriseStore storage.SurpriseStore,
	panelStore storage.PanelStore,
	eventStore storage.EventWindowStore,
) *Generator {
	return &Generator{
		surpriseStore: surpriseStore,
		panelStore:    panelStore,
		eventStore:    eventStore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a run report covering the [start, end] sample window.
func (g *Generator) Generate(ctx context.Context, start, end time.Time) (*Report, error) {
	panel, err := g.panelStore.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	surprises, err := g.surpriseStore.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	windows, err := g.eventStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:   g.now(),
		PanelSummary:  summarizePanel(panel),
		Surprises:     SurpriseRows(surprises),
		EventCoverage: eventCoverage(windows),
	}, nil
}

func summarizePanel(rows []domain.PanelRow) PanelSummary {
	s := PanelSummary{TotalRows: len(rows)}

	entities := make(map[int64]struct{})
	macroDays := make(map[time.Time]struct{})
	for _, r := range rows {
		entities[r.InternalID] = struct{}{}
		if r.Announcement {
			s.AnnouncementRows++
		}
		if r.MacroAnnDay {
			macroDays[r.Date] = struct{}{}
		}
		if s.DateRangeStart.IsZero() || r.Date.Before(s.DateRangeStart) {
			s.DateRangeStart = r.Date
		}
		if r.Date.After(s.DateRangeEnd) {
			s.DateRangeEnd = r.Date
		}
	}
	s.Entities = len(entities)
	s.MacroDays = len(macroDays)

	return s
}

// SurpriseRows converts reconciled surprise records into report rows,
// sorted by entity then announcement date.
func SurpriseRows(records []domain.SurpriseRecord) []SurpriseRow {
	rows := make([]SurpriseRow, len(records))
	for i, r := range records {
		rows[i] = SurpriseRow{
			InternalID:       r.InternalID,
			Ticker:           r.Ticker,
			FiscalPeriodEnd:  r.FiscalPeriodEnd,
			AnnouncementDate: r.AnnouncementDate,
			Actual:           r.Actual,
			Consensus:        r.Consensus,
			Surprise:         r.Surprise,
			NumEstimates:     r.NumEstimates,
			Basis:            r.Basis,
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].InternalID != rows[j].InternalID {
			return rows[i].InternalID < rows[j].InternalID
		}
		return rows[i].AnnouncementDate.Before(rows[j].AnnouncementDate)
	})

	return rows
}

// eventCoverage folds window rows into one coverage row per announcement.
// MeanBHAR averages over the post-announcement offsets only.
func eventCoverage(windows []domain.EventWindowRow) []EventCoverageRow {
	type key struct {
		internalID int64
		eventDate  time.Time
	}

	type acc struct {
		rows    int
		bharSum float64
		bharN   int
	}

	byEvent := make(map[key]*acc)
	for _, w := range windows {
		k := key{w.InternalID, w.EventDate}
		a, ok := byEvent[k]
		if !ok {
			a = &acc{}
			byEvent[k] = a
		}
		a.rows++
		if w.Offset > 0 {
			a.bharSum += w.BHAR
			a.bharN++
		}
	}

	rows := make([]EventCoverageRow, 0, len(byEvent))
	for k, a := range byEvent {
		row := EventCoverageRow{
			InternalID: k.internalID,
			EventDate:  k.eventDate,
			WindowRows: a.rows,
		}
		if a.bharN > 0 {
			row.MeanBHAR = a.bharSum / float64(a.bharN)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].InternalID != rows[j].InternalID {
			return rows[i].InternalID < rows[j].InternalID
		}
		return rows[i].EventDate.Before(rows[j].EventDate)
	})

	return rows
}
