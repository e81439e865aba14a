package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floatPtr(v float64) *float64 { return &v }

func setupTestData(t *testing.T) (*memory.SurpriseStore, *memory.PanelStore, *memory.EventWindowStore) {
	ctx := context.Background()

	surpriseStore := memory.NewSurpriseStore()
	panelStore := memory.NewPanelStore()
	eventStore := memory.NewEventWindowStore()

	surprises := []domain.SurpriseRecord{
		{
			InternalID:       10001,
			Ticker:           "ACME",
			FiscalPeriodEnd:  day(2011, 3, 31),
			AnnouncementDate: day(2011, 4, 18),
			Actual:           1.30,
			Consensus:        1.10,
			Surprise:         0.01,
			NumEstimates:     3,
			Basis:            domain.BasisDiluted,
		},
		{
			InternalID:       20002,
			Ticker:           "BOLT",
			FiscalPeriodEnd:  day(2011, 3, 31),
			AnnouncementDate: day(2011, 4, 21),
			Actual:           0.40,
			Consensus:        0.55,
			Surprise:         -0.005,
			NumEstimates:     2,
			Basis:            domain.BasisPrimary,
		},
	}
	if err := surpriseStore.InsertBulk(ctx, surprises); err != nil {
		t.Fatalf("InsertBulk surprises failed: %v", err)
	}

	panel := []domain.PanelRow{
		{InternalID: 10001, Date: day(2011, 4, 15), Ticker: "ACME", Return: 0.01, Close: 20, Sector: "45"},
		{InternalID: 10001, Date: day(2011, 4, 18), Ticker: "ACME", Return: 0.03, Close: 20.6, Sector: "45",
			Announcement: true, Surprise: floatPtr(0.01), MacroAnnDay: true},
		{InternalID: 20002, Date: day(2011, 4, 18), Ticker: "BOLT", Return: -0.01, Close: 8, Sector: "20",
			MacroAnnDay: true},
	}
	if err := panelStore.InsertBulk(ctx, panel); err != nil {
		t.Fatalf("InsertBulk panel failed: %v", err)
	}

	windows := []domain.EventWindowRow{
		{InternalID: 10001, EventDate: day(2011, 4, 18), Offset: -1, Date: day(2011, 4, 15), BHAR: 0},
		{InternalID: 10001, EventDate: day(2011, 4, 18), Offset: 0, Date: day(2011, 4, 18), BHAR: 0.01},
		{InternalID: 10001, EventDate: day(2011, 4, 18), Offset: 1, Date: day(2011, 4, 19), BHAR: 0.02},
		{InternalID: 10001, EventDate: day(2011, 4, 18), Offset: 2, Date: day(2011, 4, 20), BHAR: 0.04},
	}
	if err := eventStore.InsertBulk(ctx, windows); err != nil {
		t.Fatalf("InsertBulk windows failed: %v", err)
	}

	return surpriseStore, panelStore, eventStore
}

func TestGenerator_Generate(t *testing.T) {
	surpriseStore, panelStore, eventStore := setupTestData(t)

	gen := NewGenerator(surpriseStore, panelStore, eventStore).
		WithClock(func() time.Time { return day(2011, 12, 31) })

	report, err := gen.Generate(context.Background(), day(2011, 1, 1), day(2011, 12, 31))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.GeneratedAt != day(2011, 12, 31) {
		t.Errorf("GeneratedAt = %v, want injected clock value", report.GeneratedAt)
	}

	if report.PanelSummary.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", report.PanelSummary.TotalRows)
	}
	if report.PanelSummary.Entities != 2 {
		t.Errorf("Entities = %d, want 2", report.PanelSummary.Entities)
	}
	if report.PanelSummary.AnnouncementRows != 1 {
		t.Errorf("AnnouncementRows = %d, want 1", report.PanelSummary.AnnouncementRows)
	}
	if report.PanelSummary.MacroDays != 1 {
		t.Errorf("MacroDays = %d, want 1 (two rows share the date)", report.PanelSummary.MacroDays)
	}
	if report.PanelSummary.DateRangeStart != day(2011, 4, 15) || report.PanelSummary.DateRangeEnd != day(2011, 4, 18) {
		t.Errorf("date range = [%v, %v], want [2011-04-15, 2011-04-18]",
			report.PanelSummary.DateRangeStart, report.PanelSummary.DateRangeEnd)
	}

	if len(report.Surprises) != 2 {
		t.Fatalf("Surprises = %d, want 2", len(report.Surprises))
	}
	if report.Surprises[0].InternalID != 10001 || report.Surprises[1].InternalID != 20002 {
		t.Errorf("surprises not sorted by internal_id: %+v", report.Surprises)
	}

	if len(report.EventCoverage) != 1 {
		t.Fatalf("EventCoverage = %d, want 1", len(report.EventCoverage))
	}
	cov := report.EventCoverage[0]
	if cov.WindowRows != 4 {
		t.Errorf("WindowRows = %d, want 4", cov.WindowRows)
	}
	wantMean := (0.02 + 0.04) / 2 // positive offsets only
	if diff := cov.MeanBHAR - wantMean; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("MeanBHAR = %v, want %v", cov.MeanBHAR, wantMean)
	}
}

func TestRenderMarkdown(t *testing.T) {
	surpriseStore, panelStore, eventStore := setupTestData(t)

	gen := NewGenerator(surpriseStore, panelStore, eventStore).
		WithClock(func() time.Time { return day(2011, 12, 31) })

	report, err := gen.Generate(context.Background(), day(2011, 1, 1), day(2011, 12, 31))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Panel Run Report",
		"| Total Rows | 3 |",
		"| ACME |",
		"## Event Windows",
		"2011-04-18",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderSurpriseCSV(t *testing.T) {
	rows := []SurpriseRow{
		{
			InternalID:       10001,
			Ticker:           "ACME",
			FiscalPeriodEnd:  day(2011, 3, 31),
			AnnouncementDate: day(2011, 4, 18),
			Actual:           1.30,
			Consensus:        1.10,
			Surprise:         0.01,
			NumEstimates:     3,
			Basis:            domain.BasisDiluted,
		},
	}

	csv := RenderSurpriseCSV(rows)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "internal_id,ticker,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "10001,ACME,2011-03-31,2011-04-18,1.300000,1.100000,0.010000,3,D") {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestRenderPanelCSV_NullableFields(t *testing.T) {
	rows := []domain.PanelRow{
		{InternalID: 10001, Date: day(2011, 4, 15), Ticker: "ACME", Return: 0.01, Close: 20, Sector: "45"},
	}

	csv := RenderPanelCSV(rows)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}

	header := strings.Split(lines[0], ",")
	row := strings.Split(lines[1], ",")
	if len(header) != len(row) {
		t.Fatalf("header has %d columns, row has %d", len(header), len(row))
	}

	// Nil mean_sentiment renders as an empty cell.
	col := -1
	for i, name := range header {
		if name == "mean_sentiment" {
			col = i
		}
	}
	if col == -1 {
		t.Fatal("mean_sentiment column missing from header")
	}
	if row[col] != "" {
		t.Errorf("mean_sentiment = %q, want empty cell", row[col])
	}
}

func TestRenderEventWindowCSV(t *testing.T) {
	rows := []domain.EventWindowRow{
		{
			InternalID:   10001,
			EventDate:    day(2011, 4, 18),
			Offset:       -1,
			Date:         day(2011, 4, 15),
			Return:       0.01,
			Benchmark:    0.002,
			Surprise:     0.01,
			SizeQuintile: -1,
			Sector:       "45",
		},
	}

	csv := RenderEventWindowCSV(rows)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "10001,2011-04-18,-1,2011-04-15,") {
		t.Errorf("unexpected row: %s", lines[1])
	}
	if !strings.HasSuffix(lines[1], ",-1,45") {
		t.Errorf("expected missing size quintile as -1: %s", lines[1])
	}
}
