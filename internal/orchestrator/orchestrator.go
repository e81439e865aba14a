// Package orchestrator provides end-to-end pipeline orchestration.
// It coordinates: news aggregation → surprise reconciliation → panel
// assembly → event-window extraction, persisting each stage's output.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/calendar"
	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/events"
	"equity-panel-lab/internal/linkage"
	"equity-panel-lab/internal/newsagg"
	"equity-panel-lab/internal/panel"
	"equity-panel-lab/internal/storage"
	"equity-panel-lab/internal/surprise"
)

// Orchestrator coordinates the pipeline stages.
type Orchestrator struct {
	// Stores
	tradingDayStore     storage.TradingDayStore
	linkStore           storage.LinkStore
	estimateStore       storage.EstimateStore
	actualStore         storage.ActualStore
	surpriseStore       storage.SurpriseStore
	wireDailyStore      storage.WireDailyStore
	analyticsDailyStore storage.AnalyticsDailyStore
	panelStore          storage.PanelStore
	eventWindowStore    storage.EventWindowStore

	// Sample window and stage parameters
	sampleEnd    time.Time
	maxLinkScore int
	language     string
	minRelevance int
	countryCode  string
	preDays      int
	postDays     int

	log zerolog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	TradingDayStore     storage.TradingDayStore
	LinkStore           storage.LinkStore
	EstimateStore       storage.EstimateStore
	ActualStore         storage.ActualStore
	SurpriseStore       storage.SurpriseStore
	WireDailyStore      storage.WireDailyStore
	AnalyticsDailyStore storage.AnalyticsDailyStore
	PanelStore          storage.PanelStore
	EventWindowStore    storage.EventWindowStore

	// Sample window. Open-ended link validity windows resolve to
	// SampleEnd.
	SampleEnd time.Time

	// Stage parameters. Zero values take the defaults below.
	MaxLinkScore int
	Language     string
	MinRelevance int
	CountryCode  string
	PreDays      int
	PostDays     int

	Log zerolog.Logger
}

// Stage parameter defaults.
const (
	DefaultMaxLinkScore = 1
	DefaultLanguage     = "EN"
	DefaultMinRelevance = 90
	DefaultCountryCode  = "US"
)

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.MaxLinkScore == 0 {
		opts.MaxLinkScore = DefaultMaxLinkScore
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.MinRelevance == 0 {
		opts.MinRelevance = DefaultMinRelevance
	}
	if opts.CountryCode == "" {
		opts.CountryCode = DefaultCountryCode
	}
	if opts.PreDays == 0 {
		opts.PreDays = events.DefaultPreDays
	}
	if opts.PostDays == 0 {
		opts.PostDays = events.DefaultPostDays
	}

	return &Orchestrator{
		tradingDayStore:     opts.TradingDayStore,
		linkStore:           opts.LinkStore,
		estimateStore:       opts.EstimateStore,
		actualStore:         opts.ActualStore,
		surpriseStore:       opts.SurpriseStore,
		wireDailyStore:      opts.WireDailyStore,
		analyticsDailyStore: opts.AnalyticsDailyStore,
		panelStore:          opts.PanelStore,
		eventWindowStore:    opts.EventWindowStore,
		sampleEnd:           opts.SampleEnd,
		maxLinkScore:        opts.MaxLinkScore,
		language:            opts.Language,
		minRelevance:        opts.MinRelevance,
		countryCode:         opts.CountryCode,
		preDays:             opts.PreDays,
		postDays:            opts.PostDays,
		log:                 opts.Log,
	}
}

// Input carries the vendor tables one run consumes. WireFiles keeps
// the raw daily extracts separate: first-pass isolation runs per file,
// deduplication runs across them.
type Input struct {
	TradingDays    []time.Time
	TickerLinks    []domain.LinkRecord
	GVKeyLinks     []domain.LinkRecord
	AnalyticsLinks []domain.LinkRecord

	WireFiles     [][]domain.WireEvent
	AnalyticsRows []domain.AnalyticsRow

	Estimates []domain.EstimateRecord
	Actuals   []domain.ActualRecord
	Factors   []domain.AdjustmentFactor

	Bars          []domain.DailyBar
	Sectors       []domain.SectorAssignment
	FactorReturns []domain.FactorReturns
	Breakpoints   []domain.SizeBreakpoints
	Coverage      []domain.CoverageRecord
	Macro         []domain.MacroAnnouncement
	Volatility    []domain.VolatilityPoint
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	WireDays      int
	AnalyticsDays int
	Surprises     int
	PanelRows     int
	EventRows     int
	PanelAudit    panel.Audit
}

// Run executes the full pipeline.
// Phases:
//  1. Persist reference data (trading days, links)
//  2. Aggregate both news vendors to daily counts
//  3. Reconcile estimates against actuals
//  4. Assemble the firm-day panel
//  5. Extract announcement event windows
func (o *Orchestrator) Run(ctx context.Context, in Input) (*RunResult, error) {
	result := &RunResult{}

	o.log.Info().Int("trading_days", len(in.TradingDays)).Msg("phase 1: persisting reference data")
	if err := o.persistReference(ctx, in); err != nil {
		return nil, fmt.Errorf("phase 1 (reference data) failed: %w", err)
	}

	cal := calendar.New(in.TradingDays)
	tickerLinks := linkage.NewTable(in.TickerLinks, o.sampleEnd, o.maxLinkScore)
	gvkeyLinks := linkage.NewTable(in.GVKeyLinks, o.sampleEnd, o.maxLinkScore)
	analyticsLinks := linkage.NewTable(in.AnalyticsLinks, o.sampleEnd, o.maxLinkScore)

	o.log.Info().Int("wire_files", len(in.WireFiles)).Int("analytics_rows", len(in.AnalyticsRows)).
		Msg("phase 2: aggregating news")
	wireCounts, analyticsCounts, err := o.runNewsAggregation(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (news aggregation) failed: %w", err)
	}
	result.WireDays = len(wireCounts)
	result.AnalyticsDays = len(analyticsCounts)

	o.log.Info().Int("estimates", len(in.Estimates)).Int("actuals", len(in.Actuals)).
		Msg("phase 3: reconciling surprises")
	surprises, err := o.runReconciliation(ctx, in, tickerLinks, cal)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (reconciliation) failed: %w", err)
	}
	result.Surprises = len(surprises)

	o.log.Info().Int("bars", len(in.Bars)).Msg("phase 4: assembling panel")
	panelRows, audit, err := o.runAssembly(ctx, in, gvkeyLinks, analyticsLinks, wireCounts, analyticsCounts, surprises)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (panel assembly) failed: %w", err)
	}
	result.PanelRows = len(panelRows)
	result.PanelAudit = audit

	o.log.Info().Int("panel_rows", len(panelRows)).Msg("phase 5: extracting event windows")
	windows, err := o.runExtraction(ctx, panelRows)
	if err != nil {
		return nil, fmt.Errorf("phase 5 (event extraction) failed: %w", err)
	}
	result.EventRows = len(windows)

	o.log.Info().
		Int("wire_days", result.WireDays).
		Int("analytics_days", result.AnalyticsDays).
		Int("surprises", result.Surprises).
		Int("panel_rows", result.PanelRows).
		Int("event_rows", result.EventRows).
		Msg("pipeline completed")

	return result, nil
}

// persistReference stores trading days, links, estimates and actuals.
// Duplicate key errors mean the data was loaded by an earlier run and
// are skipped.
func (o *Orchestrator) persistReference(ctx context.Context, in Input) error {
	if err := o.insertIgnoringDuplicates(func() error {
		return o.tradingDayStore.InsertBulk(ctx, in.TradingDays)
	}); err != nil {
		return fmt.Errorf("persist trading days: %w", err)
	}

	linkSets := []struct {
		kind    string
		records []domain.LinkRecord
	}{
		{storage.LinkKindTicker, in.TickerLinks},
		{storage.LinkKindGVKey, in.GVKeyLinks},
		{storage.LinkKindAnalytics, in.AnalyticsLinks},
	}
	for _, set := range linkSets {
		if err := o.insertIgnoringDuplicates(func() error {
			return o.linkStore.InsertBulk(ctx, set.kind, set.records)
		}); err != nil {
			return fmt.Errorf("persist %s links: %w", set.kind, err)
		}
	}

	if err := o.estimateStore.InsertBulk(ctx, in.Estimates); err != nil {
		return fmt.Errorf("persist estimates: %w", err)
	}
	if err := o.insertIgnoringDuplicates(func() error {
		return o.actualStore.InsertBulk(ctx, in.Actuals)
	}); err != nil {
		return fmt.Errorf("persist actuals: %w", err)
	}

	return nil
}

// runNewsAggregation runs both vendor pipelines and persists the daily
// counts.
func (o *Orchestrator) runNewsAggregation(ctx context.Context, in Input) ([]domain.WireDailyCounts, []domain.AnalyticsDailyCounts, error) {
	session := newsagg.NewYorkSession()

	// Read-count sightings come from the raw revision stream of each
	// file: updates to stories first passed in earlier files still move
	// the counter and must not be lost to first-pass filtering or
	// cross-file dedup.
	wireAgg := newsagg.NewWireAggregator(session, o.language)
	var stories []domain.StoryRecord
	var readObs []newsagg.ReadObservation
	for _, file := range in.WireFiles {
		stories = append(stories, wireAgg.ProcessFile(file)...)
		readObs = append(readObs, wireAgg.ObserveReadCounts(file)...)
	}
	stories = newsagg.DeduplicateAcrossFiles(stories)

	// Without a bar series the monthly universe is unknown and the
	// filter is skipped.
	if len(in.Bars) > 0 {
		universe := newsagg.NewMonthlyUniverse(in.Bars)
		stories = universe.FilterStories(stories)
		readObs = universe.FilterObservations(readObs)
	}

	readDeltas := newsagg.DiffReadCounts(readObs)
	wireCounts := wireAgg.Aggregate(stories, readDeltas)

	analyticsAgg := newsagg.NewAnalyticsAggregator(session, o.minRelevance, o.countryCode)
	analyticsCounts := analyticsAgg.Aggregate(in.AnalyticsRows)

	if err := o.insertIgnoringDuplicates(func() error {
		return o.wireDailyStore.InsertBulk(ctx, wireCounts)
	}); err != nil {
		return nil, nil, fmt.Errorf("persist wire counts: %w", err)
	}
	if err := o.insertIgnoringDuplicates(func() error {
		return o.analyticsDailyStore.InsertBulk(ctx, analyticsCounts)
	}); err != nil {
		return nil, nil, fmt.Errorf("persist analytics counts: %w", err)
	}

	return wireCounts, analyticsCounts, nil
}

// runReconciliation reconciles estimates against actuals and persists
// the surprise records.
func (o *Orchestrator) runReconciliation(ctx context.Context, in Input, tickerLinks *linkage.Table, cal *calendar.Calendar) ([]domain.SurpriseRecord, error) {
	engine := surprise.NewEngine(tickerLinks, cal, in.Factors, o.log)
	surprises := engine.Reconcile(in.Estimates, in.Actuals)

	if err := o.insertIgnoringDuplicates(func() error {
		return o.surpriseStore.InsertBulk(ctx, surprises)
	}); err != nil {
		return nil, fmt.Errorf("persist surprises: %w", err)
	}

	return surprises, nil
}

// runAssembly assembles the firm-day panel and persists it.
func (o *Orchestrator) runAssembly(
	ctx context.Context,
	in Input,
	gvkeyLinks, analyticsLinks *linkage.Table,
	wireCounts []domain.WireDailyCounts,
	analyticsCounts []domain.AnalyticsDailyCounts,
	surprises []domain.SurpriseRecord,
) ([]domain.PanelRow, panel.Audit, error) {
	assembler := panel.NewAssembler(gvkeyLinks, analyticsLinks, o.log)
	rows, audit := assembler.Assemble(panel.Inputs{
		Bars:        in.Bars,
		Sectors:     in.Sectors,
		Analytics:   analyticsCounts,
		Factors:     in.FactorReturns,
		Breakpoints: in.Breakpoints,
		Wire:        wireCounts,
		Surprises:   surprises,
		Coverage:    in.Coverage,
		Macro:       in.Macro,
		Volatility:  in.Volatility,
	})

	if err := o.insertIgnoringDuplicates(func() error {
		return o.panelStore.InsertBulk(ctx, rows)
	}); err != nil {
		return nil, panel.Audit{}, fmt.Errorf("persist panel: %w", err)
	}

	return rows, audit, nil
}

// runExtraction cuts announcement event windows from the panel and
// persists them.
func (o *Orchestrator) runExtraction(ctx context.Context, panelRows []domain.PanelRow) ([]domain.EventWindowRow, error) {
	extractor := events.NewExtractor(o.log).WithWindow(o.preDays, o.postDays)
	windows := extractor.Extract(panelRows)

	if err := o.insertIgnoringDuplicates(func() error {
		return o.eventWindowStore.InsertBulk(ctx, windows)
	}); err != nil {
		return nil, fmt.Errorf("persist event windows: %w", err)
	}

	return windows, nil
}

func (o *Orchestrator) insertIgnoringDuplicates(insert func() error) error {
	err := insert()
	if errors.Is(err, storage.ErrDuplicateKey) {
		o.log.Debug().Msg("already persisted, skipping")
		return nil
	}
	return err
}
