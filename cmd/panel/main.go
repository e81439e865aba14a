// Package main assembles the firm-day panel and writes it as CSV.
// Upstream stages run in memory; nothing is persisted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/orchestrator"
	"equity-panel-lab/internal/reporting"
	"equity-panel-lab/internal/storage/memory"
	"equity-panel-lab/internal/vendorio"
)

const dateLayout = "2006-01-02"

func main() {
	dataDir := flag.String("data-dir", "", "Vendor snapshot directory (required)")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	sampleEndStr := flag.String("sample-end", "", "Sample end date YYYY-MM-DD (required); open link windows resolve to it")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(context.Background(), logger, *dataDir, *outputDir, *sampleEndStr); err != nil {
		logger.Error().Err(err).Msg("panel assembly failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, logger zerolog.Logger, dataDir, outputDir, sampleEndStr string) error {
	if dataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	sampleEnd, err := time.Parse(dateLayout, sampleEndStr)
	if err != nil {
		return fmt.Errorf("--sample-end is required as YYYY-MM-DD: %w", err)
	}

	loader := vendorio.NewLoader(logger)
	ds := loader.LoadDataset(dataDir)

	panelStore := memory.NewPanelStore()
	orch := orchestrator.New(orchestrator.Options{
		TradingDayStore:     memory.NewTradingDayStore(),
		LinkStore:           memory.NewLinkStore(),
		EstimateStore:       memory.NewEstimateStore(),
		ActualStore:         memory.NewActualStore(),
		SurpriseStore:       memory.NewSurpriseStore(),
		WireDailyStore:      memory.NewWireDailyStore(),
		AnalyticsDailyStore: memory.NewAnalyticsDailyStore(),
		PanelStore:          panelStore,
		EventWindowStore:    memory.NewEventWindowStore(),
		SampleEnd:           sampleEnd,
		Log:                 logger,
	})

	result, err := orch.Run(ctx, orchestrator.Input{
		TradingDays:    ds.TradingDays(),
		TickerLinks:    ds.TickerLinkSet,
		GVKeyLinks:     ds.GVKeyLinkSet,
		AnalyticsLinks: ds.AnalyticsLinkSet,
		WireFiles:      ds.WireFiles,
		AnalyticsRows:  ds.Analytics,
		Estimates:      ds.Estimates,
		Actuals:        ds.Actuals,
		Factors:        ds.AdjFactors,
		Bars:           ds.Bars,
		Sectors:        ds.Sectors,
		FactorReturns:  ds.Factors,
		Breakpoints:    ds.Breakpoints,
		Coverage:       ds.Coverage,
		Macro:          ds.Macro,
		Volatility:     ds.Volatility,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int("panel_rows", result.PanelRows).
		Int("dropped_missing_return", result.PanelAudit.MissingReturn).
		Int("dropped_missing_factor", result.PanelAudit.MissingFactor).
		Msg("panel assembled")

	rows, err := panelStore.GetByDateRange(ctx, time.Time{}, sampleEnd)
	if err != nil {
		return fmt.Errorf("read panel: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "firm_day_panel.csv")
	if err := os.WriteFile(path, []byte(reporting.RenderPanelCSV(rows)), 0o644); err != nil {
		return fmt.Errorf("write panel: %w", err)
	}

	logger.Info().Str("path", path).Msg("output written")
	return nil
}
