// Package main extracts announcement event windows and writes them as
// CSV. Upstream stages run in memory; nothing is persisted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/events"
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
	preDays := flag.Int("pre-days", events.DefaultPreDays, "Trading days before the announcement")
	postDays := flag.Int("post-days", events.DefaultPostDays, "Trading days after the announcement")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(context.Background(), logger, *dataDir, *outputDir, *sampleEndStr, *preDays, *postDays); err != nil {
		logger.Error().Err(err).Msg("event extraction failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, logger zerolog.Logger, dataDir, outputDir, sampleEndStr string, preDays, postDays int) error {
	if dataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	sampleEnd, err := time.Parse(dateLayout, sampleEndStr)
	if err != nil {
		return fmt.Errorf("--sample-end is required as YYYY-MM-DD: %w", err)
	}

	loader := vendorio.NewLoader(logger)
	ds := loader.LoadDataset(dataDir)

	eventWindowStore := memory.NewEventWindowStore()
	orch := orchestrator.New(orchestrator.Options{
		TradingDayStore:     memory.NewTradingDayStore(),
		LinkStore:           memory.NewLinkStore(),
		EstimateStore:       memory.NewEstimateStore(),
		ActualStore:         memory.NewActualStore(),
		SurpriseStore:       memory.NewSurpriseStore(),
		WireDailyStore:      memory.NewWireDailyStore(),
		AnalyticsDailyStore: memory.NewAnalyticsDailyStore(),
		PanelStore:          memory.NewPanelStore(),
		EventWindowStore:    eventWindowStore,
		SampleEnd:           sampleEnd,
		PreDays:             preDays,
		PostDays:            postDays,
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

	logger.Info().Int("event_rows", result.EventRows).Msg("event windows extracted")

	windows, err := eventWindowStore.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("read event windows: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "event_windows.csv")
	if err := os.WriteFile(path, []byte(reporting.RenderEventWindowCSV(windows)), 0o644); err != nil {
		return fmt.Errorf("write event windows: %w", err)
	}

	logger.Info().Str("path", path).Msg("output written")
	return nil
}
