// Package main runs estimate/actual reconciliation alone and writes
// the earnings surprise table as CSV.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/calendar"
	"equity-panel-lab/internal/linkage"
	"equity-panel-lab/internal/orchestrator"
	"equity-panel-lab/internal/reporting"
	"equity-panel-lab/internal/surprise"
	"equity-panel-lab/internal/vendorio"
)

const dateLayout = "2006-01-02"

func main() {
	dataDir := flag.String("data-dir", "", "Vendor snapshot directory (required)")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	sampleEndStr := flag.String("sample-end", "", "Sample end date YYYY-MM-DD (required); open link windows resolve to it")
	maxLinkScore := flag.Int("max-link-score", orchestrator.DefaultMaxLinkScore, "Maximum accepted link score")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(logger, *dataDir, *outputDir, *sampleEndStr, *maxLinkScore); err != nil {
		logger.Error().Err(err).Msg("reconciliation failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, dataDir, outputDir, sampleEndStr string, maxLinkScore int) error {
	if dataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	sampleEnd, err := time.Parse(dateLayout, sampleEndStr)
	if err != nil {
		return fmt.Errorf("--sample-end is required as YYYY-MM-DD: %w", err)
	}

	loader := vendorio.NewLoader(logger)
	ds := loader.LoadDataset(dataDir)

	cal := calendar.New(ds.TradingDays())
	tickerLinks := linkage.NewTable(ds.TickerLinkSet, sampleEnd, maxLinkScore)

	engine := surprise.NewEngine(tickerLinks, cal, ds.AdjFactors, logger)
	surprises := engine.Reconcile(ds.Estimates, ds.Actuals)

	logger.Info().
		Int("estimates", len(ds.Estimates)).
		Int("actuals", len(ds.Actuals)).
		Int("surprises", len(surprises)).
		Msg("reconciliation complete")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "earnings_surprises.csv")
	csv := reporting.RenderSurpriseCSV(reporting.SurpriseRows(surprises))
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		return fmt.Errorf("write surprises: %w", err)
	}

	logger.Info().Str("path", path).Msg("output written")
	return nil
}
