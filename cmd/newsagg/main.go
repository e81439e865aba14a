// Package main runs the news aggregation stage alone: both vendor
// feeds are reduced to (entity, trading date) daily counts and written
// as CSV, nothing is persisted.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/newsagg"
	"equity-panel-lab/internal/orchestrator"
	"equity-panel-lab/internal/reporting"
	"equity-panel-lab/internal/vendorio"
)

func main() {
	dataDir := flag.String("data-dir", "", "Vendor snapshot directory (required)")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	language := flag.String("language", orchestrator.DefaultLanguage, "Wire story language filter")
	minRelevance := flag.Int("min-relevance", orchestrator.DefaultMinRelevance, "Minimum analytics relevance score")
	country := flag.String("country", orchestrator.DefaultCountryCode, "Analytics country code filter")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(logger, *dataDir, *outputDir, *language, *minRelevance, *country); err != nil {
		logger.Error().Err(err).Msg("news aggregation failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, dataDir, outputDir, language string, minRelevance int, country string) error {
	if dataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}

	loader := vendorio.NewLoader(logger)
	ds := loader.LoadDataset(dataDir)

	session := newsagg.NewYorkSession()

	// Read-count sightings come from the raw revision stream of each
	// file, before first-pass filtering and cross-file dedup.
	wireAgg := newsagg.NewWireAggregator(session, language)
	var stories []domain.StoryRecord
	var readObs []newsagg.ReadObservation
	for _, file := range ds.WireFiles {
		stories = append(stories, wireAgg.ProcessFile(file)...)
		readObs = append(readObs, wireAgg.ObserveReadCounts(file)...)
	}
	stories = newsagg.DeduplicateAcrossFiles(stories)
	if len(ds.Bars) > 0 {
		universe := newsagg.NewMonthlyUniverse(ds.Bars)
		stories = universe.FilterStories(stories)
		readObs = universe.FilterObservations(readObs)
	}
	readDeltas := newsagg.DiffReadCounts(readObs)
	wireCounts := wireAgg.Aggregate(stories, readDeltas)

	analyticsAgg := newsagg.NewAnalyticsAggregator(session, minRelevance, country)
	analyticsCounts := analyticsAgg.Aggregate(ds.Analytics)

	logger.Info().
		Int("wire_days", len(wireCounts)).
		Int("analytics_days", len(analyticsCounts)).
		Msg("news aggregated")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	wirePath := filepath.Join(outputDir, "wire_news_daily.csv")
	if err := os.WriteFile(wirePath, []byte(reporting.RenderWireDailyCSV(wireCounts)), 0o644); err != nil {
		return fmt.Errorf("write wire counts: %w", err)
	}
	analyticsPath := filepath.Join(outputDir, "analytics_news_daily.csv")
	if err := os.WriteFile(analyticsPath, []byte(reporting.RenderAnalyticsDailyCSV(analyticsCounts)), 0o644); err != nil {
		return fmt.Errorf("write analytics counts: %w", err)
	}

	logger.Info().Str("wire", wirePath).Str("analytics", analyticsPath).Msg("outputs written")
	return nil
}
