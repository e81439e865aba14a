// Package main runs the full panel-construction pipeline over a vendor
// snapshot directory: news aggregation, surprise reconciliation, panel
// assembly and event-window extraction, then writes the run outputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"equity-panel-lab/internal/orchestrator"
	"equity-panel-lab/internal/reporting"
	"equity-panel-lab/internal/storage"
	chstore "equity-panel-lab/internal/storage/clickhouse"
	"equity-panel-lab/internal/storage/memory"
	"equity-panel-lab/internal/storage/migrations"
	pgstore "equity-panel-lab/internal/storage/postgres"
	"equity-panel-lab/internal/vendorio"
)

const dateLayout = "2006-01-02"

func main() {
	// Optional .env for connection strings
	godotenv.Load()

	dataDir := flag.String("data-dir", "", "Vendor snapshot directory (required)")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	sampleEndStr := flag.String("sample-end", "", "Sample end date YYYY-MM-DD (required); open link windows resolve to it")
	preDays := flag.Int("pre-days", 0, "Event window trading days before the announcement (0 = default)")
	postDays := flag.Int("post-days", 0, "Event window trading days after the announcement (0 = default)")
	language := flag.String("language", "", "Wire story language filter (default EN)")
	minRelevance := flag.Int("min-relevance", 0, "Minimum analytics relevance score (default 90)")
	country := flag.String("country", "", "Analytics country code filter (default US)")
	maxLinkScore := flag.Int("max-link-score", 0, "Maximum accepted link score (default 1)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("cancelling pipeline")
		cancel()
	}()

	if err := run(ctx, logger, options{
		dataDir:       *dataDir,
		outputDir:     *outputDir,
		sampleEnd:     *sampleEndStr,
		preDays:       *preDays,
		postDays:      *postDays,
		language:      *language,
		minRelevance:  *minRelevance,
		country:       *country,
		maxLinkScore:  *maxLinkScore,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
	}); err != nil {
		logger.Error().Err(err).Msg("pipeline failed")
		os.Exit(1)
	}
}

type options struct {
	dataDir       string
	outputDir     string
	sampleEnd     string
	preDays       int
	postDays      int
	language      string
	minRelevance  int
	country       string
	maxLinkScore  int
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
}

func run(ctx context.Context, logger zerolog.Logger, opts options) error {
	if opts.dataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	sampleEnd, err := time.Parse(dateLayout, opts.sampleEnd)
	if err != nil {
		return fmt.Errorf("--sample-end is required as YYYY-MM-DD: %w", err)
	}

	// Create stores (use interfaces)
	var tradingDayStore storage.TradingDayStore = memory.NewTradingDayStore()
	var linkStore storage.LinkStore = memory.NewLinkStore()
	var estimateStore storage.EstimateStore = memory.NewEstimateStore()
	var actualStore storage.ActualStore = memory.NewActualStore()
	var surpriseStore storage.SurpriseStore = memory.NewSurpriseStore()
	var wireDailyStore storage.WireDailyStore = memory.NewWireDailyStore()
	var analyticsDailyStore storage.AnalyticsDailyStore = memory.NewAnalyticsDailyStore()
	var panelStore storage.PanelStore = memory.NewPanelStore()
	var eventWindowStore storage.EventWindowStore = memory.NewEventWindowStore()

	if !opts.useMemory {
		if opts.postgresDSN == "" || opts.clickhouseDSN == "" {
			return fmt.Errorf("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
		}

		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}

		conn, err := migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()

		tradingDayStore = pgstore.NewTradingDayStore(pool)
		linkStore = pgstore.NewLinkStore(pool)
		estimateStore = pgstore.NewEstimateStore(pool)
		actualStore = pgstore.NewActualStore(pool)
		surpriseStore = pgstore.NewSurpriseStore(pool)
		wireDailyStore = chstore.NewWireDailyStore(conn)
		analyticsDailyStore = chstore.NewAnalyticsDailyStore(conn)
		panelStore = chstore.NewPanelStore(conn)
		eventWindowStore = chstore.NewEventWindowStore(conn)
	}

	// Load the vendor snapshot
	loader := vendorio.NewLoader(logger)
	ds := loader.LoadDataset(opts.dataDir)
	audit := loader.Audit()
	logger.Info().
		Int("files_read", audit.FilesRead).
		Int("files_failed", audit.FilesFailed).
		Int("rows_read", audit.RowsRead).
		Int("rows_skipped", audit.RowsSkipped).
		Msg("vendor snapshot loaded")

	orch := orchestrator.New(orchestrator.Options{
		TradingDayStore:     tradingDayStore,
		LinkStore:           linkStore,
		EstimateStore:       estimateStore,
		ActualStore:         actualStore,
		SurpriseStore:       surpriseStore,
		WireDailyStore:      wireDailyStore,
		AnalyticsDailyStore: analyticsDailyStore,
		PanelStore:          panelStore,
		EventWindowStore:    eventWindowStore,
		SampleEnd:           sampleEnd,
		MaxLinkScore:        opts.maxLinkScore,
		Language:            opts.language,
		MinRelevance:        opts.minRelevance,
		CountryCode:         opts.country,
		PreDays:             opts.preDays,
		PostDays:            opts.postDays,
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

	if audit.Partial() {
		logger.Warn().Msg("vendor inputs were partial, outputs cover the readable extract only")
	}
	if result.PanelAudit.MissingFactor > 0 || result.PanelAudit.MissingReturn > 0 {
		logger.Warn().
			Int("missing_return", result.PanelAudit.MissingReturn).
			Int("missing_factor", result.PanelAudit.MissingFactor).
			Int("missing_sector", result.PanelAudit.MissingSector).
			Msg("panel rows dropped during assembly")
	}

	return writeOutputs(ctx, logger, opts.outputDir, sampleEnd,
		surpriseStore, panelStore, eventWindowStore)
}

// writeOutputs renders the run report plus one CSV per stored table.
func writeOutputs(
	ctx context.Context,
	logger zerolog.Logger,
	outputDir string,
	sampleEnd time.Time,
	surpriseStore storage.SurpriseStore,
	panelStore storage.PanelStore,
	eventWindowStore storage.EventWindowStore,
) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	generator := reporting.NewGenerator(surpriseStore, panelStore, eventWindowStore)
	report, err := generator.Generate(ctx, time.Time{}, sampleEnd)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	panelRows, err := panelStore.GetByDateRange(ctx, time.Time{}, sampleEnd)
	if err != nil {
		return fmt.Errorf("read panel: %w", err)
	}
	windows, err := eventWindowStore.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("read event windows: %w", err)
	}

	files := map[string]string{
		"REPORT.md":              reporting.RenderMarkdown(report),
		"earnings_surprises.csv": reporting.RenderSurpriseCSV(report.Surprises),
		"firm_day_panel.csv":     reporting.RenderPanelCSV(panelRows),
		"event_windows.csv":      reporting.RenderEventWindowCSV(windows),
	}
	for name, content := range files {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logger.Info().Str("path", path).Msg("output written")
	}

	return nil
}
