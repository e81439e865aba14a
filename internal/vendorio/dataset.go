package vendorio

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"equity-panel-lab/internal/domain"
)

// Conventional file names inside a vendor snapshot directory. Wire
// extracts are the exception: one file per vendor delivery day under
// wire/.
const (
	AnalyticsFile   = "analytics.csv"
	EstimatesFile   = "estimates.csv"
	ActualsFile     = "actuals.csv"
	DailyBarsFile   = "daily_bars.csv"
	TickerLinks     = "links_ticker.csv"
	GVKeyLinks      = "links_gvkey.csv"
	AnalyticsLinks  = "links_analytics.csv"
	FactorsFile     = "factors.csv"
	BreakpointsFile = "breakpoints.csv"
	SectorsFile     = "sectors.csv"
	AdjFactorsFile  = "adjustment_factors.csv"
	CoverageFile    = "coverage.csv"
	MacroFile       = "macro.csv"
	VolatilityFile  = "volatility.csv"
	WireDir         = "wire"
)

// Dataset is every vendor table one run consumes, loaded from a
// snapshot directory. Missing files leave the slice nil and are
// counted in the loader's audit.
type Dataset struct {
	WireFiles        [][]domain.WireEvent
	Analytics        []domain.AnalyticsRow
	Estimates        []domain.EstimateRecord
	Actuals          []domain.ActualRecord
	Bars             []domain.DailyBar
	TickerLinkSet    []domain.LinkRecord
	GVKeyLinkSet     []domain.LinkRecord
	AnalyticsLinkSet []domain.LinkRecord
	Factors          []domain.FactorReturns
	Breakpoints      []domain.SizeBreakpoints
	Sectors          []domain.SectorAssignment
	AdjFactors       []domain.AdjustmentFactor
	Coverage         []domain.CoverageRecord
	Macro            []domain.MacroAnnouncement
	Volatility       []domain.VolatilityPoint
}

// TradingDays derives the trading calendar from the factor return
// series, which covers every exchange session in the sample.
func (d Dataset) TradingDays() []time.Time {
	days := make([]time.Time, 0, len(d.Factors))
	for _, f := range d.Factors {
		days = append(days, f.Date)
	}
	return days
}

// LoadDataset reads every conventional table from dir. Wire extracts
// under dir/wire are loaded one file at a time, in lexical order, so
// first-pass isolation stays per delivery.
func (l *Loader) LoadDataset(dir string) Dataset {
	d := Dataset{
		Analytics:        l.AnalyticsRows(filepath.Join(dir, AnalyticsFile)),
		Estimates:        l.Estimates(filepath.Join(dir, EstimatesFile)),
		Actuals:          l.Actuals(filepath.Join(dir, ActualsFile)),
		Bars:             l.DailyBars(filepath.Join(dir, DailyBarsFile)),
		TickerLinkSet:    l.Links(filepath.Join(dir, TickerLinks)),
		GVKeyLinkSet:     l.Links(filepath.Join(dir, GVKeyLinks)),
		AnalyticsLinkSet: l.Links(filepath.Join(dir, AnalyticsLinks)),
		Factors:          l.FactorReturns(filepath.Join(dir, FactorsFile)),
		Breakpoints:      l.SizeBreakpoints(filepath.Join(dir, BreakpointsFile)),
		Sectors:          l.Sectors(filepath.Join(dir, SectorsFile)),
		AdjFactors:       l.AdjustmentFactors(filepath.Join(dir, AdjFactorsFile)),
		Coverage:         l.Coverage(filepath.Join(dir, CoverageFile)),
		Macro:            l.MacroAnnouncements(filepath.Join(dir, MacroFile)),
		Volatility:       l.Volatility(filepath.Join(dir, VolatilityFile)),
	}

	for _, path := range l.wirePaths(filepath.Join(dir, WireDir)) {
		if events := l.WireEvents(path); len(events) > 0 {
			d.WireFiles = append(d.WireFiles, events)
		}
	}

	return d
}

func (l *Loader) wirePaths(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.audit.FilesFailed++
		l.log.Error().Err(err).Str("dir", dir).Msg("read wire directory")
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".csv" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}
