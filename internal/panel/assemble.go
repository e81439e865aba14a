// Package panel assembles the wide firm-day panel from the per-stage
// aggregates: daily return bars joined with classifications, market
// factors, news counts, announcement markers and macro covariates, then
// extended with derived and rolling features.
package panel

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/linkage"
)

// Inputs carries every table the assembler joins onto the daily bars.
// All slices may arrive unsorted.
type Inputs struct {
	Bars        []domain.DailyBar
	Sectors     []domain.SectorAssignment
	Analytics   []domain.AnalyticsDailyCounts
	Factors     []domain.FactorReturns
	Breakpoints []domain.SizeBreakpoints
	Wire        []domain.WireDailyCounts
	Surprises   []domain.SurpriseRecord
	Coverage    []domain.CoverageRecord
	Macro       []domain.MacroAnnouncement
	Volatility  []domain.VolatilityPoint
}

// Audit counts the rows the assembler dropped, by reason.
type Audit struct {
	MissingReturn int
	MissingSector int
	MissingFactor int
	Weekends      int
	Rows          int
}

// Assembler builds panel rows. Entity identity crosses three keyspaces:
// bars carry the internal id and ticker, sectors are keyed by gvkey and
// analytics counts by the vendor entity id, both resolved through
// time-bounded link tables.
type Assembler struct {
	gvkeyLinks     *linkage.Table
	analyticsLinks *linkage.Table
	log            zerolog.Logger
}

func NewAssembler(gvkeyLinks, analyticsLinks *linkage.Table, log zerolog.Logger) *Assembler {
	return &Assembler{gvkeyLinks: gvkeyLinks, analyticsLinks: analyticsLinks, log: log}
}

type entityDay struct {
	internalID int64
	date       time.Time
}

type tickerDay struct {
	ticker string
	date   time.Time
}

type vixObs struct {
	level float64
	delta *float64
}

// Assemble joins in a fixed order (sector, analytics news, factors,
// breakpoints, wire news and read counts, announcement markers,
// coverage, macro, volatility), derives the per-row fields, then runs
// the within-entity rolling pass. Output is sorted by (entity, date)
// with at most one row per key.
func (a *Assembler) Assemble(in Inputs) ([]domain.PanelRow, Audit) {
	var audit Audit

	factorsByDate := make(map[time.Time]domain.FactorReturns, len(in.Factors))
	for _, f := range in.Factors {
		factorsByDate[domain.DateOf(f.Date)] = f
	}
	cutsByMonth := make(map[time.Time]domain.SizeBreakpoints, len(in.Breakpoints))
	for _, b := range in.Breakpoints {
		cutsByMonth[domain.MonthOf(b.Month)] = b
	}
	wireByKey := make(map[tickerDay]domain.WireDailyCounts, len(in.Wire))
	for _, w := range in.Wire {
		wireByKey[tickerDay{ticker: w.Entity, date: domain.DateOf(w.Date)}] = w
	}
	analyticsByKey := a.resolveAnalytics(in.Analytics)
	surpriseByKey := make(map[entityDay]domain.SurpriseRecord, len(in.Surprises))
	for _, s := range in.Surprises {
		surpriseByKey[entityDay{internalID: s.InternalID, date: domain.DateOf(s.AnnouncementDate)}] = s
	}
	coverageByKey := make(map[entityDay]int, len(in.Coverage))
	for _, c := range in.Coverage {
		coverageByKey[entityDay{internalID: c.InternalID, date: domain.QuarterOf(c.Quarter)}] = c.NumAnalysts
	}
	macroDays := make(map[time.Time]bool, len(in.Macro))
	for _, m := range in.Macro {
		macroDays[domain.DateOf(m.Date)] = true
	}
	vixByDate := indexVolatility(in.Volatility)
	sectorsByGVKey := make(map[string][]domain.SectorAssignment)
	for _, s := range in.Sectors {
		sectorsByGVKey[s.GVKey] = append(sectorsByGVKey[s.GVKey], s)
	}

	bars := make([]domain.DailyBar, len(in.Bars))
	copy(bars, in.Bars)
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].InternalID != bars[j].InternalID {
			return bars[i].InternalID < bars[j].InternalID
		}
		return bars[i].Date.Before(bars[j].Date)
	})

	rows := make([]domain.PanelRow, 0, len(bars))
	seen := make(map[entityDay]bool, len(bars))
	for _, bar := range bars {
		date := domain.DateOf(bar.Date)
		if domain.IsWeekend(date) {
			audit.Weekends++
			continue
		}
		if bar.Return == nil || bar.Close == nil {
			audit.MissingReturn++
			continue
		}
		key := entityDay{internalID: bar.InternalID, date: date}
		if seen[key] {
			continue
		}

		gvkey, sec, ok := a.sectorFor(bar.InternalID, date, sectorsByGVKey)
		if !ok {
			audit.MissingSector++
			continue
		}
		factors, ok := factorsByDate[date]
		if !ok {
			audit.MissingFactor++
			continue
		}
		seen[key] = true

		row := domain.PanelRow{
			InternalID: bar.InternalID,
			Date:       date,
			Ticker:     bar.Ticker,
			CUSIP:      bar.CUSIP,
			GVKey:      gvkey,
			Return:     *bar.Return,
			Open:       bar.Open,
			Close:      *bar.Close,
			SharesOut:  bar.SharesOut,
			Mkt:        factors.Mkt(),
			MktRF:      factors.MktRF,
			RF:         factors.RF,
			Sector:     sec.Sector,
			Group:      sec.Group,
		}

		if ac, ok := analyticsByKey[key]; ok {
			row.AnalyticsNewsCount = ac.StoryCount
			row.FullArticleCount = ac.FullArticleCount
			row.TabularCount = ac.TabularCount
			row.NewsFlashCount = ac.FlashCount
			row.PressReleaseCount = ac.PressReleaseCount
			row.SECCount = ac.SECCount
			row.AnalyticsPreOpen = ac.PreOpenCount
			row.AnalyticsPostClose = ac.PostCloseCount
			sentiment := ac.MeanSentiment
			row.MeanSentiment = &sentiment
			row.MostFrequentNewsKind = ac.TopGroup
		}
		if wc, ok := wireByKey[tickerDay{ticker: bar.Ticker, date: date}]; ok {
			row.WireNewsCount = wc.StoryCount
			row.WireFlashCount = wc.FlashCount
			row.WirePreOpenCount = wc.PreOpenCount
			row.WirePostCloseCount = wc.PostCloseCount
			row.ReadCount = wc.ReadCountDelta
		}
		if sr, ok := surpriseByKey[key]; ok {
			row.Announcement = true
			s := sr.Surprise
			row.Surprise = &s
		}
		row.NumAnalysts = coverageByKey[entityDay{internalID: bar.InternalID, date: domain.QuarterOf(date)}]
		row.MacroAnnDay = macroDays[date]
		if v, ok := vixByDate[date]; ok {
			level := v.level
			row.VIX = &level
			row.DeltaVIX = v.delta
		}

		deriveRow(&row, cutsByMonth)
		rows = append(rows, row)
	}

	applyRollingFeatures(rows)

	audit.Rows = len(rows)
	a.log.Info().
		Int("rows", audit.Rows).
		Int("missing_return", audit.MissingReturn).
		Int("missing_sector", audit.MissingSector).
		Int("missing_factor", audit.MissingFactor).
		Int("weekends", audit.Weekends).
		Msg("panel assembled")
	return rows, audit
}

// sectorFor resolves the bar's gvkey through the link table and picks
// the classification whose validity window covers the date.
func (a *Assembler) sectorFor(internalID int64, date time.Time, byGVKey map[string][]domain.SectorAssignment) (string, domain.SectorAssignment, bool) {
	gvkey, err := a.gvkeyLinks.ResolveExternal(internalID, date)
	if err != nil {
		return "", domain.SectorAssignment{}, false
	}
	for _, s := range byGVKey[gvkey] {
		if date.Before(domain.DateOf(s.ValidFrom)) {
			continue
		}
		if !s.ValidTo.IsZero() && date.After(domain.DateOf(s.ValidTo)) {
			continue
		}
		return gvkey, s, true
	}
	return gvkey, domain.SectorAssignment{}, false
}

// resolveAnalytics maps analytics-vendor daily counts onto internal ids
// through the vendor link table. Unlinked entities drop out here, the
// same left-join semantics as everywhere else.
func (a *Assembler) resolveAnalytics(counts []domain.AnalyticsDailyCounts) map[entityDay]domain.AnalyticsDailyCounts {
	out := make(map[entityDay]domain.AnalyticsDailyCounts, len(counts))
	for _, c := range counts {
		date := domain.DateOf(c.Date)
		id, err := a.analyticsLinks.ResolveInternal(c.EntityID, date)
		if err != nil {
			continue
		}
		out[entityDay{internalID: id, date: date}] = c
	}
	return out
}

// indexVolatility computes day-over-day level changes against the
// previous available observation, not the previous calendar day.
func indexVolatility(points []domain.VolatilityPoint) map[time.Time]vixObs {
	sorted := make([]domain.VolatilityPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make(map[time.Time]vixObs, len(sorted))
	for i, p := range sorted {
		obs := vixObs{level: p.Level}
		if i > 0 {
			d := p.Level - sorted[i-1].Level
			obs.delta = &d
		}
		out[domain.DateOf(p.Date)] = obs
	}
	return out
}
