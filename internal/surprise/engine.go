// Package surprise reconciles analyst forecast records with reported
// actuals into one consensus-vs-actual surprise per entity and fiscal
// period.
package surprise

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/calendar"
	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/linkage"
	"equity-panel-lab/internal/stats"
)

// MaxEstimateAgeDays bounds the estimate-to-report gap: only estimates
// issued within this window before the report constitute a causally
// forward-looking forecast.
const MaxEstimateAgeDays = 90

// afterCloseHour rolls announcements reported at or after this local
// hour to the next calendar day before trading-day snapping.
const afterCloseHour = 16

// Engine runs the reconciliation pipeline. Stateless across calls;
// safe to reuse for multiple batches.
type Engine struct {
	links   *linkage.Table
	cal     *calendar.Calendar
	factors map[factorKey]float64
	log     zerolog.Logger
}

type factorKey struct {
	internalID int64
	date       time.Time
}

// NewEngine wires the engine to its reference data: the ticker link
// table, the trading calendar, and the per-entity share adjustment
// factor series.
func NewEngine(links *linkage.Table, cal *calendar.Calendar, factors []domain.AdjustmentFactor, log zerolog.Logger) *Engine {
	fm := make(map[factorKey]float64, len(factors))
	for _, f := range factors {
		fm[factorKey{internalID: f.InternalID, date: domain.DateOf(f.Date)}] = f.Factor
	}
	return &Engine{links: links, cal: cal, factors: fm, log: log}
}

type periodKey struct {
	ticker          string
	fiscalPeriodEnd time.Time
}

// Reconcile produces one surprise record per (entity, fiscal period).
// Estimates whose ticker has no valid link at announce time contribute
// nothing; the merge runs from the accounting side, so missing links
// are exclusions, not errors.
func (e *Engine) Reconcile(estimates []domain.EstimateRecord, actuals []domain.ActualRecord) []domain.SurpriseRecord {
	// 1. Link validity at announce time plus forecast-horizon filter.
	type linkedEstimate struct {
		domain.EstimateRecord
		internalID int64
	}
	linked := make([]linkedEstimate, 0, len(estimates))
	for _, est := range estimates {
		if est.Horizon != domain.HorizonCurrentQuarter && est.Horizon != domain.HorizonNextQuarter {
			continue
		}
		id, err := e.links.ResolveInternal(est.Ticker, est.AnnounceDate)
		if err != nil {
			continue
		}
		linked = append(linked, linkedEstimate{EstimateRecord: est, internalID: id})
	}

	// 2. Majority vote on the per-share reporting basis. Ties and
	// untyped estimates default to diluted.
	basisVotes := make(map[periodKey][2]int) // [primary, diluted]
	for _, est := range linked {
		key := periodKey{ticker: est.Ticker, fiscalPeriodEnd: domain.DateOf(est.FiscalPeriodEnd)}
		votes := basisVotes[key]
		switch est.Basis {
		case domain.BasisPrimary:
			votes[0]++
		case domain.BasisDiluted:
			votes[1]++
		}
		basisVotes[key] = votes
	}
	basisOf := func(key periodKey) string {
		votes := basisVotes[key]
		if votes[0] > votes[1] {
			return domain.BasisPrimary
		}
		return domain.BasisDiluted
	}

	// 3. Latest revision per analyst.
	type analystKey struct {
		periodKey
		estimatorID int64
		analystID   int64
	}
	latest := make(map[analystKey]linkedEstimate)
	for _, est := range linked {
		key := analystKey{
			periodKey:   periodKey{ticker: est.Ticker, fiscalPeriodEnd: domain.DateOf(est.FiscalPeriodEnd)},
			estimatorID: est.EstimatorID,
			analystID:   est.AnalystID,
		}
		cur, seen := latest[key]
		if !seen || est.RevisionTime.After(cur.RevisionTime) {
			latest[key] = est
		}
	}

	// 4. Join to actuals, keeping only causally forward-looking pairs:
	// report date 0-90 days after the estimate's announce date.
	actualByPeriod := make(map[periodKey]domain.ActualRecord, len(actuals))
	for _, act := range actuals {
		actualByPeriod[periodKey{ticker: act.Ticker, fiscalPeriodEnd: domain.DateOf(act.FiscalPeriodEnd)}] = act
	}

	type periodGroup struct {
		internalID int64
		actual     domain.ActualRecord
		rebased    []float64
		errors     []float64 // actual minus rebased estimate, for dispersion
	}
	groups := make(map[periodKey]*periodGroup)
	var order []periodKey

	for key, est := range latest {
		act, ok := actualByPeriod[key.periodKey]
		if !ok {
			continue
		}
		gap := domain.DateOf(act.ReportDate).Sub(domain.DateOf(est.AnnounceDate))
		if gap < 0 || gap > MaxEstimateAgeDays*24*time.Hour {
			continue
		}

		// 5. Rebase onto the report date's per-share basis using the
		// ratio of adjustment factors at the two dates. Corrects for
		// splits between estimate issuance and the report.
		value, ok := e.rebase(est.internalID, est.Value, est.AnnounceDate, act.ReportDate)
		if !ok {
			e.log.Debug().
				Str("ticker", est.Ticker).
				Time("announce", est.AnnounceDate).
				Msg("no trading day for adjustment factor, estimate dropped")
			continue
		}

		g, seen := groups[key.periodKey]
		if !seen {
			g = &periodGroup{internalID: est.internalID, actual: act}
			groups[key.periodKey] = g
			order = append(order, key.periodKey)
		}
		g.rebased = append(g.rebased, value)
		g.errors = append(g.errors, act.Value-value)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].ticker != order[j].ticker {
			return order[i].ticker < order[j].ticker
		}
		return order[i].fiscalPeriodEnd.Before(order[j].fiscalPeriodEnd)
	})

	// 6-8. Consensus, dispersion, surprise, announcement-day snapping.
	var scheduleGaps int
	records := make([]domain.SurpriseRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		act := g.actual

		if act.PeriodEndPrice == 0 {
			continue
		}

		consensus := stats.Median(g.rebased)
		surpriseValue := (act.Value - consensus) / act.PeriodEndPrice

		dispStd := stats.Stddev(g.errors)
		dispRange := 0.0
		if mean := stats.Mean(g.rebased); mean != 0 && len(g.rebased) > 1 {
			min, max := g.rebased[0], g.rebased[0]
			for _, v := range g.rebased[1:] {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			dispRange = (max - min) / mean
		}

		annDate, err := e.announcementDay(act)
		if err != nil {
			scheduleGaps++
			e.log.Warn().
				Str("ticker", key.ticker).
				Time("report_date", act.ReportDate).
				Msg("report date outside calendar horizon, record dropped")
			continue
		}

		records = append(records, domain.SurpriseRecord{
			InternalID:       g.internalID,
			Ticker:           key.ticker,
			FiscalPeriodEnd:  key.fiscalPeriodEnd,
			ReportDate:       domain.DateOf(act.ReportDate),
			AnnouncementDate: annDate,
			Actual:           act.Value,
			Consensus:        consensus,
			Surprise:         surpriseValue,
			NumEstimates:     len(g.rebased),
			DispersionStd:    dispStd,
			DispersionRange:  dispRange,
			Basis:            basisOf(key),
		})
	}
	if scheduleGaps > 0 {
		e.log.Warn().Int("dropped", scheduleGaps).Msg("surprise records dropped for schedule gaps")
	}

	return dedupeDualShareClasses(records)
}

// rebase converts an estimate issued on annDate to the per-share basis
// in force on repDate. Factors are sampled at the nearest trading day
// at or before each date. Entities with no factor series are treated as
// having no intervening corporate actions (factor 1).
func (e *Engine) rebase(internalID int64, value float64, annDate, repDate time.Time) (float64, bool) {
	fAnn, ok := e.factorAt(internalID, annDate)
	if !ok {
		return 0, false
	}
	fRep, ok := e.factorAt(internalID, repDate)
	if !ok {
		return 0, false
	}
	return value * (fRep / fAnn), true
}

func (e *Engine) factorAt(internalID int64, date time.Time) (float64, bool) {
	day, err := e.cal.NearestTradingDay(date, calendar.Backward)
	if err != nil {
		return 0, false
	}
	if f, ok := e.factors[factorKey{internalID: internalID, date: day}]; ok {
		return f, true
	}
	return 1.0, true
}

// announcementDay applies the after-close roll and snaps the result to
// the next trading day.
func (e *Engine) announcementDay(act domain.ActualRecord) (time.Time, error) {
	day := domain.DateOf(act.ReportDate)
	if act.ReportHour >= afterCloseHour {
		day = day.AddDate(0, 0, 1)
	}
	return e.cal.NearestTradingDay(day, calendar.Forward)
}

// dedupeDualShareClasses keeps exactly one record per
// (entity, announcement date). Dual share classes report the same
// results under two tickers; the chronologically latest fiscal period
// wins.
func dedupeDualShareClasses(records []domain.SurpriseRecord) []domain.SurpriseRecord {
	type entityDay struct {
		internalID int64
		date       time.Time
	}
	best := make(map[entityDay]domain.SurpriseRecord)
	var order []entityDay
	for _, r := range records {
		key := entityDay{internalID: r.InternalID, date: r.AnnouncementDate}
		cur, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = r
			continue
		}
		if r.FiscalPeriodEnd.After(cur.FiscalPeriodEnd) {
			best[key] = r
		}
	}

	out := make([]domain.SurpriseRecord, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InternalID != out[j].InternalID {
			return out[i].InternalID < out[j].InternalID
		}
		return out[i].AnnouncementDate.Before(out[j].AnnouncementDate)
	})
	return out
}
