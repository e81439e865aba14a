package vendorio

import (
	"strings"

	"equity-panel-lab/internal/domain"
)

// listSeparator splits multi-valued vendor cells (entity and topic tags).
const listSeparator = "|"

type wireEventRow struct {
	StoryID     string    `csv:"story_id"`
	CaptureTime Timestamp `csv:"capture_time"`
	Headline    string    `csv:"headline"`
	Tickers     string    `csv:"tickers"`
	Topics      string    `csv:"topics"`
	Event       string    `csv:"event"`
	Language    string    `csv:"language"`
}

// WireEvents reads one wire-vendor daily extract. Rows without a story
// id or capture time are skipped and counted.
func (l *Loader) WireEvents(path string) []domain.WireEvent {
	rows := decode[wireEventRow](l, path)
	out := make([]domain.WireEvent, 0, len(rows))
	for _, row := range rows {
		if row.StoryID == "" || row.CaptureTime.IsZero() {
			l.skipRow(path, "missing story id or capture time")
			continue
		}
		out = append(out, domain.WireEvent{
			StoryID:        row.StoryID,
			Entities:       splitList(row.Tickers),
			CaptureTimeUTC: row.CaptureTime.Time,
			Headline:       row.Headline,
			Topics:         splitList(row.Topics),
			Event:          row.Event,
			Language:       row.Language,
		})
	}
	return out
}

type analyticsRow struct {
	StoryID     string    `csv:"rp_story_id"`
	EntityID    string    `csv:"rp_entity_id"`
	Timestamp   Timestamp `csv:"timestamp_utc"`
	Relevance   int       `csv:"relevance"`
	NewsType    string    `csv:"news_type"`
	Group       string    `csv:"group"`
	Sentiment   float64   `csv:"sentiment"`
	CountryCode string    `csv:"country_code"`
}

// AnalyticsRows reads one analytics-vendor extract.
func (l *Loader) AnalyticsRows(path string) []domain.AnalyticsRow {
	rows := decode[analyticsRow](l, path)
	out := make([]domain.AnalyticsRow, 0, len(rows))
	for _, row := range rows {
		if row.StoryID == "" || row.EntityID == "" || row.Timestamp.IsZero() {
			l.skipRow(path, "missing story, entity or timestamp")
			continue
		}
		out = append(out, domain.AnalyticsRow{
			StoryID:      row.StoryID,
			EntityID:     row.EntityID,
			TimestampUTC: row.Timestamp.Time,
			Relevance:    row.Relevance,
			NewsType:     row.NewsType,
			Group:        row.Group,
			Sentiment:    row.Sentiment,
			CountryCode:  row.CountryCode,
		})
	}
	return out
}

type estimateRow struct {
	Ticker          string    `csv:"ticker"`
	FiscalPeriodEnd Date      `csv:"fpedats"`
	EstimatorID     int64     `csv:"estimator"`
	AnalystID       int64     `csv:"analys"`
	Value           float64   `csv:"value"`
	Basis           string    `csv:"pdf"`
	Horizon         int       `csv:"fpi"`
	AnnounceDate    Date      `csv:"anndats"`
	RevisionTime    Timestamp `csv:"revtims"`
}

// Estimates reads the analyst forecast detail file.
func (l *Loader) Estimates(path string) []domain.EstimateRecord {
	rows := decode[estimateRow](l, path)
	out := make([]domain.EstimateRecord, 0, len(rows))
	for _, row := range rows {
		if row.Ticker == "" || row.FiscalPeriodEnd.IsZero() || row.AnnounceDate.IsZero() {
			l.skipRow(path, "missing ticker or dates")
			continue
		}
		rev := row.RevisionTime.Time
		if rev.IsZero() {
			rev = row.AnnounceDate.Time
		}
		out = append(out, domain.EstimateRecord{
			Ticker:          row.Ticker,
			FiscalPeriodEnd: row.FiscalPeriodEnd.Time,
			EstimatorID:     row.EstimatorID,
			AnalystID:       row.AnalystID,
			Value:           row.Value,
			Basis:           row.Basis,
			Horizon:         row.Horizon,
			AnnounceDate:    row.AnnounceDate.Time,
			RevisionTime:    rev,
		})
	}
	return out
}

type actualRow struct {
	Ticker          string  `csv:"ticker"`
	FiscalPeriodEnd Date    `csv:"pends"`
	ReportDate      Date    `csv:"repdats"`
	ReportHour      int     `csv:"rephour"`
	Value           float64 `csv:"value"`
	PeriodEndPrice  float64 `csv:"prccq"`
}

// Actuals reads the reported actuals file.
func (l *Loader) Actuals(path string) []domain.ActualRecord {
	rows := decode[actualRow](l, path)
	out := make([]domain.ActualRecord, 0, len(rows))
	for _, row := range rows {
		if row.Ticker == "" || row.FiscalPeriodEnd.IsZero() || row.ReportDate.IsZero() {
			l.skipRow(path, "missing ticker or dates")
			continue
		}
		out = append(out, domain.ActualRecord{
			Ticker:          row.Ticker,
			FiscalPeriodEnd: row.FiscalPeriodEnd.Time,
			ReportDate:      row.ReportDate.Time,
			ReportHour:      row.ReportHour,
			Value:           row.Value,
			PeriodEndPrice:  row.PeriodEndPrice,
		})
	}
	return out
}

type dailyBarRow struct {
	InternalID int64   `csv:"permno"`
	Date       Date    `csv:"date"`
	Ticker     string  `csv:"ticker"`
	CUSIP      string  `csv:"cusip"`
	Open       Float   `csv:"openprc"`
	Close      Float   `csv:"prc"`
	Return     Float   `csv:"ret"`
	SharesOut  float64 `csv:"shrout"`
}

// DailyBars reads the daily return series. Missing prices and returns
// stay nil; the panel assembler decides what to drop.
func (l *Loader) DailyBars(path string) []domain.DailyBar {
	rows := decode[dailyBarRow](l, path)
	out := make([]domain.DailyBar, 0, len(rows))
	for _, row := range rows {
		if row.InternalID == 0 || row.Date.IsZero() {
			l.skipRow(path, "missing id or date")
			continue
		}
		out = append(out, domain.DailyBar{
			InternalID: row.InternalID,
			Date:       row.Date.Time,
			Ticker:     row.Ticker,
			CUSIP:      row.CUSIP,
			Open:       row.Open.Ptr(),
			Close:      row.Close.Ptr(),
			Return:     row.Return.Ptr(),
			SharesOut:  row.SharesOut,
		})
	}
	return out
}

type linkRow struct {
	InternalID int64  `csv:"internal_id"`
	ExternalID string `csv:"external_id"`
	ValidFrom  Date   `csv:"valid_from"`
	ValidTo    Date   `csv:"valid_to"`
	Score      int    `csv:"score"`
}

// Links reads a time-bounded identifier link table. An empty valid_to
// cell leaves the interval open-ended.
func (l *Loader) Links(path string) []domain.LinkRecord {
	rows := decode[linkRow](l, path)
	out := make([]domain.LinkRecord, 0, len(rows))
	for _, row := range rows {
		if row.ExternalID == "" || row.InternalID == 0 || row.ValidFrom.IsZero() {
			l.skipRow(path, "missing link fields")
			continue
		}
		out = append(out, domain.LinkRecord{
			InternalID: row.InternalID,
			ExternalID: row.ExternalID,
			ValidFrom:  row.ValidFrom.Time,
			ValidTo:    row.ValidTo.Time,
			Score:      row.Score,
		})
	}
	return out
}

type factorRow struct {
	Date  Date    `csv:"date"`
	MktRF float64 `csv:"mktrf"`
	SMB   float64 `csv:"smb"`
	HML   float64 `csv:"hml"`
	RMW   float64 `csv:"rmw"`
	CMA   float64 `csv:"cma"`
	RF    float64 `csv:"rf"`
}

// FactorReturns reads the daily market factor file.
func (l *Loader) FactorReturns(path string) []domain.FactorReturns {
	rows := decode[factorRow](l, path)
	out := make([]domain.FactorReturns, 0, len(rows))
	for _, row := range rows {
		if row.Date.IsZero() {
			l.skipRow(path, "missing date")
			continue
		}
		out = append(out, domain.FactorReturns{
			Date: row.Date.Time,
			MktRF: row.MktRF, SMB: row.SMB, HML: row.HML,
			RMW: row.RMW, CMA: row.CMA, RF: row.RF,
		})
	}
	return out
}

type breakpointRow struct {
	Month Date    `csv:"month"`
	P20   float64 `csv:"p20"`
	P40   float64 `csv:"p40"`
	P60   float64 `csv:"p60"`
	P80   float64 `csv:"p80"`
}

// SizeBreakpoints reads the monthly market-cap percentile file.
func (l *Loader) SizeBreakpoints(path string) []domain.SizeBreakpoints {
	rows := decode[breakpointRow](l, path)
	out := make([]domain.SizeBreakpoints, 0, len(rows))
	for _, row := range rows {
		if row.Month.IsZero() {
			l.skipRow(path, "missing month")
			continue
		}
		out = append(out, domain.SizeBreakpoints{
			Month: row.Month.Time,
			P20:   row.P20, P40: row.P40, P60: row.P60, P80: row.P80,
		})
	}
	return out
}

type sectorRow struct {
	GVKey     string `csv:"gvkey"`
	Sector    string `csv:"gsector"`
	Group     string `csv:"ggroup"`
	ValidFrom Date   `csv:"indfrom"`
	ValidTo   Date   `csv:"indthru"`
}

// Sectors reads the validity-windowed industry classification file.
func (l *Loader) Sectors(path string) []domain.SectorAssignment {
	rows := decode[sectorRow](l, path)
	out := make([]domain.SectorAssignment, 0, len(rows))
	for _, row := range rows {
		if row.GVKey == "" || row.Sector == "" || row.ValidFrom.IsZero() {
			l.skipRow(path, "missing classification fields")
			continue
		}
		out = append(out, domain.SectorAssignment{
			GVKey:     row.GVKey,
			Sector:    row.Sector,
			Group:     row.Group,
			ValidFrom: row.ValidFrom.Time,
			ValidTo:   row.ValidTo.Time,
		})
	}
	return out
}

type adjustmentFactorRow struct {
	InternalID int64   `csv:"permno"`
	Date       Date    `csv:"date"`
	Factor     float64 `csv:"cfacshr"`
}

// AdjustmentFactors reads the cumulative share adjustment series.
func (l *Loader) AdjustmentFactors(path string) []domain.AdjustmentFactor {
	rows := decode[adjustmentFactorRow](l, path)
	out := make([]domain.AdjustmentFactor, 0, len(rows))
	for _, row := range rows {
		if row.InternalID == 0 || row.Date.IsZero() || row.Factor == 0 {
			l.skipRow(path, "missing factor fields")
			continue
		}
		out = append(out, domain.AdjustmentFactor{
			InternalID: row.InternalID,
			Date:       row.Date.Time,
			Factor:     row.Factor,
		})
	}
	return out
}

type coverageRow struct {
	InternalID  int64 `csv:"permno"`
	Quarter     Date  `csv:"quarter"`
	NumAnalysts int   `csv:"numest"`
}

// Coverage reads the analyst coverage counts per entity-quarter.
func (l *Loader) Coverage(path string) []domain.CoverageRecord {
	rows := decode[coverageRow](l, path)
	out := make([]domain.CoverageRecord, 0, len(rows))
	for _, row := range rows {
		if row.InternalID == 0 || row.Quarter.IsZero() {
			l.skipRow(path, "missing id or quarter")
			continue
		}
		out = append(out, domain.CoverageRecord{
			InternalID:  row.InternalID,
			Quarter:     row.Quarter.Time,
			NumAnalysts: row.NumAnalysts,
		})
	}
	return out
}

type macroRow struct {
	Date Date   `csv:"date"`
	Name string `csv:"name"`
}

// MacroAnnouncements reads the macro release calendar.
func (l *Loader) MacroAnnouncements(path string) []domain.MacroAnnouncement {
	rows := decode[macroRow](l, path)
	out := make([]domain.MacroAnnouncement, 0, len(rows))
	for _, row := range rows {
		if row.Date.IsZero() {
			l.skipRow(path, "missing date")
			continue
		}
		out = append(out, domain.MacroAnnouncement{Date: row.Date.Time, Name: row.Name})
	}
	return out
}

type volatilityRow struct {
	Date  Date    `csv:"date"`
	Level float64 `csv:"vix"`
}

// Volatility reads the daily volatility index levels.
func (l *Loader) Volatility(path string) []domain.VolatilityPoint {
	rows := decode[volatilityRow](l, path)
	out := make([]domain.VolatilityPoint, 0, len(rows))
	for _, row := range rows {
		if row.Date.IsZero() {
			l.skipRow(path, "missing date")
			continue
		}
		out = append(out, domain.VolatilityPoint{Date: row.Date.Time, Level: row.Level})
	}
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
