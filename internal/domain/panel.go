package domain

import "time"

// DailyBar is one calendar-anchored return observation for an entity,
// the base series the panel is assembled on.
type DailyBar struct {
	InternalID int64
	Date       time.Time
	Ticker     string
	CUSIP      string
	Open       *float64 // missing when the vendor has no open print
	Close      *float64
	Return     *float64
	SharesOut  float64 // thousands of shares
}

// FactorReturns is one day of market factor returns.
type FactorReturns struct {
	Date  time.Time
	MktRF float64
	SMB   float64
	HML   float64
	RMW   float64
	CMA   float64
	RF    float64
}

// Mkt returns the total market return (excess plus risk-free).
func (f FactorReturns) Mkt() float64 {
	return f.MktRF + f.RF
}

// SizeBreakpoints carries the monthly 20/40/60/80 percentile
// market-cap cutoffs used for quintile assignment.
type SizeBreakpoints struct {
	Month time.Time // first day of month
	P20   float64
	P40   float64
	P60   float64
	P80   float64
}

// Cuts returns the breakpoints in ascending order for bucket assignment.
func (b SizeBreakpoints) Cuts() []float64 {
	return []float64{b.P20, b.P40, b.P60, b.P80}
}

// SectorAssignment is a validity-windowed industry classification for a
// gvkey. Rows outside the window are dropped from the panel.
type SectorAssignment struct {
	GVKey     string
	Sector    string
	Group     string
	ValidFrom time.Time
	ValidTo   time.Time // zero means open-ended
}

// CoverageRecord is the analyst coverage count for an entity-quarter.
type CoverageRecord struct {
	InternalID  int64
	Quarter     time.Time // first day of calendar quarter
	NumAnalysts int
}

// MacroAnnouncement marks a macro release date (FOMC, CPI, ...).
type MacroAnnouncement struct {
	Date time.Time
	Name string
}

// VolatilityPoint is one day of the volatility index level.
type VolatilityPoint struct {
	Date  time.Time
	Level float64
}

// PanelRow is one wide firm-day observation, the unit of the final
// panel. At most one row exists per (InternalID, Date) and Date is
// always a weekday trading date.
// Corresponds to firm_day_panel table in ClickHouse.
type PanelRow struct {
	InternalID int64
	Date       time.Time
	Ticker     string
	CUSIP      string
	GVKey      string

	// Returns and prices.
	Return    float64
	Open      *float64
	Close     float64
	SharesOut float64

	// Market factors.
	Mkt   float64
	MktRF float64
	RF    float64

	// Classification.
	Sector string
	Group  string

	// Wire-vendor news.
	WireNewsCount      int
	WireFlashCount     int
	WirePreOpenCount   int
	WirePostCloseCount int
	ReadCount          int64

	// Analytics-vendor news.
	AnalyticsNewsCount   int
	FullArticleCount     int
	TabularCount         int
	NewsFlashCount       int
	PressReleaseCount    int
	SECCount             int
	AnalyticsPreOpen     int
	AnalyticsPostClose   int
	MeanSentiment        *float64
	MostFrequentNewsKind string

	// Earnings announcement markers.
	Announcement bool
	Surprise     *float64

	// Coverage and macro covariates.
	NumAnalysts   int
	LnNumAnalysts float64
	MacroAnnDay   bool
	VIX           *float64
	DeltaVIX      *float64

	// Derived return fields.
	RetOpenClose *float64
	RetOvernight *float64
	AbsRet       float64
	AbnRet       float64
	NegRet       bool
	NegAbnRet    bool
	AbsAbnRet    float64

	// Size.
	MCap         float64
	LnMCap       float64
	MCapQuintile *int // 0 = smallest, nil when breakpoints are missing

	Weekday time.Weekday

	// Rolling features, strictly within-entity, nil until enough history.
	LnRet         float64
	CumRet5D      *float64
	CumRet5DLag1  *float64
	CumRet20D     *float64
	CumRet20DLag6 *float64

	WireNews60D         *float64
	DeltaWireNews       *float64
	LogDeltaWireNews    *float64
	AnalyticsNews60D    *float64
	DeltaAnalyticsNews  *float64
	LogDeltaAnalytics   *float64
	ReadCount60D        *float64
	DeltaReadCount      *float64
	LogDeltaReadCount   *float64
}
