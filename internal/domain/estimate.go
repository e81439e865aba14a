package domain

import "time"

// Per-share reporting bases.
const (
	BasisPrimary = "P"
	BasisDiluted = "D"
)

// Forecast horizons accepted by the reconciliation engine.
const (
	HorizonCurrentQuarter = 1
	HorizonNextQuarter    = 2
)

// EstimateRecord is one analyst EPS forecast for a fiscal period.
// Multiple revisions per analyst may exist; only the most recently
// revised one enters the consensus.
type EstimateRecord struct {
	Ticker          string    // vendor ticker, linked to InternalID via link table
	FiscalPeriodEnd time.Time
	EstimatorID     int64 // broker
	AnalystID       int64
	Value           float64
	Basis           string // BasisPrimary, BasisDiluted, or empty
	Horizon         int    // HorizonCurrentQuarter or HorizonNextQuarter
	AnnounceDate    time.Time
	RevisionTime    time.Time // last revision timestamp, used for latest-revision selection
}

// ActualRecord is the reported actual for an entity's fiscal period,
// the source of truth for announcement dates.
type ActualRecord struct {
	Ticker          string
	FiscalPeriodEnd time.Time
	ReportDate      time.Time
	ReportHour      int // local hour of the report; >= 16 rolls to the next day
	Value           float64
	PeriodEndPrice  float64 // close price per share at fiscal period end
}

// AdjustmentFactor is the cumulative share adjustment factor for an
// entity on a trading date. Ratios of factors across two dates rebase
// per-share values over intervening splits.
type AdjustmentFactor struct {
	InternalID int64
	Date       time.Time
	Factor     float64
}

// SurpriseRecord is the reconciled consensus-vs-actual outcome for one
// (entity, fiscal period): exactly one survives per key.
// Corresponds to earnings_surprises table in Postgres.
type SurpriseRecord struct {
	InternalID       int64
	Ticker           string
	FiscalPeriodEnd  time.Time
	ReportDate       time.Time // raw vendor report date
	AnnouncementDate time.Time // after-close roll applied, snapped to next trading day
	Actual           float64
	Consensus        float64 // median rebased estimate
	Surprise         float64 // (actual - consensus) / period-end price
	NumEstimates     int
	DispersionStd    float64 // std of analyst forecast errors
	DispersionRange  float64 // (max - min) / mean of rebased estimates
	Basis            string  // majority-vote reporting basis
}
