package domain

import "time"

// EventWindowRow is one trading-day offset inside an announcement
// window. Offsets are row ordinals relative to the announcement row,
// not calendar distances, so every window spans the same number of
// trading days.
// Corresponds to event_windows table in ClickHouse.
type EventWindowRow struct {
	InternalID int64
	EventDate  time.Time // announcement trading date
	Offset     int       // -pre .. +post, 0 at the announcement row
	Date       time.Time // trading date of this offset

	Return    float64
	Benchmark float64 // market return for the same date

	// Buy-and-hold cumulation, restarted at the window start.
	CumReturn    float64
	CumBenchmark float64
	BHAR         float64

	// Window-level labels from the triggering announcement.
	Surprise         float64
	SurpriseQuintile int
	SizeQuintile     int // -1 when size breakpoints were unavailable
	Sector           string
}
