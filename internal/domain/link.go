package domain

import "time"

// LinkRecord maps an internal security identifier to one external
// identifier scheme over a validity window.
// Corresponds to identifier_links table in Postgres.
type LinkRecord struct {
	InternalID int64     // permanent security number (permno-style)
	ExternalID string    // gvkey, vendor entity id, IBES ticker, or cusip
	ValidFrom  time.Time // first date the mapping is valid (inclusive)
	ValidTo    time.Time // last valid date (inclusive); zero means open-ended
	Score      int       // vendor match quality, 0 is best
}

// Open reports whether the record's validity window is open-ended.
// Open windows are resolved to the run's sample end date at query time,
// never to infinity.
func (r LinkRecord) Open() bool {
	return r.ValidTo.IsZero()
}
