package newsagg

import (
	"time"

	"equity-panel-lab/internal/domain"
)

type monthKey struct {
	year  int
	month time.Month
}

// MonthlyUniverse is the set of tickers with a price record in each
// calendar month. Wire entity tags outside the month's universe are
// vendor noise (delisted tickers, foreign listings, malformed tags)
// and are excluded from the daily counts.
type MonthlyUniverse struct {
	members map[monthKey]map[string]bool
}

// NewMonthlyUniverse builds the per-month ticker sets from the daily
// bar series.
func NewMonthlyUniverse(bars []domain.DailyBar) *MonthlyUniverse {
	members := make(map[monthKey]map[string]bool)
	for _, b := range bars {
		if b.Ticker == "" {
			continue
		}
		key := monthKey{year: b.Date.Year(), month: b.Date.Month()}
		set, ok := members[key]
		if !ok {
			set = make(map[string]bool)
			members[key] = set
		}
		set[b.Ticker] = true
	}
	return &MonthlyUniverse{members: members}
}

// Contains reports whether entity has a price record in date's month.
func (u *MonthlyUniverse) Contains(date time.Time, entity string) bool {
	return u.members[monthKey{year: date.Year(), month: date.Month()}][entity]
}

// FilterStories drops canonical records whose entity is outside the
// universe of the record's month.
func (u *MonthlyUniverse) FilterStories(records []domain.StoryRecord) []domain.StoryRecord {
	out := records[:0:0]
	for _, r := range records {
		if u.Contains(r.LocalDate, r.Entity) {
			out = append(out, r)
		}
	}
	return out
}

// FilterObservations drops read observations whose entity is outside
// the universe of the sighting's month.
func (u *MonthlyUniverse) FilterObservations(obs []ReadObservation) []ReadObservation {
	out := obs[:0:0]
	for _, o := range obs {
		if u.Contains(o.Time, o.Entity) {
			out = append(out, o)
		}
	}
	return out
}
