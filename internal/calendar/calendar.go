// Package calendar resolves arbitrary dates to valid exchange trading
// dates. It is the leaf dependency of every date-alignment step in the
// pipeline.
package calendar

import (
	"errors"
	"sort"
	"time"

	"equity-panel-lab/internal/domain"
)

// ErrNoTradingDay is returned when no trading date exists within the
// configured horizon of the input date.
var ErrNoTradingDay = errors.New("no trading day within horizon")

// Direction selects which side of the input date to search.
type Direction int

const (
	// Forward resolves to the smallest trading date >= the input.
	Forward Direction = iota
	// Backward resolves to the largest trading date <= the input.
	Backward
)

// DefaultHorizonDays bounds the search distance in calendar days.
// Announcement snapping in the source data never needs more than a long
// holiday weekend; anything farther points at a bad input date.
const DefaultHorizonDays = 5

// Calendar is an immutable, ordered, deduplicated set of trading dates
// for one exchange.
type Calendar struct {
	dates   []time.Time
	index   map[time.Time]struct{}
	horizon int
}

// New builds a calendar from raw vendor dates. Input is normalized to
// UTC midnight, deduplicated, and sorted. Saturdays and Sundays are
// dropped regardless of what the vendor emitted.
func New(dates []time.Time) *Calendar {
	index := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		day := domain.DateOf(d)
		if domain.IsWeekend(day) {
			continue
		}
		index[day] = struct{}{}
	}

	sorted := make([]time.Time, 0, len(index))
	for d := range index {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	return &Calendar{
		dates:   sorted,
		index:   index,
		horizon: DefaultHorizonDays,
	}
}

// WithHorizon sets the search horizon in calendar days.
func (c *Calendar) WithHorizon(days int) *Calendar {
	c.horizon = days
	return c
}

// Len returns the number of trading dates loaded.
func (c *Calendar) Len() int {
	return len(c.dates)
}

// Dates returns the ordered trading dates. Callers must not mutate the
// returned slice.
func (c *Calendar) Dates() []time.Time {
	return c.dates
}

// Contains reports whether d (normalized to its calendar date) is a
// trading date.
func (c *Calendar) Contains(d time.Time) bool {
	_, ok := c.index[domain.DateOf(d)]
	return ok
}

// NearestTradingDay resolves d to a trading date in the given direction.
// Returns ErrNoTradingDay when the nearest trading date lies more than
// the horizon away, which guards against input dates far outside the
// loaded calendar range.
func (c *Calendar) NearestTradingDay(d time.Time, dir Direction) (time.Time, error) {
	day := domain.DateOf(d)

	switch dir {
	case Forward:
		i := sort.Search(len(c.dates), func(i int) bool {
			return !c.dates[i].Before(day)
		})
		if i == len(c.dates) {
			return time.Time{}, ErrNoTradingDay
		}
		if int(c.dates[i].Sub(day).Hours()/24) > c.horizon {
			return time.Time{}, ErrNoTradingDay
		}
		return c.dates[i], nil

	case Backward:
		i := sort.Search(len(c.dates), func(i int) bool {
			return c.dates[i].After(day)
		})
		if i == 0 {
			return time.Time{}, ErrNoTradingDay
		}
		prev := c.dates[i-1]
		if int(day.Sub(prev).Hours()/24) > c.horizon {
			return time.Time{}, ErrNoTradingDay
		}
		return prev, nil
	}

	return time.Time{}, ErrNoTradingDay
}
