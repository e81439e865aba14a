package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
)

// Week of 2024-03-04 (Mon) through 2024-03-08 (Fri), then the next Monday.
func testDates() []time.Time {
	return []time.Time{
		domain.Day(2024, 3, 4),
		domain.Day(2024, 3, 5),
		domain.Day(2024, 3, 6),
		domain.Day(2024, 3, 7),
		domain.Day(2024, 3, 8),
		domain.Day(2024, 3, 11),
	}
}

func TestNearestTradingDay_ExactMatch(t *testing.T) {
	cal := New(testDates())

	got, err := cal.NearestTradingDay(domain.Day(2024, 3, 6), Forward)
	require.NoError(t, err)
	assert.Equal(t, domain.Day(2024, 3, 6), got)

	got, err = cal.NearestTradingDay(domain.Day(2024, 3, 6), Backward)
	require.NoError(t, err)
	assert.Equal(t, domain.Day(2024, 3, 6), got)
}

func TestNearestTradingDay_WeekendSnaps(t *testing.T) {
	cal := New(testDates())

	// Saturday snaps forward to Monday, backward to Friday.
	sat := domain.Day(2024, 3, 9)

	fwd, err := cal.NearestTradingDay(sat, Forward)
	require.NoError(t, err)
	assert.Equal(t, domain.Day(2024, 3, 11), fwd)

	bwd, err := cal.NearestTradingDay(sat, Backward)
	require.NoError(t, err)
	assert.Equal(t, domain.Day(2024, 3, 8), bwd)
}

func TestNearestTradingDay_ForwardBackwardRoundTrip(t *testing.T) {
	cal := New(testDates())

	for _, input := range []time.Time{
		domain.Day(2024, 3, 3),
		domain.Day(2024, 3, 6),
		domain.Day(2024, 3, 9),
	} {
		fwd, err := cal.NearestTradingDay(input, Forward)
		require.NoError(t, err)
		assert.False(t, fwd.Before(input), "forward result must be >= input")
		assert.True(t, cal.Contains(fwd))
		assert.False(t, domain.IsWeekend(fwd))

		bwd, err := cal.NearestTradingDay(fwd, Backward)
		require.NoError(t, err)
		assert.Equal(t, fwd, bwd, "backward of a trading day is itself")
	}
}

func TestNearestTradingDay_HorizonExceeded(t *testing.T) {
	cal := New(testDates())

	_, err := cal.NearestTradingDay(domain.Day(2025, 6, 1), Forward)
	assert.ErrorIs(t, err, ErrNoTradingDay)

	_, err = cal.NearestTradingDay(domain.Day(2020, 1, 1), Backward)
	assert.ErrorIs(t, err, ErrNoTradingDay)

	// Widening the horizon makes a far date resolvable again.
	wide := New(testDates()).WithHorizon(10000)
	got, err := wide.NearestTradingDay(domain.Day(2025, 6, 1), Backward)
	require.NoError(t, err)
	assert.Equal(t, domain.Day(2024, 3, 11), got)
}

func TestNew_DropsWeekendsAndDuplicates(t *testing.T) {
	dates := append(testDates(),
		domain.Day(2024, 3, 6),  // duplicate
		domain.Day(2024, 3, 9),  // Saturday emitted by a sloppy vendor
		domain.Day(2024, 3, 10), // Sunday
	)
	cal := New(dates)

	assert.Equal(t, 6, cal.Len())
	assert.False(t, cal.Contains(domain.Day(2024, 3, 9)))
	assert.False(t, cal.Contains(domain.Day(2024, 3, 10)))
}
