package panel

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
)

// rollingRows builds a sorted single-entity segment with the given
// daily returns, dated over consecutive weekdays.
func rollingRows(id int64, returns []float64) []domain.PanelRow {
	rows := make([]domain.PanelRow, 0, len(returns))
	date := domain.Day(2011, 1, 3) // Monday
	for _, r := range returns {
		rows = append(rows, domain.PanelRow{
			InternalID: id,
			Date:       date,
			Return:     r,
			LnRet:      math.Log(1 + r),
		})
		date = date.AddDate(0, 0, 1)
		for domain.IsWeekend(date) {
			date = date.AddDate(0, 0, 1)
		}
	}
	return rows
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRolling_NullPrefixes(t *testing.T) {
	rows := rollingRows(1, constant(70, 0.01))
	applyRollingFeatures(rows)

	for i, row := range rows {
		assert.Equal(t, i >= 4, row.CumRet5D != nil, "CumRet5D at row %d", i)
		assert.Equal(t, i >= 5, row.CumRet5DLag1 != nil, "CumRet5DLag1 at row %d", i)
		assert.Equal(t, i >= 19, row.CumRet20D != nil, "CumRet20D at row %d", i)
		assert.Equal(t, i >= 25, row.CumRet20DLag6 != nil, "CumRet20DLag6 at row %d", i)
		assert.Equal(t, i >= 59, row.WireNews60D != nil, "WireNews60D at row %d", i)
		assert.Equal(t, i >= 59, row.DeltaReadCount != nil, "DeltaReadCount at row %d", i)
	}
}

func TestRolling_CompoundingIdentity(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.015, 0.03, -0.005, 0.007}
	rows := rollingRows(1, returns)
	applyRollingFeatures(rows)

	// The 5-day window ending at row 4 compounds rows 0..4.
	want := 1.0
	for _, r := range returns[:5] {
		want *= 1 + r
	}
	want -= 1
	require.NotNil(t, rows[4].CumRet5D)
	assert.InDelta(t, want, *rows[4].CumRet5D, 1e-12)

	// The lagged value at row 5 is the unlagged value at row 4.
	require.NotNil(t, rows[5].CumRet5DLag1)
	assert.Equal(t, *rows[4].CumRet5D, *rows[5].CumRet5DLag1)
}

func TestRolling_WindowSlides(t *testing.T) {
	returns := []float64{0.10, 0.01, 0.01, 0.01, 0.01, 0.01}
	rows := rollingRows(1, returns)
	applyRollingFeatures(rows)

	// Row 5's window is rows 1..5 and no longer includes the 10% day.
	want := math.Pow(1.01, 5) - 1
	require.NotNil(t, rows[5].CumRet5D)
	assert.InDelta(t, want, *rows[5].CumRet5D, 1e-12)
}

func TestRolling_NoCrossEntityLeakage(t *testing.T) {
	first := rollingRows(1, constant(6, 0.01))
	second := rollingRows(2, constant(6, 0.05))
	rows := append(first, second...)
	applyRollingFeatures(rows)

	// The second entity restarts: its first four rows stay nil even
	// though the slice as a whole has enough history.
	for i := 6; i < 10; i++ {
		assert.Nil(t, rows[i].CumRet5D, "row %d", i)
	}
	require.NotNil(t, rows[10].CumRet5D)
	assert.InDelta(t, math.Pow(1.05, 5)-1, *rows[10].CumRet5D, 1e-12)

	// And the first entity's values never see the second's returns.
	require.NotNil(t, rows[4].CumRet5D)
	assert.InDelta(t, math.Pow(1.01, 5)-1, *rows[4].CumRet5D, 1e-12)
}

func TestRolling_NewsMeansAndDeltas(t *testing.T) {
	rows := rollingRows(1, constant(61, 0))
	for i := range rows {
		rows[i].WireNewsCount = 2
		rows[i].ReadCount = 10
	}
	rows[60].WireNewsCount = 12
	applyRollingFeatures(rows)

	r := rows[60]
	require.NotNil(t, r.WireNews60D)
	wantMean := (2.0*59 + 12) / 60
	assert.InDelta(t, wantMean, *r.WireNews60D, 1e-12)
	require.NotNil(t, r.DeltaWireNews)
	assert.InDelta(t, 12-wantMean, *r.DeltaWireNews, 1e-12)
	require.NotNil(t, r.LogDeltaWireNews)
	assert.InDelta(t, math.Log(13)-math.Log(1+wantMean), *r.LogDeltaWireNews, 1e-12)

	require.NotNil(t, r.ReadCount60D)
	assert.InDelta(t, 10, *r.ReadCount60D, 1e-12)
	require.NotNil(t, r.DeltaReadCount)
	assert.InDelta(t, 0, *r.DeltaReadCount, 1e-12)
}

func TestRolling_DatesStayOrdered(t *testing.T) {
	rows := rollingRows(1, constant(10, 0.01))
	var prev time.Time
	for _, r := range rows {
		assert.True(t, r.Date.After(prev))
		assert.False(t, domain.IsWeekend(r.Date))
		prev = r.Date
	}
}
