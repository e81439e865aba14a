package events

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
)

func f64(v float64) *float64 { return &v }

// panelSegment builds n consecutive weekday rows for one entity with a
// constant return and market return.
func panelSegment(id int64, n int, ret, mkt float64) []domain.PanelRow {
	rows := make([]domain.PanelRow, 0, n)
	date := domain.Day(2011, 1, 3)
	for i := 0; i < n; i++ {
		rows = append(rows, domain.PanelRow{
			InternalID: id,
			Date:       date,
			Return:     ret,
			Mkt:        mkt,
			Sector:     "45",
		})
		date = date.AddDate(0, 0, 1)
		for domain.IsWeekend(date) {
			date = date.AddDate(0, 0, 1)
		}
	}
	return rows
}

func markAnnouncement(rows []domain.PanelRow, i int, surprise float64) {
	rows[i].Announcement = true
	rows[i].Surprise = f64(surprise)
	rows[i].MCapQuintile = new(int)
	*rows[i].MCapQuintile = 3
}

func TestExtract_WindowShape(t *testing.T) {
	e := NewExtractor(zerolog.Nop()).WithWindow(2, 3)
	rows := panelSegment(1, 20, 0.01, 0.002)
	markAnnouncement(rows, 10, 0.05)

	out := e.Extract(rows)
	require.Len(t, out, 6) // pre + post + 1

	assert.Equal(t, -2, out[0].Offset)
	assert.Equal(t, 3, out[5].Offset)
	assert.Equal(t, rows[10].Date, out[2].EventDate)
	assert.Equal(t, rows[8].Date, out[0].Date)
	assert.Equal(t, rows[13].Date, out[5].Date)
	for _, w := range out {
		assert.Equal(t, rows[10].Date, w.EventDate)
		assert.InDelta(t, 0.05, w.Surprise, 1e-12)
		assert.Equal(t, 3, w.SizeQuintile)
		assert.Equal(t, "45", w.Sector)
	}
}

func TestExtract_PartialWindowsSkipped(t *testing.T) {
	e := NewExtractor(zerolog.Nop()).WithWindow(2, 3)
	rows := panelSegment(1, 10, 0.01, 0.002)
	markAnnouncement(rows, 1, 0.05) // only 1 row of history
	markAnnouncement(rows, 8, 0.05) // only 1 row of future

	out := e.Extract(rows)
	assert.Empty(t, out)
}

func TestExtract_BHARRestartsAtWindowStart(t *testing.T) {
	e := NewExtractor(zerolog.Nop()).WithWindow(1, 2)
	rows := panelSegment(1, 30, 0.01, 0.002)
	markAnnouncement(rows, 10, 0.05)
	markAnnouncement(rows, 20, 0.05)

	out := e.Extract(rows)
	require.Len(t, out, 8)

	// First row of each window compounds exactly one day.
	for _, i := range []int{0, 4} {
		assert.InDelta(t, 0.01, out[i].CumReturn, 1e-12)
		assert.InDelta(t, 0.002, out[i].CumBenchmark, 1e-12)
	}

	// Last row of the first window compounds 4 days from the window
	// start, not from the panel start.
	last := out[3]
	assert.Equal(t, 2, last.Offset)
	assert.InDelta(t, math.Pow(1.01, 4)-1, last.CumReturn, 1e-12)
	assert.InDelta(t, math.Pow(1.002, 4)-1, last.CumBenchmark, 1e-12)
	assert.InDelta(t, last.CumReturn-last.CumBenchmark, last.BHAR, 1e-12)
}

func TestExtract_SurpriseQuintilesAcrossAnnouncements(t *testing.T) {
	e := NewExtractor(zerolog.Nop()).WithWindow(1, 1)
	var rows []domain.PanelRow
	surprises := []float64{-0.04, -0.02, -0.01, 0.0, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06}
	for i, s := range surprises {
		seg := panelSegment(int64(i+1), 5, 0.01, 0.002)
		markAnnouncement(seg, 2, s)
		rows = append(rows, seg...)
	}

	out := e.Extract(rows)
	require.Len(t, out, 30)

	counts := make(map[int]int)
	for _, w := range out {
		if w.Offset == 0 {
			counts[w.SurpriseQuintile]++
		}
	}
	// 10 announcements over 5 quintiles: 2 each.
	for q := 0; q < 5; q++ {
		assert.Equal(t, 2, counts[q], "quintile %d", q)
	}

	// The most negative surprise lands in quintile 0, the largest in 4.
	for _, w := range out {
		if w.Offset != 0 {
			continue
		}
		switch w.Surprise {
		case -0.04:
			assert.Equal(t, 0, w.SurpriseQuintile)
		case 0.06:
			assert.Equal(t, 4, w.SurpriseQuintile)
		}
	}
}

func TestExtract_WindowsStayWithinEntity(t *testing.T) {
	e := NewExtractor(zerolog.Nop()).WithWindow(3, 3)
	first := panelSegment(1, 5, 0.01, 0.002)
	second := panelSegment(2, 20, 0.03, 0.002)
	// Announcement early in the second entity: enough rows exist in the
	// combined slice, but not within the entity's own segment.
	markAnnouncement(second, 1, 0.05)
	markAnnouncement(second, 10, 0.05)

	out := e.Extract(append(first, second...))
	require.Len(t, out, 7)
	for _, w := range out {
		assert.Equal(t, int64(2), w.InternalID)
		assert.InDelta(t, 0.03, w.Return, 1e-12)
	}
}

func TestExtract_MissingSizeQuintileLabel(t *testing.T) {
	e := NewExtractor(zerolog.Nop()).WithWindow(1, 1)
	rows := panelSegment(1, 10, 0.01, 0.002)
	rows[5].Announcement = true
	rows[5].Surprise = f64(0.02)

	out := e.Extract(rows)
	require.Len(t, out, 3)
	assert.Equal(t, -1, out[0].SizeQuintile)
}
