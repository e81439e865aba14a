package linkage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
)

var sampleEnd = domain.Day(2024, 12, 31)

func link(internal int64, external string, from, to time.Time, score int) domain.LinkRecord {
	return domain.LinkRecord{
		InternalID: internal,
		ExternalID: external,
		ValidFrom:  from,
		ValidTo:    to,
		Score:      score,
	}
}

func TestResolve_WithinInterval(t *testing.T) {
	tab := NewTable([]domain.LinkRecord{
		link(10001, "GV001", domain.Day(2010, 1, 1), domain.Day(2015, 12, 31), 0),
		link(10001, "GV002", domain.Day(2016, 1, 1), domain.Day(2020, 6, 30), 0),
	}, sampleEnd, 1)

	got, err := tab.ResolveExternal(10001, domain.Day(2014, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, "GV001", got)

	got, err = tab.ResolveExternal(10001, domain.Day(2016, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "GV002", got)

	// Boundary dates are inclusive on both ends.
	rec, err := tab.Record(10001, domain.Day(2015, 12, 31))
	require.NoError(t, err)
	assert.False(t, rec.ValidFrom.After(domain.Day(2015, 12, 31)))
	assert.False(t, rec.ValidTo.Before(domain.Day(2015, 12, 31)))
}

func TestResolve_NoCoverage(t *testing.T) {
	tab := NewTable([]domain.LinkRecord{
		link(10001, "GV001", domain.Day(2010, 1, 1), domain.Day(2015, 12, 31), 0),
	}, sampleEnd, 1)

	_, err := tab.ResolveExternal(10001, domain.Day(2009, 12, 31))
	assert.ErrorIs(t, err, ErrNoLink)

	_, err = tab.ResolveExternal(99999, domain.Day(2012, 1, 1))
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestResolve_OpenEndedBoundedBySampleEnd(t *testing.T) {
	tab := NewTable([]domain.LinkRecord{
		link(10002, "GV010", domain.Day(2018, 1, 1), time.Time{}, 0),
	}, sampleEnd, 1)

	got, err := tab.ResolveExternal(10002, sampleEnd)
	require.NoError(t, err)
	assert.Equal(t, "GV010", got)

	// One day past the sample end the open interval no longer matches.
	_, err = tab.ResolveExternal(10002, domain.Day(2025, 1, 1))
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestResolve_OverlapKeepsEarliestStart(t *testing.T) {
	// Vendor quality issue: two intervals cover the same date. The one
	// with the earlier ValidFrom wins deterministically.
	tab := NewTable([]domain.LinkRecord{
		link(10003, "GV200", domain.Day(2012, 6, 1), domain.Day(2016, 1, 1), 0),
		link(10003, "GV100", domain.Day(2012, 1, 1), domain.Day(2015, 12, 31), 0),
	}, sampleEnd, 1)

	got, err := tab.ResolveExternal(10003, domain.Day(2013, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, "GV100", got)
}

func TestResolve_ReverseDirection(t *testing.T) {
	tab := NewTable([]domain.LinkRecord{
		link(10004, "TICK", domain.Day(2010, 1, 1), time.Time{}, 0),
	}, sampleEnd, 1)

	got, err := tab.ResolveInternal("TICK", domain.Day(2020, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(10004), got)
}

func TestNewTable_ScoreFilter(t *testing.T) {
	tab := NewTable([]domain.LinkRecord{
		link(10005, "GOOD", domain.Day(2010, 1, 1), time.Time{}, 1),
		link(10006, "POOR", domain.Day(2010, 1, 1), time.Time{}, 4),
	}, sampleEnd, 1)

	_, err := tab.ResolveExternal(10005, domain.Day(2012, 1, 1))
	assert.NoError(t, err)

	_, err = tab.ResolveExternal(10006, domain.Day(2012, 1, 1))
	assert.ErrorIs(t, err, ErrNoLink)
}

// The property from the reconciliation pipeline: every successful
// resolution's interval contains the as-of date.
func TestResolve_IntervalContainment(t *testing.T) {
	recs := []domain.LinkRecord{
		link(1, "A", domain.Day(2010, 1, 1), domain.Day(2012, 1, 1), 0),
		link(1, "B", domain.Day(2012, 1, 2), time.Time{}, 0),
		link(2, "C", domain.Day(2015, 7, 1), domain.Day(2016, 7, 1), 0),
	}
	tab := NewTable(recs, sampleEnd, 1)

	for _, id := range []int64{1, 2} {
		for d := domain.Day(2009, 1, 1); d.Before(domain.Day(2025, 6, 1)); d = d.AddDate(0, 3, 0) {
			rec, err := tab.Record(id, d)
			if err != nil {
				continue
			}
			assert.False(t, domain.DateOf(d).Before(rec.ValidFrom))
			assert.False(t, domain.DateOf(d).After(rec.ValidTo))
			assert.False(t, rec.ValidTo.After(sampleEnd))
		}
	}
}
