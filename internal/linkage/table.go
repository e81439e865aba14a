// Package linkage resolves firm identifiers across vendor schemes
// through time-bounded link tables.
package linkage

import (
	"errors"
	"sort"
	"time"

	"equity-panel-lab/internal/domain"
)

// ErrNoLink is returned when no validity interval covers the as-of date.
// Callers treat this as exclusion, never as a fatal error.
var ErrNoLink = errors.New("no link valid at date")

// Table answers point-in-time identifier lookups for one link type
// (e.g. internal id <-> gvkey). Built once per run, never mutated.
type Table struct {
	byInternal map[int64][]domain.LinkRecord
	byExternal map[string][]domain.LinkRecord
	sampleEnd  time.Time
}

// NewTable builds a resolver from vendor link records.
//
// Records with a match-quality score above maxScore are discarded at
// load. Open-ended intervals are bounded by sampleEnd rather than
// infinity so that matches cannot leak into years outside the study
// period. Records per identifier are sorted by ValidFrom; when vendor
// data contains overlapping intervals for the same pair, the first
// record in that order wins. The tie-break is deliberate, not an
// accident of input order.
func NewTable(records []domain.LinkRecord, sampleEnd time.Time, maxScore int) *Table {
	t := &Table{
		byInternal: make(map[int64][]domain.LinkRecord),
		byExternal: make(map[string][]domain.LinkRecord),
		sampleEnd:  domain.DateOf(sampleEnd),
	}

	for _, r := range records {
		if r.Score > maxScore {
			continue
		}
		r.ValidFrom = domain.DateOf(r.ValidFrom)
		if r.Open() {
			r.ValidTo = t.sampleEnd
		} else {
			r.ValidTo = domain.DateOf(r.ValidTo)
		}
		t.byInternal[r.InternalID] = append(t.byInternal[r.InternalID], r)
		t.byExternal[r.ExternalID] = append(t.byExternal[r.ExternalID], r)
	}

	for id := range t.byInternal {
		sortByValidFrom(t.byInternal[id])
	}
	for id := range t.byExternal {
		sortByValidFrom(t.byExternal[id])
	}

	return t
}

func sortByValidFrom(recs []domain.LinkRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ValidFrom.Before(recs[j].ValidFrom)
	})
}

// ResolveExternal returns the external identifier mapped to internalID
// on asOf, or ErrNoLink.
func (t *Table) ResolveExternal(internalID int64, asOf time.Time) (string, error) {
	r, err := firstCovering(t.byInternal[internalID], asOf)
	if err != nil {
		return "", err
	}
	return r.ExternalID, nil
}

// ResolveInternal returns the internal identifier mapped to externalID
// on asOf, or ErrNoLink.
func (t *Table) ResolveInternal(externalID string, asOf time.Time) (int64, error) {
	r, err := firstCovering(t.byExternal[externalID], asOf)
	if err != nil {
		return 0, err
	}
	return r.InternalID, nil
}

// Record returns the full link record covering asOf for internalID.
func (t *Table) Record(internalID int64, asOf time.Time) (domain.LinkRecord, error) {
	return firstCovering(t.byInternal[internalID], asOf)
}

func firstCovering(recs []domain.LinkRecord, asOf time.Time) (domain.LinkRecord, error) {
	day := domain.DateOf(asOf)
	for _, r := range recs {
		if !day.Before(r.ValidFrom) && !day.After(r.ValidTo) {
			return r, nil
		}
	}
	return domain.LinkRecord{}, ErrNoLink
}
