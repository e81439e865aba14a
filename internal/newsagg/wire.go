package newsagg

import (
	"sort"
	"strings"
	"time"

	"equity-panel-lab/internal/domain"
)

// Headlines matching these fragments are exchange housekeeping notices,
// not news, and are dropped before deduplication.
var defaultHeadlineExcludes = []string{"QUOTATION RESUMED", "TRADING RELEASED"}

// WireAggregator implements the wire-vendor pipeline. Each raw daily
// file moves through a fixed sequence of stages:
//
//	raw -> timezone normalized -> first pass isolated
//	    -> last update merged -> date assigned
//
// followed by cross-file deduplication and aggregation to the
// (entity, local date) grain.
type WireAggregator struct {
	session          *Session
	language         string
	headlineExcludes []string
}

// NewWireAggregator creates an aggregator for one market session.
// Only events in the given language are kept (vendor feeds are
// multilingual and stories repeat across translations).
func NewWireAggregator(session *Session, language string) *WireAggregator {
	return &WireAggregator{
		session:          session,
		language:         language,
		headlineExcludes: defaultHeadlineExcludes,
	}
}

// ProcessFile runs one raw daily extract through the per-file stages and
// returns canonical story records: one per (story, entity), carrying the
// first-pass capture time and the content of the latest update.
func (a *WireAggregator) ProcessFile(events []domain.WireEvent) []domain.StoryRecord {
	events = a.filterRaw(events)
	if len(events) == 0 {
		return nil
	}

	// Deterministic chronological order regardless of file row order.
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CaptureTimeUTC.Equal(events[j].CaptureTimeUTC) {
			return events[i].CaptureTimeUTC.Before(events[j].CaptureTimeUTC)
		}
		return events[i].StoryID < events[j].StoryID
	})

	firstPass := a.isolateFirstPass(events)

	// Keep only revision chains that have a first pass in this file.
	kept := events[:0:0]
	for _, e := range events {
		if _, ok := firstPass[e.StoryID]; ok {
			kept = append(kept, e)
		}
	}

	return a.mergeLastUpdate(kept, firstPass)
}

// filterRaw drops events with no entity tags, wrong language, or
// housekeeping headlines.
func (a *WireAggregator) filterRaw(events []domain.WireEvent) []domain.WireEvent {
	out := make([]domain.WireEvent, 0, len(events))
	for _, e := range events {
		if len(e.Entities) == 0 {
			continue
		}
		if a.language != "" && e.Language != a.language {
			continue
		}
		if a.excludedHeadline(e.Headline) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (a *WireAggregator) excludedHeadline(headline string) bool {
	for _, frag := range a.headlineExcludes {
		if strings.Contains(headline, frag) {
			return true
		}
	}
	return false
}

// isolateFirstPass maps story id to its first-pass capture time in
// market local time.
//
// Some historical extracts never tag first-pass events (the vendor gap
// spans several weeks around the turn of 2010/2011). Fallback: treat
// the first chronological record per story as the first pass. This is a
// heuristic inferred from the data, not a vendor contract.
func (a *WireAggregator) isolateFirstPass(events []domain.WireEvent) map[string]time.Time {
	firstPass := make(map[string]time.Time)
	for _, e := range events {
		if e.Event != domain.WireEventFirstPass {
			continue
		}
		if _, seen := firstPass[e.StoryID]; !seen {
			firstPass[e.StoryID] = a.session.Local(e.CaptureTimeUTC)
		}
	}
	if len(firstPass) > 0 {
		return firstPass
	}

	// Fallback for the untagged gap: events are already in
	// chronological order, so the first occurrence per story wins.
	for _, e := range events {
		if _, seen := firstPass[e.StoryID]; !seen {
			firstPass[e.StoryID] = a.session.Local(e.CaptureTimeUTC)
		}
	}
	return firstPass
}

// mergeLastUpdate keeps, per (local date, story), the content of the
// most recent revision while attaching the first-pass capture time, then
// explodes entity tags into per-entity canonical records.
func (a *WireAggregator) mergeLastUpdate(events []domain.WireEvent, firstPass map[string]time.Time) []domain.StoryRecord {
	type dayStory struct {
		date    time.Time
		storyID string
	}

	// Events are chronologically sorted; the last write per key is the
	// latest update.
	latest := make(map[dayStory]domain.WireEvent)
	var order []dayStory
	for _, e := range events {
		fp := firstPass[e.StoryID]
		key := dayStory{date: domain.DateOf(fp), storyID: e.StoryID}
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = e
	}

	var records []domain.StoryRecord
	seen := make(map[string]map[string]bool) // storyID -> entity
	for _, key := range order {
		e := latest[key]
		fp := firstPass[e.StoryID]
		for _, entity := range e.Entities {
			if seen[e.StoryID] == nil {
				seen[e.StoryID] = make(map[string]bool)
			}
			if seen[e.StoryID][entity] {
				continue
			}
			seen[e.StoryID][entity] = true
			records = append(records, domain.StoryRecord{
				StoryID:       e.StoryID,
				Entity:        entity,
				LocalDate:     key.date,
				FirstPassTime: fp,
				Headline:      e.Headline,
				Topics:        e.Topics,
			})
		}
	}
	return records
}

// DeduplicateAcrossFiles collapses records for the same (story, entity)
// that appear under two local dates. The UTC-to-local conversion can
// push a story across a local midnight relative to the extract it was
// read from; the earliest local date wins. Running this on an already
// deduplicated set is a no-op.
func DeduplicateAcrossFiles(records []domain.StoryRecord) []domain.StoryRecord {
	type storyEntity struct {
		storyID string
		entity  string
	}

	best := make(map[storyEntity]domain.StoryRecord)
	var order []storyEntity
	for _, r := range records {
		key := storyEntity{storyID: r.StoryID, entity: r.Entity}
		cur, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = r
			continue
		}
		if r.LocalDate.Before(cur.LocalDate) {
			best[key] = r
		}
	}

	out := make([]domain.StoryRecord, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LocalDate.Equal(out[j].LocalDate) {
			return out[i].LocalDate.Before(out[j].LocalDate)
		}
		if out[i].StoryID != out[j].StoryID {
			return out[i].StoryID < out[j].StoryID
		}
		return out[i].Entity < out[j].Entity
	})
	return out
}

// Aggregate reduces canonical story records to daily per-entity counts
// and merges the read-count deltas computed separately from the same
// revision stream.
func (a *WireAggregator) Aggregate(records []domain.StoryRecord, readDeltas map[DayEntity]int64) []domain.WireDailyCounts {
	counts := make(map[DayEntity]*domain.WireDailyCounts)
	var order []DayEntity

	for _, r := range records {
		key := DayEntity{Date: r.LocalDate, Entity: r.Entity}
		c, ok := counts[key]
		if !ok {
			c = &domain.WireDailyCounts{Entity: r.Entity, Date: r.LocalDate}
			counts[key] = c
			order = append(order, key)
		}
		c.StoryCount++
		if strings.HasPrefix(r.Headline, domain.FlashMarker) {
			c.FlashCount++
		}
		if a.session.PreOpen(r.FirstPassTime) {
			c.PreOpenCount++
		}
		if a.session.PostClose(r.FirstPassTime) {
			c.PostCloseCount++
		}
	}

	for key, delta := range readDeltas {
		c, ok := counts[key]
		if !ok {
			// Read activity on a day with no counted story (story was
			// assigned to an earlier date): still carries signal.
			c = &domain.WireDailyCounts{Entity: key.Entity, Date: key.Date}
			counts[key] = c
			order = append(order, key)
		}
		c.ReadCountDelta += delta
	}

	out := make([]domain.WireDailyCounts, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Entity < out[j].Entity
	})
	return out
}

// DayEntity keys daily aggregates.
type DayEntity struct {
	Date   time.Time
	Entity string
}
