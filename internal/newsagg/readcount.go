package newsagg

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"equity-panel-lab/internal/domain"
)

// readTopicPattern matches the vendor's cumulative readership topic
// tags, e.g. READ500.
var readTopicPattern = regexp.MustCompile(`^READ(\d+)$`)

// ReadObservation is one cumulative read counter sighting for a
// (story, entity) pair, stamped with the market local capture time of
// the revision event that carried it.
type ReadObservation struct {
	Time    time.Time
	StoryID string
	Entity  string
	Counter int64
}

// ExtractReadCount returns the largest READ<n> counter among a story's
// topic tags, or false when the story carries no readership tag.
func ExtractReadCount(topics []string) (int64, bool) {
	var best int64
	found := false
	for _, topic := range topics {
		m := readTopicPattern.FindStringSubmatch(topic)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if !found || n > best {
			best = n
			found = true
		}
	}
	return best, found
}

// ObserveReadCounts extracts counter sightings from one raw daily
// extract. The readership pass runs on the full revision stream, before
// first-pass isolation and cross-file deduplication: an update event
// whose story first passed in an earlier file still moves the counter,
// so dropping it would lose every read after the story's first day.
// Only the raw filters (entity tags, language, housekeeping headlines)
// apply.
func (a *WireAggregator) ObserveReadCounts(events []domain.WireEvent) []ReadObservation {
	var obs []ReadObservation
	for _, e := range a.filterRaw(events) {
		counter, ok := ExtractReadCount(e.Topics)
		if !ok {
			continue
		}
		local := a.session.Local(e.CaptureTimeUTC)
		for _, entity := range e.Entities {
			obs = append(obs, ReadObservation{
				Time:    local,
				StoryID: e.StoryID,
				Entity:  entity,
				Counter: counter,
			})
		}
	}
	return obs
}

// DiffReadCounts converts cumulative read counters into daily deltas
// and sums them per (local date, entity).
//
// The vendor counter is monotone non-decreasing across successive
// revision events of the same story, so sightings are ordered by
// capture time before differencing. The first observation of a
// (story, entity) pair has no prior baseline, so its full counter value
// is the delta.
func DiffReadCounts(obs []ReadObservation) map[DayEntity]int64 {
	sorted := make([]ReadObservation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StoryID != sorted[j].StoryID {
			return sorted[i].StoryID < sorted[j].StoryID
		}
		if sorted[i].Entity != sorted[j].Entity {
			return sorted[i].Entity < sorted[j].Entity
		}
		return sorted[i].Time.Before(sorted[j].Time)
	})

	type storyEntity struct {
		storyID string
		entity  string
	}

	deltas := make(map[DayEntity]int64)
	prev := make(map[storyEntity]int64)
	for _, o := range sorted {
		key := storyEntity{storyID: o.StoryID, entity: o.Entity}
		delta := o.Counter
		if base, seen := prev[key]; seen {
			delta = o.Counter - base
		}
		prev[key] = o.Counter
		deltas[DayEntity{Date: domain.DateOf(o.Time), Entity: o.Entity}] += delta
	}
	return deltas
}
