package newsagg

import (
	"sort"
	"strings"

	"equity-panel-lab/internal/domain"
)

// AnalyticsAggregator implements the analytics-vendor pipeline. Unlike
// the wire feed there is no first-pass/update distinction: the first
// chronological record per (story, entity) is canonical, and rows below
// the relevance floor or outside the market country are dropped.
type AnalyticsAggregator struct {
	session      *Session
	minRelevance int
	countryCode  string
}

// NewAnalyticsAggregator creates an aggregator with the study's
// standard filters (relevance >= 90, single country).
func NewAnalyticsAggregator(session *Session, minRelevance int, countryCode string) *AnalyticsAggregator {
	return &AnalyticsAggregator{
		session:      session,
		minRelevance: minRelevance,
		countryCode:  countryCode,
	}
}

// Aggregate reduces raw vendor rows to daily per-entity counts.
// Idempotent over its own canonical subset: aggregating an already
// deduplicated row set yields the same counts.
func (a *AnalyticsAggregator) Aggregate(rows []domain.AnalyticsRow) []domain.AnalyticsDailyCounts {
	kept := make([]domain.AnalyticsRow, 0, len(rows))
	for _, r := range rows {
		if r.Relevance < a.minRelevance {
			continue
		}
		if a.countryCode != "" && r.CountryCode != a.countryCode {
			continue
		}
		kept = append(kept, r)
	}

	// Chronological order with a stable tie-break so "first record per
	// story/entity" is deterministic across re-runs.
	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].TimestampUTC.Equal(kept[j].TimestampUTC) {
			return kept[i].TimestampUTC.Before(kept[j].TimestampUTC)
		}
		if kept[i].StoryID != kept[j].StoryID {
			return kept[i].StoryID < kept[j].StoryID
		}
		return kept[i].EntityID < kept[j].EntityID
	})

	type storyEntity struct {
		storyID  string
		entityID string
	}
	seen := make(map[storyEntity]bool)

	type agg struct {
		counts     domain.AnalyticsDailyCounts
		sentSum    float64
		groupCount map[string]int
	}
	byDay := make(map[DayEntity]*agg)
	var order []DayEntity

	for _, r := range kept {
		se := storyEntity{storyID: r.StoryID, entityID: r.EntityID}
		if seen[se] {
			continue
		}
		seen[se] = true

		local := a.session.Local(r.TimestampUTC)
		key := DayEntity{Date: domain.DateOf(local), Entity: r.EntityID}
		ag, ok := byDay[key]
		if !ok {
			ag = &agg{
				counts:     domain.AnalyticsDailyCounts{EntityID: r.EntityID, Date: key.Date},
				groupCount: make(map[string]int),
			}
			byDay[key] = ag
			order = append(order, key)
		}

		c := &ag.counts
		c.StoryCount++
		switch r.NewsType {
		case domain.NewsTypeFullArticle:
			c.FullArticleCount++
		case domain.NewsTypeTabular:
			c.TabularCount++
		case domain.NewsTypeFlash, domain.NewsTypeHotFlash:
			c.FlashCount++
		case domain.NewsTypePressRelease:
			c.PressReleaseCount++
		}
		if strings.Contains(r.NewsType, "SEC") {
			c.SECCount++
		}
		if a.session.PreOpen(local) {
			c.PreOpenCount++
		}
		if a.session.PostClose(local) {
			c.PostCloseCount++
		}
		ag.sentSum += r.Sentiment
		ag.groupCount[r.Group]++
	}

	out := make([]domain.AnalyticsDailyCounts, 0, len(order))
	for _, key := range order {
		ag := byDay[key]
		if ag.counts.StoryCount > 0 {
			ag.counts.MeanSentiment = ag.sentSum / float64(ag.counts.StoryCount)
		}
		ag.counts.TopGroup = mostFrequentGroup(ag.groupCount)
		out = append(out, ag.counts)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// mostFrequentGroup returns the modal taxonomy group; ties resolve to
// the lexicographically smallest name so output is stable.
func mostFrequentGroup(counts map[string]int) string {
	best := ""
	bestN := 0
	for group, n := range counts {
		if n > bestN || (n == bestN && group < best) {
			best = group
			bestN = n
		}
	}
	return best
}
