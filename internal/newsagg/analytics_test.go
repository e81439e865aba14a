package newsagg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
)

func analyticsRow(storyID, entityID string, ts time.Time, newsType string, sentiment float64) domain.AnalyticsRow {
	return domain.AnalyticsRow{
		StoryID:      storyID,
		EntityID:     entityID,
		TimestampUTC: ts,
		Relevance:    100,
		NewsType:     newsType,
		Group:        "earnings",
		Sentiment:    sentiment,
		CountryCode:  "US",
	}
}

func TestAnalyticsAggregate_TypeCountsAndSentiment(t *testing.T) {
	agg := NewAnalyticsAggregator(NewYorkSession(), 90, "US")

	rows := []domain.AnalyticsRow{
		analyticsRow("S1", "E1", utc(2024, 1, 10, 14, 0), domain.NewsTypeFullArticle, 0.5),
		analyticsRow("S2", "E1", utc(2024, 1, 10, 15, 0), domain.NewsTypeFlash, -0.1),
		analyticsRow("S3", "E1", utc(2024, 1, 10, 15, 30), "SEC-FILING", 0.2),
	}

	counts := agg.Aggregate(rows)
	require.Len(t, counts, 1)

	c := counts[0]
	assert.Equal(t, 3, c.StoryCount)
	assert.Equal(t, 1, c.FullArticleCount)
	assert.Equal(t, 1, c.FlashCount)
	assert.Equal(t, 1, c.SECCount)
	assert.InDelta(t, 0.2, c.MeanSentiment, 1e-12)
	assert.Equal(t, "earnings", c.TopGroup)
}

func TestAnalyticsAggregate_RelevanceAndCountryFilter(t *testing.T) {
	agg := NewAnalyticsAggregator(NewYorkSession(), 90, "US")

	low := analyticsRow("S1", "E1", utc(2024, 1, 10, 14, 0), domain.NewsTypeFullArticle, 0)
	low.Relevance = 50
	foreign := analyticsRow("S2", "E1", utc(2024, 1, 10, 14, 0), domain.NewsTypeFullArticle, 0)
	foreign.CountryCode = "GB"

	counts := agg.Aggregate([]domain.AnalyticsRow{low, foreign})
	assert.Empty(t, counts)
}

func TestAnalyticsAggregate_FirstRecordPerStoryEntity(t *testing.T) {
	agg := NewAnalyticsAggregator(NewYorkSession(), 90, "US")

	rows := []domain.AnalyticsRow{
		analyticsRow("S1", "E1", utc(2024, 1, 10, 18, 0), domain.NewsTypeFullArticle, 0.9),
		analyticsRow("S1", "E1", utc(2024, 1, 10, 14, 0), domain.NewsTypeFlash, 0.1),
		analyticsRow("S1", "E2", utc(2024, 1, 10, 14, 0), domain.NewsTypeFlash, 0.1),
	}

	counts := agg.Aggregate(rows)
	require.Len(t, counts, 2, "one row per entity for the day")

	byEntity := map[string]domain.AnalyticsDailyCounts{}
	for _, c := range counts {
		byEntity[c.EntityID] = c
	}

	// S1/E1 counted once, classified by its earliest (flash) record.
	assert.Equal(t, 1, byEntity["E1"].StoryCount)
	assert.Equal(t, 1, byEntity["E1"].FlashCount)
	assert.Equal(t, 0, byEntity["E1"].FullArticleCount)
	assert.Equal(t, 1, byEntity["E2"].StoryCount)
}

func TestAnalyticsAggregate_Idempotent(t *testing.T) {
	agg := NewAnalyticsAggregator(NewYorkSession(), 90, "US")

	rows := []domain.AnalyticsRow{
		analyticsRow("S1", "E1", utc(2024, 1, 10, 14, 0), domain.NewsTypeFullArticle, 0.5),
		analyticsRow("S2", "E1", utc(2024, 1, 10, 15, 0), domain.NewsTypeFlash, -0.1),
	}

	first := agg.Aggregate(rows)
	second := agg.Aggregate(rows)
	assert.Equal(t, first, second)
}

func TestAnalyticsAggregate_SessionWindows(t *testing.T) {
	agg := NewAnalyticsAggregator(NewYorkSession(), 90, "US")

	rows := []domain.AnalyticsRow{
		// 12:00 UTC = 07:00 New York, pre-open.
		analyticsRow("S1", "E1", utc(2024, 1, 10, 12, 0), domain.NewsTypeFullArticle, 0),
		// 22:00 UTC = 17:00 New York, post-close.
		analyticsRow("S2", "E1", utc(2024, 1, 10, 22, 0), domain.NewsTypeFullArticle, 0),
	}

	counts := agg.Aggregate(rows)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].PreOpenCount)
	assert.Equal(t, 1, counts[0].PostCloseCount)
}
