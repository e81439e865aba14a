package domain

import "time"

// Wire vendor event kinds. A story enters the feed with a first-pass
// event and may receive any number of update events afterwards.
const (
	WireEventFirstPass = "ADD_1STPASS"
	WireEventUpdate    = "UPDATE"
)

// FlashMarker is the reserved first character of flash headlines.
const FlashMarker = "*"

// WireEvent is one revision event from a wire-vendor daily extract.
// Capture times arrive in UTC; local market time is assigned during
// aggregation.
type WireEvent struct {
	StoryID        string
	Entities       []string // ticker tags, already split
	CaptureTimeUTC time.Time
	Headline       string
	Topics         []string // topic tags; READ<n> tags carry the cumulative read counter
	Event          string   // WireEventFirstPass or WireEventUpdate
	Language       string
}

// StoryRecord is the canonical record for one (story, entity) pair after
// deduplication: content of the latest update, capture time of the
// first pass.
type StoryRecord struct {
	StoryID       string
	Entity        string
	LocalDate     time.Time // calendar date of the first-pass capture in market local time
	FirstPassTime time.Time // first-pass capture time in market local time
	Headline      string
	Topics        []string
}

// WireDailyCounts is the wire-vendor aggregate at the
// (entity, local trading date) grain.
// Corresponds to wire_news_daily table in ClickHouse.
type WireDailyCounts struct {
	Entity         string
	Date           time.Time
	StoryCount     int
	FlashCount     int   // headlines starting with FlashMarker
	PreOpenCount   int   // first pass before the session open
	PostCloseCount int   // first pass at or after the session close
	ReadCountDelta int64 // summed per-story read counter deltas
}

// AnalyticsRow is one story/entity observation from the analytics vendor.
type AnalyticsRow struct {
	StoryID      string
	EntityID     string // vendor entity id, resolved via link table
	TimestampUTC time.Time
	Relevance    int
	NewsType     string
	Group        string // vendor taxonomy group of the event
	Sentiment    float64
	CountryCode  string
}

// Analytics vendor news types with dedicated panel counts.
const (
	NewsTypeFullArticle  = "FULL-ARTICLE"
	NewsTypeTabular      = "TABULAR-MATERIAL"
	NewsTypeFlash        = "NEWS-FLASH"
	NewsTypeHotFlash     = "HOT-NEWS-FLASH"
	NewsTypePressRelease = "PRESS-RELEASE"
)

// AnalyticsDailyCounts is the analytics-vendor aggregate at the
// (vendor entity, local trading date) grain.
// Corresponds to analytics_news_daily table in ClickHouse.
type AnalyticsDailyCounts struct {
	EntityID          string
	Date              time.Time
	StoryCount        int
	FullArticleCount  int
	TabularCount      int
	FlashCount        int
	PressReleaseCount int
	SECCount          int
	PreOpenCount      int
	PostCloseCount    int
	MeanSentiment     float64
	TopGroup          string // most frequent taxonomy group that day
}
