package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// AnalyticsDailyStore implements storage.AnalyticsDailyStore using ClickHouse.
type AnalyticsDailyStore struct {
	conn *Conn
}

// NewAnalyticsDailyStore creates a new AnalyticsDailyStore.
func NewAnalyticsDailyStore(conn *Conn) *AnalyticsDailyStore {
	return &AnalyticsDailyStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AnalyticsDailyStore = (*AnalyticsDailyStore)(nil)

// InsertBulk adds daily counts. Fails entire batch on duplicate (entity_id, date).
func (s *AnalyticsDailyStore) InsertBulk(ctx context.Context, counts []domain.AnalyticsDailyCounts) error {
	if len(counts) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		entityID string
		date     time.Time
	}
	seen := make(map[key]struct{})
	for _, c := range counts {
		if c.EntityID == "" || c.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{c.EntityID, domain.DateOf(c.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, c := range counts {
		exists, err := s.exists(ctx, c.EntityID, domain.DateOf(c.Date))
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO analytics_news_daily (
			entity_id, date, story_count, full_article_count, tabular_count, flash_count,
			press_release_count, sec_count, pre_open_count, post_close_count, mean_sentiment, top_group
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range counts {
		err = batch.Append(
			c.EntityID, domain.DateOf(c.Date),
			uint32(c.StoryCount), uint32(c.FullArticleCount), uint32(c.TabularCount), uint32(c.FlashCount),
			uint32(c.PressReleaseCount), uint32(c.SECCount), uint32(c.PreOpenCount), uint32(c.PostCloseCount),
			c.MeanSentiment, c.TopGroup,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

const selectAnalyticsDailyColumns = `
	SELECT entity_id, date, story_count, full_article_count, tabular_count, flash_count,
		press_release_count, sec_count, pre_open_count, post_close_count, mean_sentiment, top_group
	FROM analytics_news_daily
`

// GetByEntity retrieves all counts for a vendor entity, ordered by date ASC.
func (s *AnalyticsDailyStore) GetByEntity(ctx context.Context, entityID string) ([]domain.AnalyticsDailyCounts, error) {
	query := selectAnalyticsDailyColumns + `
		WHERE entity_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query by entity: %w", err)
	}
	defer rows.Close()

	return scanAnalyticsDaily(rows)
}

// GetByDateRange retrieves counts within [start, end] (inclusive).
func (s *AnalyticsDailyStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.AnalyticsDailyCounts, error) {
	query := selectAnalyticsDailyColumns + `
		WHERE date >= ? AND date <= ?
		ORDER BY entity_id ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanAnalyticsDaily(rows)
}

// exists checks if counts for the given key exist.
func (s *AnalyticsDailyStore) exists(ctx context.Context, entityID string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM analytics_news_daily
		WHERE entity_id = ? AND date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, entityID, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanAnalyticsDaily scans multiple rows.
func scanAnalyticsDaily(rows chRows) ([]domain.AnalyticsDailyCounts, error) {
	var counts []domain.AnalyticsDailyCounts

	for rows.Next() {
		var c domain.AnalyticsDailyCounts
		var story, full, tabular, flash, press, sec, preOpen, postClose uint32

		err := rows.Scan(
			&c.EntityID, &c.Date,
			&story, &full, &tabular, &flash,
			&press, &sec, &preOpen, &postClose,
			&c.MeanSentiment, &c.TopGroup,
		)
		if err != nil {
			return nil, fmt.Errorf("scan analytics daily row: %w", err)
		}

		c.Date = domain.DateOf(c.Date)
		c.StoryCount = int(story)
		c.FullArticleCount = int(full)
		c.TabularCount = int(tabular)
		c.FlashCount = int(flash)
		c.PressReleaseCount = int(press)
		c.SECCount = int(sec)
		c.PreOpenCount = int(preOpen)
		c.PostCloseCount = int(postClose)
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analytics daily rows: %w", err)
	}

	return counts, nil
}
