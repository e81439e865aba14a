package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// WireDailyStore implements storage.WireDailyStore using ClickHouse.
type WireDailyStore struct {
	conn *Conn
}

// NewWireDailyStore creates a new WireDailyStore.
func NewWireDailyStore(conn *Conn) *WireDailyStore {
	return &WireDailyStore{conn: conn}
}

// Compile-time interface check.
var _ storage.WireDailyStore = (*WireDailyStore)(nil)

// InsertBulk adds daily counts. Fails entire batch on duplicate (entity, date).
func (s *WireDailyStore) InsertBulk(ctx context.Context, counts []domain.WireDailyCounts) error {
	if len(counts) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		entity string
		date   time.Time
	}
	seen := make(map[key]struct{})
	for _, c := range counts {
		if c.Entity == "" || c.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{c.Entity, domain.DateOf(c.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, c := range counts {
		exists, err := s.exists(ctx, c.Entity, domain.DateOf(c.Date))
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wire_news_daily (
			entity, date, story_count, flash_count, pre_open_count, post_close_count, read_count_delta
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range counts {
		err = batch.Append(
			c.Entity, domain.DateOf(c.Date),
			uint32(c.StoryCount), uint32(c.FlashCount),
			uint32(c.PreOpenCount), uint32(c.PostCloseCount),
			c.ReadCountDelta,
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

// GetByEntity retrieves all counts for an entity, ordered by date ASC.
func (s *WireDailyStore) GetByEntity(ctx context.Context, entity string) ([]domain.WireDailyCounts, error) {
	query := `
		SELECT entity, date, story_count, flash_count, pre_open_count, post_close_count, read_count_delta
		FROM wire_news_daily
		WHERE entity = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, entity)
	if err != nil {
		return nil, fmt.Errorf("query by entity: %w", err)
	}
	defer rows.Close()

	return scanWireDaily(rows)
}

// GetByDateRange retrieves counts within [start, end] (inclusive).
func (s *WireDailyStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.WireDailyCounts, error) {
	query := `
		SELECT entity, date, story_count, flash_count, pre_open_count, post_close_count, read_count_delta
		FROM wire_news_daily
		WHERE date >= ? AND date <= ?
		ORDER BY entity ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanWireDaily(rows)
}

// exists checks if counts for the given key exist.
func (s *WireDailyStore) exists(ctx context.Context, entity string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM wire_news_daily
		WHERE entity = ? AND date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, entity, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanWireDaily scans multiple rows.
func scanWireDaily(rows chRows) ([]domain.WireDailyCounts, error) {
	var counts []domain.WireDailyCounts

	for rows.Next() {
		var c domain.WireDailyCounts
		var storyCount, flashCount, preOpen, postClose uint32

		err := rows.Scan(
			&c.Entity, &c.Date,
			&storyCount, &flashCount, &preOpen, &postClose,
			&c.ReadCountDelta,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wire daily row: %w", err)
		}

		c.Date = domain.DateOf(c.Date)
		c.StoryCount = int(storyCount)
		c.FlashCount = int(flashCount)
		c.PreOpenCount = int(preOpen)
		c.PostCloseCount = int(postClose)
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wire daily rows: %w", err)
	}

	return counts, nil
}
