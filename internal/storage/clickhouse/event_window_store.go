package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// EventWindowStore implements storage.EventWindowStore using ClickHouse.
type EventWindowStore struct {
	conn *Conn
}

// NewEventWindowStore creates a new EventWindowStore.
func NewEventWindowStore(conn *Conn) *EventWindowStore {
	return &EventWindowStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventWindowStore = (*EventWindowStore)(nil)

const eventWindowColumns = `
	internal_id, event_date, day_offset, date, ret, benchmark,
	cum_ret, cum_benchmark, bhar,
	surprise, surprise_quintile, size_quintile, sector
`

// InsertBulk adds window rows. Fails entire batch on duplicate
// (internal_id, event_date, offset).
func (s *EventWindowStore) InsertBulk(ctx context.Context, rows []domain.EventWindowRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		internalID int64
		eventDate  time.Time
		offset     int
	}
	seen := make(map[key]struct{})
	for _, r := range rows {
		if r.InternalID == 0 || r.EventDate.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{r.InternalID, domain.DateOf(r.EventDate), r.Offset}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows, one probe per event
	probed := make(map[key]struct{})
	for _, r := range rows {
		k := key{r.InternalID, domain.DateOf(r.EventDate), 0}
		if _, done := probed[k]; done {
			continue
		}
		probed[k] = struct{}{}
		exists, err := s.exists(ctx, r.InternalID, domain.DateOf(r.EventDate))
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO event_windows (`+eventWindowColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.InternalID, domain.DateOf(r.EventDate), int32(r.Offset), domain.DateOf(r.Date),
			r.Return, r.Benchmark,
			r.CumReturn, r.CumBenchmark, r.BHAR,
			r.Surprise, int32(r.SurpriseQuintile), int32(r.SizeQuintile), r.Sector,
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

// GetByEvent retrieves one announcement's window, ordered by day_offset ASC.
func (s *EventWindowStore) GetByEvent(ctx context.Context, internalID int64, eventDate time.Time) ([]domain.EventWindowRow, error) {
	query := `SELECT ` + eventWindowColumns + `
		FROM event_windows
		WHERE internal_id = ? AND event_date = ?
		ORDER BY day_offset ASC
	`

	rows, err := s.conn.Query(ctx, query, internalID, domain.DateOf(eventDate))
	if err != nil {
		return nil, fmt.Errorf("query by event: %w", err)
	}
	defer rows.Close()

	return scanEventWindows(rows)
}

// GetAll retrieves every window row, ordered by internal_id, event_date, offset.
func (s *EventWindowStore) GetAll(ctx context.Context) ([]domain.EventWindowRow, error) {
	query := `SELECT ` + eventWindowColumns + `
		FROM event_windows
		ORDER BY internal_id ASC, event_date ASC, day_offset ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all event windows: %w", err)
	}
	defer rows.Close()

	return scanEventWindows(rows)
}

// exists checks if any row for the given announcement exists.
func (s *EventWindowStore) exists(ctx context.Context, internalID int64, eventDate time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM event_windows
		WHERE internal_id = ? AND event_date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, internalID, eventDate).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanEventWindows scans multiple rows.
func scanEventWindows(rows chRows) ([]domain.EventWindowRow, error) {
	var result []domain.EventWindowRow

	for rows.Next() {
		var r domain.EventWindowRow
		var offset, surpriseQ, sizeQ int32

		err := rows.Scan(
			&r.InternalID, &r.EventDate, &offset, &r.Date,
			&r.Return, &r.Benchmark,
			&r.CumReturn, &r.CumBenchmark, &r.BHAR,
			&r.Surprise, &surpriseQ, &sizeQ, &r.Sector,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event window row: %w", err)
		}

		r.EventDate = domain.DateOf(r.EventDate)
		r.Date = domain.DateOf(r.Date)
		r.Offset = int(offset)
		r.SurpriseQuintile = int(surpriseQ)
		r.SizeQuintile = int(sizeQ)
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event window rows: %w", err)
	}

	return result, nil
}
