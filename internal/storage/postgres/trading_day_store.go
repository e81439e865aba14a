package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"equity-panel-lab/internal/storage"
)

// TradingDayStore implements storage.TradingDayStore using PostgreSQL.
type TradingDayStore struct {
	pool *Pool
}

// NewTradingDayStore creates a new TradingDayStore.
func NewTradingDayStore(pool *Pool) *TradingDayStore {
	return &TradingDayStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradingDayStore = (*TradingDayStore)(nil)

// InsertBulk adds trading days atomically. Fails entire batch on any duplicate.
func (s *TradingDayStore) InsertBulk(ctx context.Context, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO trading_days (day) VALUES ($1)`

	for _, d := range days {
		if d.IsZero() {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, query, d); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trading day in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetRange retrieves trading days within [start, end] (inclusive), ordered ASC.
func (s *TradingDayStore) GetRange(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	query := `
		SELECT day FROM trading_days
		WHERE day >= $1 AND day <= $2
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trading days by range: %w", err)
	}
	defer rows.Close()

	return scanDays(rows)
}

// GetAll retrieves every trading day, ordered ASC.
func (s *TradingDayStore) GetAll(ctx context.Context) ([]time.Time, error) {
	query := `SELECT day FROM trading_days ORDER BY day ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all trading days: %w", err)
	}
	defer rows.Close()

	return scanDays(rows)
}

func scanDays(rows pgx.Rows) ([]time.Time, error) {
	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan trading day row: %w", err)
		}
		days = append(days, d.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trading day rows: %w", err)
	}
	return days, nil
}
