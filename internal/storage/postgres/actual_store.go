package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// ActualStore implements storage.ActualStore using PostgreSQL.
type ActualStore struct {
	pool *Pool
}

// NewActualStore creates a new ActualStore.
func NewActualStore(pool *Pool) *ActualStore {
	return &ActualStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActualStore = (*ActualStore)(nil)

// InsertBulk adds actual records atomically. Fails entire batch on any duplicate.
func (s *ActualStore) InsertBulk(ctx context.Context, records []domain.ActualRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reported_actuals (
			ticker, fiscal_period_end, report_date, report_hour, value, period_end_price
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, r := range records {
		if r.Ticker == "" || r.FiscalPeriodEnd.IsZero() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			r.Ticker,
			r.FiscalPeriodEnd,
			r.ReportDate,
			r.ReportHour,
			r.Value,
			r.PeriodEndPrice,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert actual in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByTicker retrieves all actuals for a ticker, ordered by fiscal period end ASC.
func (s *ActualStore) GetByTicker(ctx context.Context, ticker string) ([]domain.ActualRecord, error) {
	query := `
		SELECT ticker, fiscal_period_end, report_date, report_hour, value, period_end_price
		FROM reported_actuals
		WHERE ticker = $1
		ORDER BY fiscal_period_end ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get actuals by ticker: %w", err)
	}
	defer rows.Close()

	return scanActuals(rows)
}

// GetAll retrieves every actual record.
func (s *ActualStore) GetAll(ctx context.Context) ([]domain.ActualRecord, error) {
	query := `
		SELECT ticker, fiscal_period_end, report_date, report_hour, value, period_end_price
		FROM reported_actuals
		ORDER BY ticker ASC, fiscal_period_end ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all actuals: %w", err)
	}
	defer rows.Close()

	return scanActuals(rows)
}

// scanActuals scans multiple rows into a slice of ActualRecord.
func scanActuals(rows pgx.Rows) ([]domain.ActualRecord, error) {
	var records []domain.ActualRecord

	for rows.Next() {
		var r domain.ActualRecord

		err := rows.Scan(
			&r.Ticker,
			&r.FiscalPeriodEnd,
			&r.ReportDate,
			&r.ReportHour,
			&r.Value,
			&r.PeriodEndPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan actual row: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actual rows: %w", err)
	}

	return records, nil
}
