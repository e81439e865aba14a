package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// EstimateStore implements storage.EstimateStore using PostgreSQL.
type EstimateStore struct {
	pool *Pool
}

// NewEstimateStore creates a new EstimateStore.
func NewEstimateStore(pool *Pool) *EstimateStore {
	return &EstimateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EstimateStore = (*EstimateStore)(nil)

// InsertBulk adds estimate records atomically.
func (s *EstimateStore) InsertBulk(ctx context.Context, records []domain.EstimateRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO analyst_estimates (
			ticker, fiscal_period_end, estimator_id, analyst_id, value, basis, horizon, announce_date, revision_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, r := range records {
		if r.Ticker == "" || r.FiscalPeriodEnd.IsZero() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			r.Ticker,
			r.FiscalPeriodEnd,
			r.EstimatorID,
			r.AnalystID,
			r.Value,
			r.Basis,
			r.Horizon,
			r.AnnounceDate,
			r.RevisionTime,
		)
		if err != nil {
			return fmt.Errorf("insert estimate in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByTicker retrieves all estimates for a ticker, ordered by fiscal
// period end, then revision time ASC.
func (s *EstimateStore) GetByTicker(ctx context.Context, ticker string) ([]domain.EstimateRecord, error) {
	query := `
		SELECT ticker, fiscal_period_end, estimator_id, analyst_id, value, basis, horizon, announce_date, revision_time
		FROM analyst_estimates
		WHERE ticker = $1
		ORDER BY fiscal_period_end ASC, revision_time ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get estimates by ticker: %w", err)
	}
	defer rows.Close()

	return scanEstimates(rows)
}

// GetAll retrieves every estimate record.
func (s *EstimateStore) GetAll(ctx context.Context) ([]domain.EstimateRecord, error) {
	query := `
		SELECT ticker, fiscal_period_end, estimator_id, analyst_id, value, basis, horizon, announce_date, revision_time
		FROM analyst_estimates
		ORDER BY ticker ASC, fiscal_period_end ASC, revision_time ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all estimates: %w", err)
	}
	defer rows.Close()

	return scanEstimates(rows)
}

// scanEstimates scans multiple rows into a slice of EstimateRecord.
func scanEstimates(rows pgx.Rows) ([]domain.EstimateRecord, error) {
	var records []domain.EstimateRecord

	for rows.Next() {
		var r domain.EstimateRecord

		err := rows.Scan(
			&r.Ticker,
			&r.FiscalPeriodEnd,
			&r.EstimatorID,
			&r.AnalystID,
			&r.Value,
			&r.Basis,
			&r.Horizon,
			&r.AnnounceDate,
			&r.RevisionTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan estimate row: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate rows: %w", err)
	}

	return records, nil
}
