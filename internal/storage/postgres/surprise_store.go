package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// SurpriseStore implements storage.SurpriseStore using PostgreSQL.
type SurpriseStore struct {
	pool *Pool
}

// NewSurpriseStore creates a new SurpriseStore.
func NewSurpriseStore(pool *Pool) *SurpriseStore {
	return &SurpriseStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SurpriseStore = (*SurpriseStore)(nil)

const insertSurpriseQuery = `
	INSERT INTO earnings_surprises (
		internal_id, ticker, fiscal_period_end, report_date, announcement_date,
		actual, consensus, surprise, num_estimates, dispersion_std, dispersion_range, basis
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Insert adds a surprise record. Returns ErrDuplicateKey if
// (internal_id, fiscal_period_end) exists.
func (s *SurpriseStore) Insert(ctx context.Context, r domain.SurpriseRecord) error {
	if r.InternalID == 0 || r.FiscalPeriodEnd.IsZero() {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertSurpriseQuery,
		r.InternalID,
		r.Ticker,
		r.FiscalPeriodEnd,
		r.ReportDate,
		r.AnnouncementDate,
		r.Actual,
		r.Consensus,
		r.Surprise,
		r.NumEstimates,
		r.DispersionStd,
		r.DispersionRange,
		r.Basis,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert surprise: %w", err)
	}
	return nil
}

// InsertBulk adds surprise records atomically. Fails entire batch on any duplicate.
func (s *SurpriseStore) InsertBulk(ctx context.Context, records []domain.SurpriseRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r.InternalID == 0 || r.FiscalPeriodEnd.IsZero() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertSurpriseQuery,
			r.InternalID,
			r.Ticker,
			r.FiscalPeriodEnd,
			r.ReportDate,
			r.AnnouncementDate,
			r.Actual,
			r.Consensus,
			r.Surprise,
			r.NumEstimates,
			r.DispersionStd,
			r.DispersionRange,
			r.Basis,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert surprise in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

const selectSurpriseColumns = `
	SELECT internal_id, ticker, fiscal_period_end, report_date, announcement_date,
		actual, consensus, surprise, num_estimates, dispersion_std, dispersion_range, basis
	FROM earnings_surprises
`

// GetByInternalID retrieves all records for an entity, ordered by announcement date ASC.
func (s *SurpriseStore) GetByInternalID(ctx context.Context, internalID int64) ([]domain.SurpriseRecord, error) {
	query := selectSurpriseColumns + `
		WHERE internal_id = $1
		ORDER BY announcement_date ASC
	`

	rows, err := s.pool.Query(ctx, query, internalID)
	if err != nil {
		return nil, fmt.Errorf("get surprises by internal id: %w", err)
	}
	defer rows.Close()

	return scanSurprises(rows)
}

// GetByDateRange retrieves records announced within [start, end] (inclusive).
func (s *SurpriseStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.SurpriseRecord, error) {
	query := selectSurpriseColumns + `
		WHERE announcement_date >= $1 AND announcement_date <= $2
		ORDER BY internal_id ASC, announcement_date ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get surprises by date range: %w", err)
	}
	defer rows.Close()

	return scanSurprises(rows)
}

// scanSurprises scans multiple rows into a slice of SurpriseRecord.
func scanSurprises(rows pgx.Rows) ([]domain.SurpriseRecord, error) {
	var records []domain.SurpriseRecord

	for rows.Next() {
		var r domain.SurpriseRecord

		err := rows.Scan(
			&r.InternalID,
			&r.Ticker,
			&r.FiscalPeriodEnd,
			&r.ReportDate,
			&r.AnnouncementDate,
			&r.Actual,
			&r.Consensus,
			&r.Surprise,
			&r.NumEstimates,
			&r.DispersionStd,
			&r.DispersionRange,
			&r.Basis,
		)
		if err != nil {
			return nil, fmt.Errorf("scan surprise row: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surprise rows: %w", err)
	}

	return records, nil
}
