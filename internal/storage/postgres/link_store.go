package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// LinkStore implements storage.LinkStore using PostgreSQL.
type LinkStore struct {
	pool *Pool
}

// NewLinkStore creates a new LinkStore.
func NewLinkStore(pool *Pool) *LinkStore {
	return &LinkStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LinkStore = (*LinkStore)(nil)

// InsertBulk adds link records for one kind atomically. Fails entire batch on any duplicate.
func (s *LinkStore) InsertBulk(ctx context.Context, kind string, records []domain.LinkRecord) error {
	if kind == "" {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO identifier_links (
			kind, internal_id, external_id, valid_from, valid_to, score
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, r := range records {
		if r.ExternalID == "" || r.InternalID == 0 {
			return storage.ErrInvalidInput
		}
		var validTo *time.Time
		if !r.ValidTo.IsZero() {
			validTo = &r.ValidTo
		}
		_, err := tx.Exec(ctx, query,
			kind,
			r.InternalID,
			r.ExternalID,
			r.ValidFrom,
			validTo,
			r.Score,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert link in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByKind retrieves all links of a kind, ordered by internal_id, valid_from.
func (s *LinkStore) GetByKind(ctx context.Context, kind string) ([]domain.LinkRecord, error) {
	query := `
		SELECT internal_id, external_id, valid_from, valid_to, score
		FROM identifier_links
		WHERE kind = $1
		ORDER BY internal_id ASC, valid_from ASC
	`

	rows, err := s.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("get links by kind: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// scanLinks scans multiple rows into a slice of LinkRecord.
func scanLinks(rows pgx.Rows) ([]domain.LinkRecord, error) {
	var links []domain.LinkRecord

	for rows.Next() {
		var link domain.LinkRecord
		var validTo *time.Time

		err := rows.Scan(
			&link.InternalID,
			&link.ExternalID,
			&link.ValidFrom,
			&validTo,
			&link.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		if validTo != nil {
			link.ValidTo = *validTo
		}

		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}

	return links, nil
}
