package storage

import (
	"context"
	"time"

	"equity-panel-lab/internal/domain"
)

// Link table kinds. Each kind is an independent identifier keyspace
// mapped onto internal ids.
const (
	LinkKindTicker    = "ticker"    // estimate-vendor ticker
	LinkKindGVKey     = "gvkey"     // accounting-vendor gvkey
	LinkKindAnalytics = "analytics" // analytics-vendor entity id
)

// LinkStore provides access to identifier_links storage.
type LinkStore interface {
	// InsertBulk adds link records for one kind atomically. Returns
	// ErrDuplicateKey if (kind, internal_id, external_id, valid_from) exists.
	InsertBulk(ctx context.Context, kind string, records []domain.LinkRecord) error

	// GetByKind retrieves all links of a kind, ordered by internal_id, valid_from.
	GetByKind(ctx context.Context, kind string) ([]domain.LinkRecord, error)
}

// TradingDayStore provides access to trading_days storage.
type TradingDayStore interface {
	// InsertBulk adds trading days atomically. Returns ErrDuplicateKey on any duplicate date.
	InsertBulk(ctx context.Context, days []time.Time) error

	// GetRange retrieves trading days within [start, end] (inclusive), ordered ASC.
	GetRange(ctx context.Context, start, end time.Time) ([]time.Time, error)

	// GetAll retrieves every trading day, ordered ASC.
	GetAll(ctx context.Context) ([]time.Time, error)
}

// EstimateStore provides access to analyst_estimates storage.
type EstimateStore interface {
	// InsertBulk adds estimate records atomically.
	InsertBulk(ctx context.Context, records []domain.EstimateRecord) error

	// GetByTicker retrieves all estimates for a ticker, ordered by
	// fiscal period end, then revision time ASC.
	GetByTicker(ctx context.Context, ticker string) ([]domain.EstimateRecord, error)

	// GetAll retrieves every estimate record.
	GetAll(ctx context.Context) ([]domain.EstimateRecord, error)
}

// ActualStore provides access to reported_actuals storage.
type ActualStore interface {
	// InsertBulk adds actual records atomically. Returns ErrDuplicateKey
	// if (ticker, fiscal_period_end) exists.
	InsertBulk(ctx context.Context, records []domain.ActualRecord) error

	// GetByTicker retrieves all actuals for a ticker, ordered by fiscal period end ASC.
	GetByTicker(ctx context.Context, ticker string) ([]domain.ActualRecord, error)

	// GetAll retrieves every actual record.
	GetAll(ctx context.Context) ([]domain.ActualRecord, error)
}

// SurpriseStore provides access to earnings_surprises storage.
type SurpriseStore interface {
	// Insert adds a surprise record. Returns ErrDuplicateKey if
	// (internal_id, fiscal_period_end) exists.
	Insert(ctx context.Context, r domain.SurpriseRecord) error

	// InsertBulk adds surprise records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []domain.SurpriseRecord) error

	// GetByInternalID retrieves all records for an entity, ordered by announcement date ASC.
	GetByInternalID(ctx context.Context, internalID int64) ([]domain.SurpriseRecord, error)

	// GetByDateRange retrieves records announced within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.SurpriseRecord, error)
}

// WireDailyStore provides access to wire_news_daily storage.
type WireDailyStore interface {
	// InsertBulk adds daily counts. Fails entire batch on duplicate (entity, date).
	InsertBulk(ctx context.Context, counts []domain.WireDailyCounts) error

	// GetByEntity retrieves all counts for an entity, ordered by date ASC.
	GetByEntity(ctx context.Context, entity string) ([]domain.WireDailyCounts, error)

	// GetByDateRange retrieves counts within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.WireDailyCounts, error)
}

// AnalyticsDailyStore provides access to analytics_news_daily storage.
type AnalyticsDailyStore interface {
	// InsertBulk adds daily counts. Fails entire batch on duplicate (entity_id, date).
	InsertBulk(ctx context.Context, counts []domain.AnalyticsDailyCounts) error

	// GetByEntity retrieves all counts for a vendor entity, ordered by date ASC.
	GetByEntity(ctx context.Context, entityID string) ([]domain.AnalyticsDailyCounts, error)

	// GetByDateRange retrieves counts within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.AnalyticsDailyCounts, error)
}

// PanelStore provides access to firm_day_panel storage.
type PanelStore interface {
	// InsertBulk adds panel rows. Fails entire batch on duplicate (internal_id, date).
	InsertBulk(ctx context.Context, rows []domain.PanelRow) error

	// GetByInternalID retrieves all rows for an entity, ordered by date ASC.
	GetByInternalID(ctx context.Context, internalID int64) ([]domain.PanelRow, error)

	// GetByDateRange retrieves rows within [start, end] (inclusive),
	// ordered by internal_id, date ASC.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.PanelRow, error)
}

// EventWindowStore provides access to event_windows storage.
type EventWindowStore interface {
	// InsertBulk adds window rows. Fails entire batch on duplicate
	// (internal_id, event_date, offset).
	InsertBulk(ctx context.Context, rows []domain.EventWindowRow) error

	// GetByEvent retrieves one announcement's window, ordered by offset ASC.
	GetByEvent(ctx context.Context, internalID int64, eventDate time.Time) ([]domain.EventWindowRow, error)

	// GetAll retrieves every window row, ordered by internal_id, event_date, offset.
	GetAll(ctx context.Context) ([]domain.EventWindowRow, error)
}
