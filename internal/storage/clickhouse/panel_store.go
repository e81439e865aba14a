package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// PanelStore implements storage.PanelStore using ClickHouse.
type PanelStore struct {
	conn *Conn
}

// NewPanelStore creates a new PanelStore.
func NewPanelStore(conn *Conn) *PanelStore {
	return &PanelStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PanelStore = (*PanelStore)(nil)

// panelColumns is the single source of truth for column order in the
// insert, the selects and the scanner below.
const panelColumns = `
	internal_id, date, ticker, cusip, gvkey,
	ret, open, close, shares_out,
	mkt, mktrf, rf, sector, industry_group,
	wire_news_count, wire_flash_count, wire_pre_open_count, wire_post_close_count, read_count,
	analytics_news_count, full_article_count, tabular_count, news_flash_count,
	press_release_count, sec_count, analytics_pre_open, analytics_post_close,
	mean_sentiment, top_news_kind,
	announcement, surprise,
	num_analysts, ln_num_analysts, macro_ann_day, vix, delta_vix,
	ret_open_close, ret_overnight, abs_ret, abn_ret, neg_ret, neg_abn_ret, abs_abn_ret,
	mcap, ln_mcap, mcap_quintile, weekday,
	ln_ret, cum_ret_5d, cum_ret_5d_lag1, cum_ret_20d, cum_ret_20d_lag6,
	wire_news_60d, delta_wire_news, log_delta_wire_news,
	analytics_news_60d, delta_analytics_news, log_delta_analytics,
	read_count_60d, delta_read_count, log_delta_read_count
`

// InsertBulk adds panel rows. Fails entire batch on duplicate (internal_id, date).
func (s *PanelStore) InsertBulk(ctx context.Context, rows []domain.PanelRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		internalID int64
		date       time.Time
	}
	seen := make(map[key]struct{})
	for _, r := range rows {
		if r.InternalID == 0 || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{r.InternalID, domain.DateOf(r.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range rows {
		exists, err := s.exists(ctx, r.InternalID, domain.DateOf(r.Date))
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO firm_day_panel (`+panelColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.InternalID, domain.DateOf(r.Date), r.Ticker, r.CUSIP, r.GVKey,
			r.Return, r.Open, r.Close, r.SharesOut,
			r.Mkt, r.MktRF, r.RF, r.Sector, r.Group,
			uint32(r.WireNewsCount), uint32(r.WireFlashCount), uint32(r.WirePreOpenCount), uint32(r.WirePostCloseCount), r.ReadCount,
			uint32(r.AnalyticsNewsCount), uint32(r.FullArticleCount), uint32(r.TabularCount), uint32(r.NewsFlashCount),
			uint32(r.PressReleaseCount), uint32(r.SECCount), uint32(r.AnalyticsPreOpen), uint32(r.AnalyticsPostClose),
			r.MeanSentiment, r.MostFrequentNewsKind,
			r.Announcement, r.Surprise,
			uint32(r.NumAnalysts), r.LnNumAnalysts, r.MacroAnnDay, r.VIX, r.DeltaVIX,
			r.RetOpenClose, r.RetOvernight, r.AbsRet, r.AbnRet, r.NegRet, r.NegAbnRet, r.AbsAbnRet,
			r.MCap, r.LnMCap, quintilePtr(r.MCapQuintile), uint8(r.Weekday),
			r.LnRet, r.CumRet5D, r.CumRet5DLag1, r.CumRet20D, r.CumRet20DLag6,
			r.WireNews60D, r.DeltaWireNews, r.LogDeltaWireNews,
			r.AnalyticsNews60D, r.DeltaAnalyticsNews, r.LogDeltaAnalytics,
			r.ReadCount60D, r.DeltaReadCount, r.LogDeltaReadCount,
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

// GetByInternalID retrieves all rows for an entity, ordered by date ASC.
func (s *PanelStore) GetByInternalID(ctx context.Context, internalID int64) ([]domain.PanelRow, error) {
	query := `SELECT ` + panelColumns + `
		FROM firm_day_panel
		WHERE internal_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, internalID)
	if err != nil {
		return nil, fmt.Errorf("query by internal id: %w", err)
	}
	defer rows.Close()

	return scanPanelRows(rows)
}

// GetByDateRange retrieves rows within [start, end] (inclusive), ordered
// by internal_id, date ASC.
func (s *PanelStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.PanelRow, error) {
	query := `SELECT ` + panelColumns + `
		FROM firm_day_panel
		WHERE date >= ? AND date <= ?
		ORDER BY internal_id ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPanelRows(rows)
}

// exists checks if a row with the given key exists.
func (s *PanelStore) exists(ctx context.Context, internalID int64, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM firm_day_panel
		WHERE internal_id = ? AND date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, internalID, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPanelRows scans multiple rows.
func scanPanelRows(rows chRows) ([]domain.PanelRow, error) {
	var result []domain.PanelRow

	for rows.Next() {
		var r domain.PanelRow
		var wireNews, wireFlash, wirePre, wirePost uint32
		var aNews, aFull, aTabular, aFlash, aPress, aSEC, aPre, aPost uint32
		var numAnalysts uint32
		var quintile *int32
		var weekday uint8

		err := rows.Scan(
			&r.InternalID, &r.Date, &r.Ticker, &r.CUSIP, &r.GVKey,
			&r.Return, &r.Open, &r.Close, &r.SharesOut,
			&r.Mkt, &r.MktRF, &r.RF, &r.Sector, &r.Group,
			&wireNews, &wireFlash, &wirePre, &wirePost, &r.ReadCount,
			&aNews, &aFull, &aTabular, &aFlash,
			&aPress, &aSEC, &aPre, &aPost,
			&r.MeanSentiment, &r.MostFrequentNewsKind,
			&r.Announcement, &r.Surprise,
			&numAnalysts, &r.LnNumAnalysts, &r.MacroAnnDay, &r.VIX, &r.DeltaVIX,
			&r.RetOpenClose, &r.RetOvernight, &r.AbsRet, &r.AbnRet, &r.NegRet, &r.NegAbnRet, &r.AbsAbnRet,
			&r.MCap, &r.LnMCap, &quintile, &weekday,
			&r.LnRet, &r.CumRet5D, &r.CumRet5DLag1, &r.CumRet20D, &r.CumRet20DLag6,
			&r.WireNews60D, &r.DeltaWireNews, &r.LogDeltaWireNews,
			&r.AnalyticsNews60D, &r.DeltaAnalyticsNews, &r.LogDeltaAnalytics,
			&r.ReadCount60D, &r.DeltaReadCount, &r.LogDeltaReadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan panel row: %w", err)
		}

		r.Date = domain.DateOf(r.Date)
		r.WireNewsCount = int(wireNews)
		r.WireFlashCount = int(wireFlash)
		r.WirePreOpenCount = int(wirePre)
		r.WirePostCloseCount = int(wirePost)
		r.AnalyticsNewsCount = int(aNews)
		r.FullArticleCount = int(aFull)
		r.TabularCount = int(aTabular)
		r.NewsFlashCount = int(aFlash)
		r.PressReleaseCount = int(aPress)
		r.SECCount = int(aSEC)
		r.AnalyticsPreOpen = int(aPre)
		r.AnalyticsPostClose = int(aPost)
		r.NumAnalysts = int(numAnalysts)
		if quintile != nil {
			q := int(*quintile)
			r.MCapQuintile = &q
		}
		r.Weekday = time.Weekday(weekday)
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate panel rows: %w", err)
	}

	return result, nil
}

func quintilePtr(q *int) *int32 {
	if q == nil {
		return nil
	}
	v := int32(*q)
	return &v
}
