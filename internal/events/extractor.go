// Package events cuts announcement-aligned windows out of the assembled
// panel and computes buy-and-hold abnormal returns inside each window.
package events

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/stats"
)

// Default window shape, in trading-day rows around the announcement.
const (
	DefaultPreDays  = 10
	DefaultPostDays = 62
)

// Extractor cuts one window per announcement row. Windows are row
// ordinals within an entity's panel segment, so a window always holds
// exactly pre+post+1 trading days regardless of holidays.
type Extractor struct {
	pre  int
	post int
	log  zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{pre: DefaultPreDays, post: DefaultPostDays, log: log}
}

// WithWindow overrides the window shape.
func (e *Extractor) WithWindow(pre, post int) *Extractor {
	e.pre = pre
	e.post = post
	return e
}

// Extract walks the panel sorted by (entity, date) and emits the window
// rows for every announcement whose full window fits inside the
// entity's segment. Partial windows at segment edges are skipped, never
// padded.
func (e *Extractor) Extract(panel []domain.PanelRow) []domain.EventWindowRow {
	rows := make([]domain.PanelRow, len(panel))
	copy(rows, panel)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].InternalID != rows[j].InternalID {
			return rows[i].InternalID < rows[j].InternalID
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	quintileOf := announcementQuintiles(rows)

	var out []domain.EventWindowRow
	var skipped int
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && rows[i].InternalID == rows[start].InternalID {
			continue
		}
		seg := rows[start:i]
		for j, row := range seg {
			if !row.Announcement {
				continue
			}
			if j < e.pre || j+e.post >= len(seg) {
				skipped++
				continue
			}
			out = append(out, e.cutWindow(seg, j, quintileOf)...)
		}
		start = i
	}
	if skipped > 0 {
		e.log.Debug().Int("skipped", skipped).Msg("announcements with partial windows skipped")
	}
	return out
}

// cutWindow emits the rows for one announcement at segment index j.
// Cumulation restarts at the window's first row.
func (e *Extractor) cutWindow(seg []domain.PanelRow, j int, quintileOf map[announcementKey]int) []domain.EventWindowRow {
	ann := seg[j]
	surprise := 0.0
	if ann.Surprise != nil {
		surprise = *ann.Surprise
	}
	sizeQ := -1
	if ann.MCapQuintile != nil {
		sizeQ = *ann.MCapQuintile
	}
	surpriseQ := quintileOf[announcementKey{internalID: ann.InternalID, date: ann.Date}]

	out := make([]domain.EventWindowRow, 0, e.pre+e.post+1)
	cumRet, cumBench := 1.0, 1.0
	for k := j - e.pre; k <= j+e.post; k++ {
		row := seg[k]
		cumRet *= 1 + row.Return
		cumBench *= 1 + row.Mkt
		out = append(out, domain.EventWindowRow{
			InternalID:       row.InternalID,
			EventDate:        ann.Date,
			Offset:           k - j,
			Date:             row.Date,
			Return:           row.Return,
			Benchmark:        row.Mkt,
			CumReturn:        cumRet - 1,
			CumBenchmark:     cumBench - 1,
			BHAR:             (cumRet - 1) - (cumBench - 1),
			Surprise:         surprise,
			SurpriseQuintile: surpriseQ,
			SizeQuintile:     sizeQ,
			Sector:           ann.Sector,
		})
	}
	return out
}

type announcementKey struct {
	internalID int64
	date       time.Time
}

// announcementQuintiles ranks every announcement's surprise across the
// whole panel into quintiles. Ties resolve by input position, so the
// assignment is deterministic for a given panel ordering.
func announcementQuintiles(rows []domain.PanelRow) map[announcementKey]int {
	var keys []announcementKey
	var values []float64
	for _, row := range rows {
		if !row.Announcement || row.Surprise == nil {
			continue
		}
		keys = append(keys, announcementKey{internalID: row.InternalID, date: row.Date})
		values = append(values, *row.Surprise)
	}
	buckets := stats.Quintiles(values)
	out := make(map[announcementKey]int, len(keys))
	for i, key := range keys {
		out[key] = buckets[i]
	}
	return out
}
