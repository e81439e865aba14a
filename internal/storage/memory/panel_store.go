package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// PanelStore is an in-memory implementation of storage.PanelStore.
type PanelStore struct {
	mu   sync.RWMutex
	data map[string]domain.PanelRow // keyed by (internal_id, date)
}

// NewPanelStore creates a new in-memory panel store.
func NewPanelStore() *PanelStore {
	return &PanelStore{
		data: make(map[string]domain.PanelRow),
	}
}

func panelKey(r domain.PanelRow) string {
	return fmt.Sprintf("%d|%d", r.InternalID, domain.DateOf(r.Date).Unix())
}

// InsertBulk adds panel rows. Fails entire batch on duplicate (internal_id, date).
func (s *PanelStore) InsertBulk(_ context.Context, rows []domain.PanelRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.InternalID == 0 || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := panelKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		s.data[panelKey(r)] = r
	}
	return nil
}

// GetByInternalID retrieves all rows for an entity, ordered by date ASC.
func (s *PanelStore) GetByInternalID(_ context.Context, internalID int64) ([]domain.PanelRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PanelRow
	for _, r := range s.data {
		if r.InternalID == internalID {
			result = append(result, r)
		}
	}

	sortPanelRows(result)
	return result, nil
}

// GetByDateRange retrieves rows within [start, end] (inclusive), ordered
// by internal_id, date ASC.
func (s *PanelStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.PanelRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := domain.DateOf(start), domain.DateOf(end)
	var result []domain.PanelRow
	for _, r := range s.data {
		d := domain.DateOf(r.Date)
		if !d.Before(from) && !d.After(to) {
			result = append(result, r)
		}
	}

	sortPanelRows(result)
	return result, nil
}

func sortPanelRows(rows []domain.PanelRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].InternalID != rows[j].InternalID {
			return rows[i].InternalID < rows[j].InternalID
		}
		return rows[i].Date.Before(rows[j].Date)
	})
}

var _ storage.PanelStore = (*PanelStore)(nil)
