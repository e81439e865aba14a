package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// ActualStore is an in-memory implementation of storage.ActualStore.
type ActualStore struct {
	mu   sync.RWMutex
	data map[string]domain.ActualRecord // keyed by (ticker, fiscal period end)
}

// NewActualStore creates a new in-memory actual store.
func NewActualStore() *ActualStore {
	return &ActualStore{
		data: make(map[string]domain.ActualRecord),
	}
}

func actualKey(r domain.ActualRecord) string {
	return fmt.Sprintf("%s|%d", r.Ticker, r.FiscalPeriodEnd.Unix())
}

// InsertBulk adds actual records atomically. Fails entire batch on any duplicate.
func (s *ActualStore) InsertBulk(_ context.Context, records []domain.ActualRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.Ticker == "" || r.FiscalPeriodEnd.IsZero() {
			return storage.ErrInvalidInput
		}
		key := actualKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		s.data[actualKey(r)] = r
	}
	return nil
}

// GetByTicker retrieves all actuals for a ticker, ordered by fiscal period end ASC.
func (s *ActualStore) GetByTicker(_ context.Context, ticker string) ([]domain.ActualRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ActualRecord
	for _, r := range s.data {
		if r.Ticker == ticker {
			result = append(result, r)
		}
	}

	sortActuals(result)
	return result, nil
}

// GetAll retrieves every actual record.
func (s *ActualStore) GetAll(_ context.Context) ([]domain.ActualRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ActualRecord, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, r)
	}

	sortActuals(result)
	return result, nil
}

func sortActuals(records []domain.ActualRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Ticker != records[j].Ticker {
			return records[i].Ticker < records[j].Ticker
		}
		return records[i].FiscalPeriodEnd.Before(records[j].FiscalPeriodEnd)
	})
}

var _ storage.ActualStore = (*ActualStore)(nil)
