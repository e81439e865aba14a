package memory

import (
	"context"
	"sort"
	"sync"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// EstimateStore is an in-memory implementation of storage.EstimateStore.
// Estimate detail rows have no natural unique key (the same analyst may
// file several revisions), so the store is a plain append log.
type EstimateStore struct {
	mu   sync.RWMutex
	data []domain.EstimateRecord
}

// NewEstimateStore creates a new in-memory estimate store.
func NewEstimateStore() *EstimateStore {
	return &EstimateStore{}
}

// InsertBulk adds estimate records atomically.
func (s *EstimateStore) InsertBulk(_ context.Context, records []domain.EstimateRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r.Ticker == "" || r.FiscalPeriodEnd.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, records...)
	return nil
}

// GetByTicker retrieves all estimates for a ticker, ordered by fiscal
// period end, then revision time ASC.
func (s *EstimateStore) GetByTicker(_ context.Context, ticker string) ([]domain.EstimateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.EstimateRecord
	for _, r := range s.data {
		if r.Ticker == ticker {
			result = append(result, r)
		}
	}

	sortEstimates(result)
	return result, nil
}

// GetAll retrieves every estimate record.
func (s *EstimateStore) GetAll(_ context.Context) ([]domain.EstimateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.EstimateRecord, len(s.data))
	copy(result, s.data)
	sortEstimates(result)
	return result, nil
}

func sortEstimates(records []domain.EstimateRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].FiscalPeriodEnd.Equal(records[j].FiscalPeriodEnd) {
			return records[i].FiscalPeriodEnd.Before(records[j].FiscalPeriodEnd)
		}
		return records[i].RevisionTime.Before(records[j].RevisionTime)
	})
}

var _ storage.EstimateStore = (*EstimateStore)(nil)
