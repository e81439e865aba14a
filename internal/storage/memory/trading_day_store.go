package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// TradingDayStore is an in-memory implementation of storage.TradingDayStore.
type TradingDayStore struct {
	mu   sync.RWMutex
	data map[time.Time]struct{}
}

// NewTradingDayStore creates a new in-memory trading day store.
func NewTradingDayStore() *TradingDayStore {
	return &TradingDayStore{
		data: make(map[time.Time]struct{}),
	}
}

// InsertBulk adds trading days atomically. Fails entire batch on any duplicate.
func (s *TradingDayStore) InsertBulk(_ context.Context, days []time.Time) error {
	if len(days) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		if d.IsZero() {
			return storage.ErrInvalidInput
		}
		day := domain.DateOf(d)
		if _, exists := s.data[day]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[day]; exists {
			return storage.ErrDuplicateKey
		}
		batch[day] = struct{}{}
	}

	for day := range batch {
		s.data[day] = struct{}{}
	}
	return nil
}

// GetRange retrieves trading days within [start, end] (inclusive), ordered ASC.
func (s *TradingDayStore) GetRange(_ context.Context, start, end time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := domain.DateOf(start), domain.DateOf(end)
	var result []time.Time
	for day := range s.data {
		if !day.Before(from) && !day.After(to) {
			result = append(result, day)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result, nil
}

// GetAll retrieves every trading day, ordered ASC.
func (s *TradingDayStore) GetAll(_ context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]time.Time, 0, len(s.data))
	for day := range s.data {
		result = append(result, day)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result, nil
}

var _ storage.TradingDayStore = (*TradingDayStore)(nil)
