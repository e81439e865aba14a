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

// WireDailyStore is an in-memory implementation of storage.WireDailyStore.
type WireDailyStore struct {
	mu   sync.RWMutex
	data map[string]domain.WireDailyCounts // keyed by (entity, date)
}

// NewWireDailyStore creates a new in-memory wire daily counts store.
func NewWireDailyStore() *WireDailyStore {
	return &WireDailyStore{
		data: make(map[string]domain.WireDailyCounts),
	}
}

func wireDailyKey(c domain.WireDailyCounts) string {
	return fmt.Sprintf("%s|%d", c.Entity, domain.DateOf(c.Date).Unix())
}

// InsertBulk adds daily counts. Fails entire batch on duplicate (entity, date).
func (s *WireDailyStore) InsertBulk(_ context.Context, counts []domain.WireDailyCounts) error {
	if len(counts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(counts))
	for _, c := range counts {
		if c.Entity == "" || c.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := wireDailyKey(c)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, c := range counts {
		s.data[wireDailyKey(c)] = c
	}
	return nil
}

// GetByEntity retrieves all counts for an entity, ordered by date ASC.
func (s *WireDailyStore) GetByEntity(_ context.Context, entity string) ([]domain.WireDailyCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.WireDailyCounts
	for _, c := range s.data {
		if c.Entity == entity {
			result = append(result, c)
		}
	}

	sortWireDaily(result)
	return result, nil
}

// GetByDateRange retrieves counts within [start, end] (inclusive).
func (s *WireDailyStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.WireDailyCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := domain.DateOf(start), domain.DateOf(end)
	var result []domain.WireDailyCounts
	for _, c := range s.data {
		d := domain.DateOf(c.Date)
		if !d.Before(from) && !d.After(to) {
			result = append(result, c)
		}
	}

	sortWireDaily(result)
	return result, nil
}

func sortWireDaily(counts []domain.WireDailyCounts) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Entity != counts[j].Entity {
			return counts[i].Entity < counts[j].Entity
		}
		return counts[i].Date.Before(counts[j].Date)
	})
}

var _ storage.WireDailyStore = (*WireDailyStore)(nil)
