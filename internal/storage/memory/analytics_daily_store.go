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

// AnalyticsDailyStore is an in-memory implementation of storage.AnalyticsDailyStore.
type AnalyticsDailyStore struct {
	mu   sync.RWMutex
	data map[string]domain.AnalyticsDailyCounts // keyed by (entity_id, date)
}

// NewAnalyticsDailyStore creates a new in-memory analytics daily counts store.
func NewAnalyticsDailyStore() *AnalyticsDailyStore {
	return &AnalyticsDailyStore{
		data: make(map[string]domain.AnalyticsDailyCounts),
	}
}

func analyticsDailyKey(c domain.AnalyticsDailyCounts) string {
	return fmt.Sprintf("%s|%d", c.EntityID, domain.DateOf(c.Date).Unix())
}

// InsertBulk adds daily counts. Fails entire batch on duplicate (entity_id, date).
func (s *AnalyticsDailyStore) InsertBulk(_ context.Context, counts []domain.AnalyticsDailyCounts) error {
	if len(counts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(counts))
	for _, c := range counts {
		if c.EntityID == "" || c.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := analyticsDailyKey(c)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, c := range counts {
		s.data[analyticsDailyKey(c)] = c
	}
	return nil
}

// GetByEntity retrieves all counts for a vendor entity, ordered by date ASC.
func (s *AnalyticsDailyStore) GetByEntity(_ context.Context, entityID string) ([]domain.AnalyticsDailyCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.AnalyticsDailyCounts
	for _, c := range s.data {
		if c.EntityID == entityID {
			result = append(result, c)
		}
	}

	sortAnalyticsDaily(result)
	return result, nil
}

// GetByDateRange retrieves counts within [start, end] (inclusive).
func (s *AnalyticsDailyStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.AnalyticsDailyCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := domain.DateOf(start), domain.DateOf(end)
	var result []domain.AnalyticsDailyCounts
	for _, c := range s.data {
		d := domain.DateOf(c.Date)
		if !d.Before(from) && !d.After(to) {
			result = append(result, c)
		}
	}

	sortAnalyticsDaily(result)
	return result, nil
}

func sortAnalyticsDaily(counts []domain.AnalyticsDailyCounts) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].EntityID != counts[j].EntityID {
			return counts[i].EntityID < counts[j].EntityID
		}
		return counts[i].Date.Before(counts[j].Date)
	})
}

var _ storage.AnalyticsDailyStore = (*AnalyticsDailyStore)(nil)
