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

// SurpriseStore is an in-memory implementation of storage.SurpriseStore.
type SurpriseStore struct {
	mu   sync.RWMutex
	data map[string]domain.SurpriseRecord // keyed by (internal_id, fiscal period end)
}

// NewSurpriseStore creates a new in-memory surprise store.
func NewSurpriseStore() *SurpriseStore {
	return &SurpriseStore{
		data: make(map[string]domain.SurpriseRecord),
	}
}

func surpriseKey(r domain.SurpriseRecord) string {
	return fmt.Sprintf("%d|%d", r.InternalID, r.FiscalPeriodEnd.Unix())
}

// Insert adds a surprise record. Returns ErrDuplicateKey if exists.
func (s *SurpriseStore) Insert(_ context.Context, r domain.SurpriseRecord) error {
	if r.InternalID == 0 || r.FiscalPeriodEnd.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := surpriseKey(r)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[key] = r
	return nil
}

// InsertBulk adds surprise records atomically. Fails entire batch on any duplicate.
func (s *SurpriseStore) InsertBulk(_ context.Context, records []domain.SurpriseRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.InternalID == 0 || r.FiscalPeriodEnd.IsZero() {
			return storage.ErrInvalidInput
		}
		key := surpriseKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		s.data[surpriseKey(r)] = r
	}
	return nil
}

// GetByInternalID retrieves all records for an entity, ordered by announcement date ASC.
func (s *SurpriseStore) GetByInternalID(_ context.Context, internalID int64) ([]domain.SurpriseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SurpriseRecord
	for _, r := range s.data {
		if r.InternalID == internalID {
			result = append(result, r)
		}
	}

	sortSurprises(result)
	return result, nil
}

// GetByDateRange retrieves records announced within [start, end] (inclusive).
func (s *SurpriseStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.SurpriseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := domain.DateOf(start), domain.DateOf(end)
	var result []domain.SurpriseRecord
	for _, r := range s.data {
		d := domain.DateOf(r.AnnouncementDate)
		if !d.Before(from) && !d.After(to) {
			result = append(result, r)
		}
	}

	sortSurprises(result)
	return result, nil
}

func sortSurprises(records []domain.SurpriseRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].InternalID != records[j].InternalID {
			return records[i].InternalID < records[j].InternalID
		}
		return records[i].AnnouncementDate.Before(records[j].AnnouncementDate)
	})
}

var _ storage.SurpriseStore = (*SurpriseStore)(nil)
