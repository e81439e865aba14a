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

// EventWindowStore is an in-memory implementation of storage.EventWindowStore.
type EventWindowStore struct {
	mu   sync.RWMutex
	data map[string]domain.EventWindowRow // keyed by (internal_id, event_date, offset)
}

// NewEventWindowStore creates a new in-memory event window store.
func NewEventWindowStore() *EventWindowStore {
	return &EventWindowStore{
		data: make(map[string]domain.EventWindowRow),
	}
}

func eventWindowKey(r domain.EventWindowRow) string {
	return fmt.Sprintf("%d|%d|%d", r.InternalID, domain.DateOf(r.EventDate).Unix(), r.Offset)
}

// InsertBulk adds window rows. Fails entire batch on duplicate
// (internal_id, event_date, offset).
func (s *EventWindowStore) InsertBulk(_ context.Context, rows []domain.EventWindowRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.InternalID == 0 || r.EventDate.IsZero() {
			return storage.ErrInvalidInput
		}
		key := eventWindowKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		s.data[eventWindowKey(r)] = r
	}
	return nil
}

// GetByEvent retrieves one announcement's window, ordered by offset ASC.
func (s *EventWindowStore) GetByEvent(_ context.Context, internalID int64, eventDate time.Time) ([]domain.EventWindowRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := domain.DateOf(eventDate)
	var result []domain.EventWindowRow
	for _, r := range s.data {
		if r.InternalID == internalID && domain.DateOf(r.EventDate).Equal(day) {
			result = append(result, r)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Offset < result[j].Offset })
	return result, nil
}

// GetAll retrieves every window row, ordered by internal_id, event_date, offset.
func (s *EventWindowStore) GetAll(_ context.Context) ([]domain.EventWindowRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.EventWindowRow, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, r)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].InternalID != result[j].InternalID {
			return result[i].InternalID < result[j].InternalID
		}
		if !result[i].EventDate.Equal(result[j].EventDate) {
			return result[i].EventDate.Before(result[j].EventDate)
		}
		return result[i].Offset < result[j].Offset
	})
	return result, nil
}

var _ storage.EventWindowStore = (*EventWindowStore)(nil)
