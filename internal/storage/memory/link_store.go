package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

// LinkStore is an in-memory implementation of storage.LinkStore.
type LinkStore struct {
	mu   sync.RWMutex
	data map[string]domain.LinkRecord // keyed by composite key
}

// NewLinkStore creates a new in-memory link store.
func NewLinkStore() *LinkStore {
	return &LinkStore{
		data: make(map[string]domain.LinkRecord),
	}
}

// linkKey generates a unique key for a link record within a kind.
func linkKey(kind string, r domain.LinkRecord) string {
	return fmt.Sprintf("%s|%d|%s|%d", kind, r.InternalID, r.ExternalID, r.ValidFrom.Unix())
}

// InsertBulk adds link records for one kind atomically. Fails entire batch on any duplicate.
func (s *LinkStore) InsertBulk(_ context.Context, kind string, records []domain.LinkRecord) error {
	if kind == "" {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ExternalID == "" || r.InternalID == 0 {
			return storage.ErrInvalidInput
		}
		key := linkKey(kind, r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		s.data[linkKey(kind, r)] = r
	}
	return nil
}

// GetByKind retrieves all links of a kind, ordered by internal_id, valid_from.
func (s *LinkStore) GetByKind(_ context.Context, kind string) ([]domain.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := kind + "|"
	var result []domain.LinkRecord
	for key, r := range s.data {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			result = append(result, r)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].InternalID != result[j].InternalID {
			return result[i].InternalID < result[j].InternalID
		}
		return result[i].ValidFrom.Before(result[j].ValidFrom)
	})

	return result, nil
}

var _ storage.LinkStore = (*LinkStore)(nil)
