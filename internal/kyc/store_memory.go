package kyc

import (
	"context"
	"sync"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// InMemoryStore keeps verification records keyed by entity.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.EntityID]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.EntityID]*Record)}
}

func (s *InMemoryStore) Upsert(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.Entity] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, entity domain.EntityID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[entity]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}
