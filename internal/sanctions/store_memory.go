package sanctions

import (
	"context"
	"sync"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// InMemoryStore keeps sanction entries keyed by entity. One entry per entity;
// repeated listings upsert.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.EntityID]*Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[domain.EntityID]*Entry)}
}

func (s *InMemoryStore) Upsert(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries[entry.Entity] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, entity domain.EntityID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[entity]; ok {
		copied := *entry
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}
