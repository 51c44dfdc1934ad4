package volume

import (
	"context"
	"fmt"
	"sync"

	"nilclear/pkg/domain"
)

// InMemoryStore tracks bucket totals in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	totals map[string]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{totals: make(map[string]uint64)}
}

func bucketKey(entity domain.EntityID, bucket string) string {
	return entity.String() + "|" + bucket
}

func (s *InMemoryStore) Add(_ context.Context, entity domain.EntityID, bucket string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[bucketKey(entity, bucket)] += amount
	return nil
}

func (s *InMemoryStore) Subtract(_ context.Context, entity domain.EntityID, bucket string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := bucketKey(entity, bucket)
	current := s.totals[key]
	if amount > current {
		return fmt.Errorf("subtract %d from bucket %s holding %d", amount, bucket, current)
	}
	s.totals[key] = current - amount
	return nil
}

func (s *InMemoryStore) Total(_ context.Context, entity domain.EntityID, bucket string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[bucketKey(entity, bucket)], nil
}
