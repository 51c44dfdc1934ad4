package platforms

import (
	"context"
	"sync"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

type authKey struct {
	platform domain.EntityID
	athlete  domain.EntityID
}

// InMemoryStore keeps registrations and allow-list grants in process.
type InMemoryStore struct {
	mu        sync.RWMutex
	platforms map[domain.EntityID]*Platform
	grants    map[authKey]Authorization
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		platforms: make(map[domain.EntityID]*Platform),
		grants:    make(map[authKey]Authorization),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.platforms[p.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *p
	s.platforms[p.ID] = &clone
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.EntityID) (*Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.platforms[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *InMemoryStore) Grant(_ context.Context, auth Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[authKey{auth.Platform, auth.Athlete}] = auth
	return nil
}

func (s *InMemoryStore) Revoke(_ context.Context, platform, athlete domain.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := authKey{platform, athlete}
	if _, ok := s.grants[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.grants, key)
	return nil
}

func (s *InMemoryStore) Granted(_ context.Context, platform, athlete domain.EntityID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[authKey{platform, athlete}]
	return ok, nil
}
