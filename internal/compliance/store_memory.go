package compliance

import (
	"context"
	"sort"
	"sync"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// InMemoryPolicyStore backs the policy service for tests and single-node
// deployments.
type InMemoryPolicyStore struct {
	mu            sync.RWMutex
	thresholds    *Thresholds
	jurisdictions map[domain.Jurisdiction]bool
}

func NewInMemoryPolicyStore() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{
		jurisdictions: make(map[domain.Jurisdiction]bool),
	}
}

func (s *InMemoryPolicyStore) GetThresholds(_ context.Context) (Thresholds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.thresholds == nil {
		return Thresholds{}, sentinel.ErrNotFound
	}
	return *s.thresholds, nil
}

func (s *InMemoryPolicyStore) SaveThresholds(_ context.Context, th Thresholds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = &th
	return nil
}

func (s *InMemoryPolicyStore) SetJurisdiction(_ context.Context, code domain.Jurisdiction, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if approved {
		s.jurisdictions[code] = true
	} else {
		delete(s.jurisdictions, code)
	}
	return nil
}

func (s *InMemoryPolicyStore) JurisdictionApproved(_ context.Context, code domain.Jurisdiction) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jurisdictions[code], nil
}

func (s *InMemoryPolicyStore) ListJurisdictions(_ context.Context) ([]domain.Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]domain.Jurisdiction, 0, len(s.jurisdictions))
	for code := range s.jurisdictions {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes, nil
}
