package deal

import (
	"context"
	"sort"
	"sync"

	"nilclear/internal/settlement"
	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// InMemoryStore keeps deals in a process-local map for tests and single-node
// deployments.
type InMemoryStore struct {
	mu    sync.RWMutex
	deals map[domain.DealID]*Deal
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{deals: make(map[domain.DealID]*Deal)}
}

func (s *InMemoryStore) Create(_ context.Context, d *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deals[d.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := cloneDeal(d)
	s.deals[d.ID] = clone
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, d *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deals[d.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.deals[d.ID] = cloneDeal(d)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.DealID) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDeal(d), nil
}

func (s *InMemoryStore) ListByAthlete(_ context.Context, athlete domain.EntityID) ([]*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var deals []*Deal
	for _, d := range s.deals {
		if d.Athlete == athlete {
			deals = append(deals, cloneDeal(d))
		}
	}
	sort.Slice(deals, func(i, j int) bool { return deals[i].CreatedAt.Before(deals[j].CreatedAt) })
	return deals, nil
}

func cloneDeal(d *Deal) *Deal {
	clone := *d
	clone.Deliverables = append([]string(nil), d.Deliverables...)
	clone.Splits = append([]domain.Split(nil), d.Splits...)
	if d.Compliance != nil {
		result := *d.Compliance
		clone.Compliance = &result
	}
	if d.Payouts != nil {
		clone.Payouts = append([]settlement.Payout(nil), d.Payouts...)
	}
	return &clone
}
