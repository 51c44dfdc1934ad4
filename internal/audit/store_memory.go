package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in emission order. It doubles as the outbox for
// the relay: events stay queued until MarkPublished.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextSeq int64
	rows    []outboxRow
}

type outboxRow struct {
	seq       int64
	event     Event
	published bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextSeq: 1}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, outboxRow{seq: s.nextSeq, event: event})
	s.nextSeq++
	return nil
}

func (s *InMemoryStore) ListByDeal(_ context.Context, dealID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, r := range s.rows {
		if r.event.DealID == dealID {
			out = append(out, r.event)
		}
	}
	return out, nil
}

// NextUnpublished returns up to limit queued entries in insertion order.
func (s *InMemoryStore) NextUnpublished(_ context.Context, limit int) ([]OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []OutboxEntry
	for _, r := range s.rows {
		if r.published {
			continue
		}
		entries = append(entries, OutboxEntry{Seq: r.seq, Event: r.event})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// MarkPublished acknowledges relay delivery for the given sequence numbers.
func (s *InMemoryStore) MarkPublished(_ context.Context, seqs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acked := make(map[int64]bool, len(seqs))
	for _, seq := range seqs {
		acked[seq] = true
	}
	for i := range s.rows {
		if acked[s.rows[i].seq] {
			s.rows[i].published = true
		}
	}
	return nil
}
