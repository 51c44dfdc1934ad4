package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the append-only persistence behind the publisher. Outbox-backed
// implementations guarantee eventual delivery to Kafka via the relay.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDeal(ctx context.Context, dealID string) ([]Event, error)
}

// Publisher emits audit events with fail-closed semantics: the caller blocks
// until the write succeeds, and a failed write MUST fail the calling
// operation. Money-moving actions without an audit record are worse than
// rejected actions.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes an audit event.
// Returns error if persistence fails - the caller MUST fail its operation.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: audit persistence failed",
				"action", event.Action,
				"deal_id", event.DealID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

// ListByDeal returns the recorded trail for one deal in emission order.
func (p *Publisher) ListByDeal(ctx context.Context, dealID string) ([]Event, error) {
	return p.store.ListByDeal(ctx, dealID)
}
