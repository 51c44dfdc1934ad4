package volume

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
)

// Store is the persistence contract for bucket totals.
type Store interface {
	Add(ctx context.Context, entity domain.EntityID, bucket string, amount uint64) error
	Subtract(ctx context.Context, entity domain.EntityID, bucket string, amount uint64) error
	Total(ctx context.Context, entity domain.EntityID, bucket string) (uint64, error)
}

// Ledger tracks rolling daily and monthly contribution totals per entity.
//
// Invariant: totals equal the sum of amounts of that entity's deals currently
// Approved or Executed within the active window. The compliance gate adds on
// approval; the deal service removes on cancellation.
type Ledger struct {
	store  Store
	logger *slog.Logger
}

type LedgerOption func(*Ledger)

func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func NewLedger(store Store, opts ...LedgerOption) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("volume store is required")
	}
	l := &Ledger{store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Add records an amount against the entity's day and month buckets for the
// given timestamp.
func (l *Ledger) Add(ctx context.Context, entity domain.EntityID, amount uint64, at time.Time) error {
	if entity.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	if err := l.store.Add(ctx, entity, DayBucket(at), amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record daily volume")
	}
	if err := l.store.Add(ctx, entity, MonthBucket(at), amount); err != nil {
		// Day bucket took the write; back it out to keep the pair coherent.
		if subErr := l.store.Subtract(ctx, entity, DayBucket(at), amount); subErr != nil && l.logger != nil {
			l.logger.ErrorContext(ctx, "failed to back out day bucket after month write failure",
				"entity", entity,
				"error", subErr,
			)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record monthly volume")
	}
	return nil
}

// Remove rolls back a previously recorded amount, e.g. when an approved deal
// is cancelled. The timestamp must be the one the amount was added under so
// the same buckets are hit.
func (l *Ledger) Remove(ctx context.Context, entity domain.EntityID, amount uint64, at time.Time) error {
	if entity.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	if err := l.store.Subtract(ctx, entity, DayBucket(at), amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to roll back daily volume")
	}
	if err := l.store.Subtract(ctx, entity, MonthBucket(at), amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to roll back monthly volume")
	}
	return nil
}

// CurrentDayTotal returns the entity's total for the day containing at.
func (l *Ledger) CurrentDayTotal(ctx context.Context, entity domain.EntityID, at time.Time) (uint64, error) {
	total, err := l.store.Total(ctx, entity, DayBucket(at))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read daily volume")
	}
	return total, nil
}

// CurrentMonthTotal returns the entity's total for the month containing at.
func (l *Ledger) CurrentMonthTotal(ctx context.Context, entity domain.EntityID, at time.Time) (uint64, error) {
	total, err := l.store.Total(ctx, entity, MonthBucket(at))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read monthly volume")
	}
	return total, nil
}
