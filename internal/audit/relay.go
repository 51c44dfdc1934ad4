package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// OutboxEntry pairs an event with its outbox sequence number.
type OutboxEntry struct {
	Seq   int64
	Event Event
}

// Outbox is the drain side of an audit store.
type Outbox interface {
	NextUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, seqs []int64) error
}

// Sink delivers serialized events downstream (Kafka in production).
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Relay drains the outbox to the sink in sequence order. Keying records by
// deal ID keeps per-deal ordering on the partition, so the compliance event
// for a deal always lands before its execution event.
type Relay struct {
	outbox   Outbox
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

func NewRelay(outbox Outbox, sink Sink, logger *slog.Logger) *Relay {
	return &Relay{
		outbox:   outbox,
		sink:     sink,
		logger:   logger,
		interval: time.Second,
		batch:    100,
	}
}

// Run polls the outbox until ctx is cancelled. Delivery failures are logged
// and retried on the next tick; the outbox preserves order and nothing is
// acknowledged past a failure.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil && ctx.Err() == nil {
				r.logger.WarnContext(ctx, "audit relay drain failed, will retry",
					"error", err,
				)
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	for {
		entries, err := r.outbox.NextUnpublished(ctx, r.batch)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		published := make([]int64, 0, len(entries))
		for _, entry := range entries {
			value, err := json.Marshal(entry.Event)
			if err != nil {
				return err
			}
			key := []byte(entry.Event.DealID)
			if len(key) == 0 {
				key = []byte(entry.Event.Entity)
			}
			if err := r.sink.Publish(ctx, key, value); err != nil {
				// Ack what made it through, keep the rest for the next tick.
				if len(published) > 0 {
					if ackErr := r.outbox.MarkPublished(ctx, published); ackErr != nil {
						return ackErr
					}
				}
				return err
			}
			published = append(published, entry.Seq)
		}
		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			return err
		}
		if len(entries) < r.batch {
			return nil
		}
	}
}
