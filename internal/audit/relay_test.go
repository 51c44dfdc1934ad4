package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Audit Relay Test Suite
// =============================================================================
// Justification for unit tests:
// The outbox relay is what makes the audit trail durable past the local
// store. The tests pin the two properties downstream consumers rely on:
// sequence-ordered delivery, and no acknowledgement past a delivery failure.

type capturingSink struct {
	keys    []string
	values  [][]byte
	failOn  int // publish call index (1-based) that fails, 0 = never
	calls   int
	failErr error
}

func (c *capturingSink) Publish(_ context.Context, key, value []byte) error {
	c.calls++
	if c.failOn != 0 && c.calls == c.failOn {
		return c.failErr
	}
	c.keys = append(c.keys, string(key))
	c.values = append(c.values, value)
	return nil
}

type RelaySuite struct {
	suite.Suite
	store *InMemoryStore
	sink  *capturingSink
	relay *Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.sink = &capturingSink{failErr: errors.New("broker unavailable")}
	s.relay = NewRelay(s.store, s.sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *RelaySuite) append(action Action, dealID string) {
	s.Require().NoError(s.store.Append(context.Background(), Event{
		Action: action,
		DealID: dealID,
	}))
}

func (s *RelaySuite) TestDrain() {
	ctx := context.Background()

	s.Run("events are delivered in sequence order and keyed by deal", func() {
		s.append(ActionDealCreated, "deal-1")
		s.append(ActionComplianceEvaluated, "deal-1")
		s.append(ActionDealExecuted, "deal-1")

		s.Require().NoError(s.relay.drain(ctx))
		s.Require().Len(s.sink.values, 3)
		s.Equal([]string{"deal-1", "deal-1", "deal-1"}, s.sink.keys)

		var first Event
		s.Require().NoError(json.Unmarshal(s.sink.values[0], &first))
		s.Equal(ActionDealCreated, first.Action)
	})

	s.Run("delivered events are acknowledged and not resent", func() {
		s.Require().NoError(s.relay.drain(ctx))
		s.Len(s.sink.values, 3)

		queued, err := s.store.NextUnpublished(ctx, 10)
		s.Require().NoError(err)
		s.Empty(queued)
	})

	s.Run("registry events without a deal are keyed by entity", func() {
		s.Require().NoError(s.store.Append(ctx, Event{
			Action: ActionSanctionsListed,
			Entity: "0x" + "aa" + "00000000000000000000000000000000000000",
		}))

		s.Require().NoError(s.relay.drain(ctx))
		s.Equal("0xaa00000000000000000000000000000000000000", s.sink.keys[len(s.sink.keys)-1])
	})
}

func (s *RelaySuite) TestPartialFailure() {
	ctx := context.Background()

	s.append(ActionDealCreated, "deal-1")
	s.append(ActionComplianceEvaluated, "deal-1")
	s.append(ActionDealExecuted, "deal-1")

	// Second publish fails: the first event must be acked, the rest retained.
	s.sink.failOn = 2
	s.Error(s.relay.drain(ctx))
	s.Len(s.sink.values, 1)

	queued, err := s.store.NextUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(queued, 2)
	s.Equal(ActionComplianceEvaluated, queued[0].Event.Action)
	s.Equal(ActionDealExecuted, queued[1].Event.Action)

	// Next tick succeeds and drains the remainder in order.
	s.sink.failOn = 0
	s.Require().NoError(s.relay.drain(ctx))
	s.Len(s.sink.values, 3)

	queued, err = s.store.NextUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(queued)
}

func (s *RelaySuite) TestPublisherFailClosed() {
	ctx := context.Background()
	publisher := NewPublisher(failingStore{}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	err := publisher.Emit(ctx, Event{Action: ActionDealExecuted, DealID: "deal-1"})
	s.Error(err)

	s.Error(publisher.Emit(ctx, Event{}), "action is required")
}

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("disk full") }
func (failingStore) ListByDeal(context.Context, string) ([]Event, error) {
	return nil, errors.New("disk full")
}
