//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"nilclear/internal/platform/kafka"
	"nilclear/pkg/testutil/containers"
)

// =============================================================================
// Audit Relay Kafka Integration Test Suite
// =============================================================================
// Justification for integration tests:
// The unit suite pins the outbox contract against an in-process sink; this
// suite proves the same relay drives a real broker through the franz-go
// producer, and that deal-keyed records come back off the topic in the order
// they were appended.

const relayTopic = "nilclear.audit.events"

type RelayKafkaSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	producer *kafka.Producer
	store    *InMemoryStore
	relay    *Relay
}

func TestRelayKafkaSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelayKafkaSuite))
}

func (s *RelayKafkaSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := kafka.NewProducer(ctx, []string{s.redpanda.Broker}, relayTopic, logger)
	s.Require().NoError(err)
	s.producer = producer

	s.store = NewInMemoryStore()
	s.relay = NewRelay(s.store, s.producer, logger)
}

func (s *RelayKafkaSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *RelayKafkaSuite) TestDrainToBroker() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	appended := []Action{ActionDealCreated, ActionComplianceEvaluated, ActionDealExecuted}
	for _, action := range appended {
		s.Require().NoError(s.store.Append(ctx, Event{Action: action, DealID: "deal-1"}))
	}

	s.Require().NoError(s.relay.drain(ctx))

	queued, err := s.store.NextUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(queued, "drained events must be acknowledged in the outbox")

	records := s.consume(ctx, len(appended))
	s.Require().Len(records, len(appended))

	for i, record := range records {
		s.Equal("deal-1", string(record.Key))

		var event Event
		s.Require().NoError(json.Unmarshal(record.Value, &event))
		s.Equal(appended[i], event.Action)
	}
}

// consume reads n records from the start of the relay topic.
func (s *RelayKafkaSuite) consume(ctx context.Context, n int) []*kgo.Record {
	s.T().Helper()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(relayTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	var records []*kgo.Record
	for len(records) < n {
		fetches := client.PollFetches(ctx)
		s.Require().NoError(fetches.Err())
		fetches.EachRecord(func(record *kgo.Record) {
			records = append(records, record)
		})
	}
	return records
}
