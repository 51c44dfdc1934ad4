package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements the transactional outbox pattern. Events are
// written to the audit_outbox table and drained to Kafka by the relay;
// Kafka is the source of truth for downstream consumers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID           string          `json:"id"`
	Timestamp    string          `json:"timestamp"`
	Action       string          `json:"action"`
	DealID       string          `json:"deal_id,omitempty"`
	Entity       string          `json:"entity,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Amount       uint64          `json:"amount,omitempty"`
	Decision     string          `json:"decision,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
	ActorID      string          `json:"actor_id,omitempty"`
	Detail       json.RawMessage `json:"detail,omitempty"`
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	body, err := json.Marshal(payload{
		ID:           event.ID.String(),
		Timestamp:    event.Timestamp.Format(time.RFC3339Nano),
		Action:       string(event.Action),
		DealID:       event.DealID,
		Entity:       event.Entity,
		Counterparty: event.Counterparty,
		Amount:       event.Amount,
		Decision:     event.Decision,
		Reason:       event.Reason,
		RequestID:    event.RequestID,
		ActorID:      event.ActorID,
		Detail:       event.Detail,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, deal_id, action, entity, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID, nullString(event.DealID), string(event.Action), nullString(event.Entity), body, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDeal(ctx context.Context, dealID string) ([]Event, error) {
	query := `
		SELECT payload FROM audit_outbox
		WHERE deal_id = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := unmarshalEvent(body)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// NextUnpublished returns up to limit pending outbox entries in insertion
// order.
func (s *PostgresStore) NextUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT seq, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished audit events: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var seq int64
		var body []byte
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		event, err := unmarshalEvent(body)
		if err != nil {
			return nil, err
		}
		entries = append(entries, OutboxEntry{Seq: seq, Event: event})
	}
	return entries, rows.Err()
}

// MarkPublished stamps the given sequence numbers as delivered.
func (s *PostgresStore) MarkPublished(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	query := `
		UPDATE audit_outbox SET published_at = NOW()
		WHERE seq = ANY($1)
	`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(seqs)); err != nil {
		return fmt.Errorf("mark audit events published: %w", err)
	}
	return nil
}

func unmarshalEvent(body []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return Event{}, fmt.Errorf("parse audit event id: %w", err)
	}
	return Event{
		ID:           eventID,
		Timestamp:    ts,
		Action:       Action(p.Action),
		DealID:       p.DealID,
		Entity:       p.Entity,
		Counterparty: p.Counterparty,
		Amount:       p.Amount,
		Decision:     p.Decision,
		Reason:       p.Reason,
		RequestID:    p.RequestID,
		ActorID:      p.ActorID,
		Detail:       p.Detail,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
