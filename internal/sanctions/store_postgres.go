package sanctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// PostgresStore persists sanction entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("sanction entry is required")
	}
	query := `
		INSERT INTO sanction_entries (entity, list_name, reason, evidence_hash, listed, listed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entity) DO UPDATE SET
			list_name = EXCLUDED.list_name,
			reason = EXCLUDED.reason,
			evidence_hash = EXCLUDED.evidence_hash,
			listed = EXCLUDED.listed,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.Entity.String(), entry.ListName, entry.Reason, entry.EvidenceHash,
		entry.Listed, entry.ListedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert sanction entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, entity domain.EntityID) (*Entry, error) {
	query := `
		SELECT entity, list_name, reason, evidence_hash, listed, listed_at, updated_at
		FROM sanction_entries
		WHERE entity = $1
	`
	row := s.db.QueryRowContext(ctx, query, entity.String())
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find sanction entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entry, error) {
	query := `
		SELECT entity, list_name, reason, evidence_hash, listed, listed_at, updated_at
		FROM sanction_entries
		ORDER BY listed_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sanction entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sanction entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var entry Entry
	var rawEntity string
	if err := row.Scan(&rawEntity, &entry.ListName, &entry.Reason, &entry.EvidenceHash,
		&entry.Listed, &entry.ListedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	entity, err := domain.ParseEntityID(rawEntity)
	if err != nil {
		return nil, fmt.Errorf("corrupt entity id in store: %w", err)
	}
	entry.Entity = entity
	return &entry, nil
}
