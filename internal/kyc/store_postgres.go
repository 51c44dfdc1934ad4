package kyc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// PostgresStore persists verification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("kyc record is required")
	}
	query := `
		INSERT INTO kyc_records (entity, tier, jurisdiction, document_hash, verified_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entity) DO UPDATE SET
			tier = EXCLUDED.tier,
			jurisdiction = EXCLUDED.jurisdiction,
			document_hash = EXCLUDED.document_hash,
			verified_at = EXCLUDED.verified_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Entity.String(), record.Tier.String(), record.Jurisdiction.String(),
		record.DocumentHash, record.VerifiedAt, record.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert kyc record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, entity domain.EntityID) (*Record, error) {
	query := `
		SELECT entity, tier, jurisdiction, document_hash, verified_at, expires_at
		FROM kyc_records
		WHERE entity = $1
	`
	var record Record
	var rawEntity, rawTier, rawJurisdiction string
	err := s.db.QueryRowContext(ctx, query, entity.String()).Scan(
		&rawEntity, &rawTier, &rawJurisdiction,
		&record.DocumentHash, &record.VerifiedAt, &record.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find kyc record: %w", err)
	}

	parsed, err := domain.ParseEntityID(rawEntity)
	if err != nil {
		return nil, fmt.Errorf("corrupt entity id in store: %w", err)
	}
	record.Entity = parsed
	record.Tier = domain.Tier(rawTier)
	record.Jurisdiction = domain.Jurisdiction(rawJurisdiction)
	return &record, nil
}
