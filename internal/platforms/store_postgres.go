package platforms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// PostgresStore persists platform registrations and athlete grants in
// PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *Platform) error {
	query := `
		INSERT INTO platforms (id, name, secret_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, p.ID.String(), p.Name, p.SecretHash, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert platform: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.EntityID) (*Platform, error) {
	query := `
		SELECT id, name, secret_hash, created_at
		FROM platforms
		WHERE id = $1
	`
	var p Platform
	var rawID string
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &p.Name, &p.SecretHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find platform: %w", err)
	}
	parsed, err := domain.ParseEntityID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt platform id in store: %w", err)
	}
	p.ID = parsed
	return &p, nil
}

func (s *PostgresStore) Grant(ctx context.Context, auth Authorization) error {
	query := `
		INSERT INTO platform_athlete_grants (platform, athlete, granted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (platform, athlete) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		auth.Platform.String(), auth.Athlete.String(), auth.GrantedAt)
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Revoke(ctx context.Context, platform, athlete domain.EntityID) error {
	query := `
		DELETE FROM platform_athlete_grants
		WHERE platform = $1 AND athlete = $2
	`
	res, err := s.db.ExecContext(ctx, query, platform.String(), athlete.String())
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Granted(ctx context.Context, platform, athlete domain.EntityID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM platform_athlete_grants
			WHERE platform = $1 AND athlete = $2
		)
	`
	var granted bool
	err := s.db.QueryRowContext(ctx, query, platform.String(), athlete.String()).Scan(&granted)
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	return granted, nil
}
