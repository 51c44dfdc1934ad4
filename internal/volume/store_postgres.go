package volume

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nilclear/pkg/domain"
)

// PostgresStore tracks bucket totals in PostgreSQL via pgx. The upsert keeps
// increase-and-read race-free at the row level; serialization across the
// check-then-add window is the deal service's job.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Add(ctx context.Context, entity domain.EntityID, bucket string, amount uint64) error {
	query := `
		INSERT INTO volume_buckets (entity, bucket, total)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity, bucket) DO UPDATE SET total = volume_buckets.total + EXCLUDED.total
	`
	if _, err := s.pool.Exec(ctx, query, entity.String(), bucket, int64(amount)); err != nil {
		return fmt.Errorf("increment volume bucket: %w", err)
	}
	return nil
}

func (s *PostgresStore) Subtract(ctx context.Context, entity domain.EntityID, bucket string, amount uint64) error {
	query := `
		UPDATE volume_buckets
		SET total = GREATEST(total - $3, 0)
		WHERE entity = $1 AND bucket = $2
	`
	if _, err := s.pool.Exec(ctx, query, entity.String(), bucket, int64(amount)); err != nil {
		return fmt.Errorf("decrement volume bucket: %w", err)
	}
	return nil
}

func (s *PostgresStore) Total(ctx context.Context, entity domain.EntityID, bucket string) (uint64, error) {
	query := `
		SELECT total FROM volume_buckets
		WHERE entity = $1 AND bucket = $2
	`
	var total int64
	err := s.pool.QueryRow(ctx, query, entity.String(), bucket).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read volume bucket: %w", err)
	}
	if total < 0 {
		return 0, nil
	}
	return uint64(total), nil
}
