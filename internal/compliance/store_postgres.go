package compliance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// PostgresPolicyStore persists compliance policy in PostgreSQL. Thresholds
// live in a single-row table keyed by id=1; jurisdictions in their own table.
type PostgresPolicyStore struct {
	db *sql.DB
}

func NewPostgresPolicyStore(db *sql.DB) *PostgresPolicyStore {
	return &PostgresPolicyStore{db: db}
}

func (s *PostgresPolicyStore) GetThresholds(ctx context.Context) (Thresholds, error) {
	query := `
		SELECT basic_limit, enhanced_limit, institutional_limit, daily_limit, monthly_limit, version, updated_at
		FROM compliance_thresholds
		WHERE id = 1
	`
	var th Thresholds
	err := s.db.QueryRowContext(ctx, query).Scan(
		&th.BasicLimit, &th.EnhancedLimit, &th.InstitutionalLimit,
		&th.DailyLimit, &th.MonthlyLimit, &th.Version, &th.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Thresholds{}, sentinel.ErrNotFound
		}
		return Thresholds{}, fmt.Errorf("read thresholds: %w", err)
	}
	return th, nil
}

func (s *PostgresPolicyStore) SaveThresholds(ctx context.Context, th Thresholds) error {
	query := `
		INSERT INTO compliance_thresholds (id, basic_limit, enhanced_limit, institutional_limit, daily_limit, monthly_limit, version, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			basic_limit = EXCLUDED.basic_limit,
			enhanced_limit = EXCLUDED.enhanced_limit,
			institutional_limit = EXCLUDED.institutional_limit,
			daily_limit = EXCLUDED.daily_limit,
			monthly_limit = EXCLUDED.monthly_limit,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		th.BasicLimit, th.EnhancedLimit, th.InstitutionalLimit,
		th.DailyLimit, th.MonthlyLimit, th.Version, th.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}
	return nil
}

func (s *PostgresPolicyStore) SetJurisdiction(ctx context.Context, code domain.Jurisdiction, approved bool) error {
	query := `
		INSERT INTO approved_jurisdictions (code, approved)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET approved = EXCLUDED.approved
	`
	if _, err := s.db.ExecContext(ctx, query, code.String(), approved); err != nil {
		return fmt.Errorf("set jurisdiction: %w", err)
	}
	return nil
}

func (s *PostgresPolicyStore) JurisdictionApproved(ctx context.Context, code domain.Jurisdiction) (bool, error) {
	query := `SELECT approved FROM approved_jurisdictions WHERE code = $1`
	var approved bool
	err := s.db.QueryRowContext(ctx, query, code.String()).Scan(&approved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check jurisdiction: %w", err)
	}
	return approved, nil
}

func (s *PostgresPolicyStore) ListJurisdictions(ctx context.Context) ([]domain.Jurisdiction, error) {
	query := `SELECT code FROM approved_jurisdictions WHERE approved ORDER BY code`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	defer rows.Close()

	var codes []domain.Jurisdiction
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan jurisdiction: %w", err)
		}
		codes = append(codes, domain.Jurisdiction(code))
	}
	return codes, rows.Err()
}
