package deal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"nilclear/internal/compliance"
	"nilclear/internal/settlement"
	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
)

// PostgresStore persists deals in PostgreSQL. Splits, the compliance result
// and payouts are stored as JSONB alongside the scalar columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *Deal) error {
	splits, compl, payouts, err := marshalDealDocs(d)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO deals (id, athlete, brand, platform, amount, currency, jurisdiction,
			deliverables, terms_ref, splits, state, compliance, payouts, cancel_reason,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		d.ID.String(), d.Athlete.String(), d.Brand.String(), d.Platform.String(),
		d.Amount, d.Currency, d.Jurisdiction.String(),
		pq.Array(d.Deliverables), d.TermsRef, splits, string(d.State), compl, payouts,
		d.CancelReason, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, d *Deal) error {
	splits, compl, payouts, err := marshalDealDocs(d)
	if err != nil {
		return err
	}
	query := `
		UPDATE deals
		SET state = $2, splits = $3, compliance = $4, payouts = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		d.ID.String(), string(d.State), splits, compl, payouts, d.CancelReason, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.DealID) (*Deal, error) {
	query := `
		SELECT id, athlete, brand, platform, amount, currency, jurisdiction,
			deliverables, terms_ref, splits, state, compliance, payouts, cancel_reason,
			created_at, updated_at
		FROM deals
		WHERE id = $1
	`
	d, err := scanDeal(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find deal: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByAthlete(ctx context.Context, athlete domain.EntityID) ([]*Deal, error) {
	query := `
		SELECT id, athlete, brand, platform, amount, currency, jurisdiction,
			deliverables, terms_ref, splits, state, compliance, payouts, cancel_reason,
			created_at, updated_at
		FROM deals
		WHERE athlete = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, athlete.String())
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []*Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func marshalDealDocs(d *Deal) (splits, compl, payouts []byte, err error) {
	splits, err = json.Marshal(d.Splits)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal splits: %w", err)
	}
	if d.Compliance != nil {
		compl, err = json.Marshal(d.Compliance)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal compliance result: %w", err)
		}
	}
	if d.Payouts != nil {
		payouts, err = json.Marshal(d.Payouts)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal payouts: %w", err)
		}
	}
	return splits, compl, payouts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(row scanner) (*Deal, error) {
	var (
		d                            Deal
		rawID, rawAthlete, rawBrand  string
		rawPlatform, rawJurisdiction string
		rawState                     string
		splits                       []byte
		compl, payouts               []byte
	)
	if err := row.Scan(&rawID, &rawAthlete, &rawBrand, &rawPlatform, &d.Amount,
		&d.Currency, &rawJurisdiction, pq.Array(&d.Deliverables), &d.TermsRef,
		&splits, &rawState, &compl, &payouts, &d.CancelReason,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := domain.ParseDealID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt deal id in store: %w", err)
	}
	d.ID = id
	if d.Athlete, err = domain.ParseEntityID(rawAthlete); err != nil {
		return nil, fmt.Errorf("corrupt athlete id in store: %w", err)
	}
	if d.Brand, err = domain.ParseEntityID(rawBrand); err != nil {
		return nil, fmt.Errorf("corrupt brand id in store: %w", err)
	}
	if d.Platform, err = domain.ParseEntityID(rawPlatform); err != nil {
		return nil, fmt.Errorf("corrupt platform id in store: %w", err)
	}
	d.Jurisdiction = domain.Jurisdiction(rawJurisdiction)
	d.State = State(rawState)

	if err := json.Unmarshal(splits, &d.Splits); err != nil {
		return nil, fmt.Errorf("unmarshal splits: %w", err)
	}
	if len(compl) > 0 {
		var result compliance.CheckResult
		if err := json.Unmarshal(compl, &result); err != nil {
			return nil, fmt.Errorf("unmarshal compliance result: %w", err)
		}
		d.Compliance = &result
	}
	if len(payouts) > 0 {
		var p []settlement.Payout
		if err := json.Unmarshal(payouts, &p); err != nil {
			return nil, fmt.Errorf("unmarshal payouts: %w", err)
		}
		d.Payouts = p
	}
	return &d, nil
}
