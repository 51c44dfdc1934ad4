package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/platform/sentinel"
	"nilclear/pkg/requestcontext"

	"nilclear/internal/audit"
)

// PolicyStore persists thresholds and the approved-jurisdiction set.
type PolicyStore interface {
	GetThresholds(ctx context.Context) (Thresholds, error)
	SaveThresholds(ctx context.Context, th Thresholds) error
	SetJurisdiction(ctx context.Context, code domain.Jurisdiction, approved bool) error
	JurisdictionApproved(ctx context.Context, code domain.Jurisdiction) (bool, error)
	ListJurisdictions(ctx context.Context) ([]domain.Jurisdiction, error)
}

// PolicyService is the restricted management surface for compliance
// configuration. Defaults are placeholders; operators set real values through
// UpdateThresholds before production use.
type PolicyService struct {
	store   PolicyStore
	auditor AuditPublisher
	logger  *slog.Logger
}

type PolicyOption func(*PolicyService)

func WithPolicyLogger(logger *slog.Logger) PolicyOption {
	return func(p *PolicyService) {
		p.logger = logger
	}
}

func NewPolicyService(store PolicyStore, auditor AuditPublisher, opts ...PolicyOption) (*PolicyService, error) {
	if store == nil {
		return nil, fmt.Errorf("policy store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit publisher is required")
	}
	p := &PolicyService{store: store, auditor: auditor}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Thresholds returns the active configuration, falling back to defaults when
// nothing has been stored yet.
func (p *PolicyService) Thresholds(ctx context.Context) (Thresholds, error) {
	th, err := p.store.GetThresholds(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return DefaultThresholds(), nil
		}
		return Thresholds{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load thresholds")
	}
	return th, nil
}

// UpdateThresholds replaces the active configuration. The stored version is
// bumped so auditors can correlate decisions with the thresholds in force.
func (p *PolicyService) UpdateThresholds(ctx context.Context, th Thresholds) (Thresholds, error) {
	if err := th.Validate(); err != nil {
		return Thresholds{}, err
	}
	current, err := p.Thresholds(ctx)
	if err != nil {
		return Thresholds{}, err
	}
	th.Version = current.Version + 1
	th.UpdatedAt = requestcontext.Now(ctx)

	if err := p.store.SaveThresholds(ctx, th); err != nil {
		return Thresholds{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save thresholds")
	}

	detail, err := json.Marshal(th)
	if err != nil {
		return Thresholds{}, fmt.Errorf("marshal thresholds: %w", err)
	}
	if err := p.auditor.Emit(ctx, audit.Event{
		Action: audit.ActionThresholdsUpdated,
		Detail: detail,
	}); err != nil {
		return Thresholds{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit threshold update")
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, "compliance thresholds updated", "version", th.Version)
	}
	return th, nil
}

// ApproveJurisdiction adds a jurisdiction code to the approved set.
func (p *PolicyService) ApproveJurisdiction(ctx context.Context, code string) error {
	return p.setJurisdiction(ctx, code, true)
}

// RevokeJurisdiction removes a jurisdiction code from the approved set. Deals
// already approved under it are unaffected; only new evaluations see the
// change.
func (p *PolicyService) RevokeJurisdiction(ctx context.Context, code string) error {
	return p.setJurisdiction(ctx, code, false)
}

func (p *PolicyService) setJurisdiction(ctx context.Context, code string, approved bool) error {
	normalized, err := domain.ParseJurisdiction(code)
	if err != nil {
		return err
	}
	if err := p.store.SetJurisdiction(ctx, normalized, approved); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update jurisdiction")
	}

	decision := "revoked"
	if approved {
		decision = "approved"
	}
	if err := p.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionJurisdictionUpdated,
		Entity:   normalized.String(),
		Decision: decision,
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit jurisdiction update")
	}
	return nil
}

// IsApproved reports whether a jurisdiction is on the approved list.
func (p *PolicyService) IsApproved(ctx context.Context, code domain.Jurisdiction) (bool, error) {
	approved, err := p.store.JurisdictionApproved(ctx, code)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check jurisdiction")
	}
	return approved, nil
}

// ApprovedJurisdictions lists the currently approved codes.
func (p *PolicyService) ApprovedJurisdictions(ctx context.Context) ([]domain.Jurisdiction, error) {
	codes, err := p.store.ListJurisdictions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jurisdictions")
	}
	return codes, nil
}
