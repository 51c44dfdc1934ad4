package kyc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nilclear/internal/audit"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/platform/sentinel"
	"nilclear/pkg/requestcontext"
)

// Store is the persistence contract for verification records.
type Store interface {
	Upsert(ctx context.Context, record *Record) error
	Find(ctx context.Context, entity domain.EntityID) (*Record, error)
}

// JurisdictionChecker answers whether a jurisdiction is on the approved set.
// Wired to the compliance policy service.
type JurisdictionChecker interface {
	IsApproved(ctx context.Context, jurisdiction domain.Jurisdiction) (bool, error)
}

// AuditPublisher records verifications for the compliance trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns entity verification.
type Service struct {
	store         Store
	jurisdictions JurisdictionChecker
	audits        AuditPublisher
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audits = publisher
	}
}

func New(store Store, jurisdictions JurisdictionChecker, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kyc store is required")
	}
	if jurisdictions == nil {
		return nil, fmt.Errorf("jurisdiction checker is required")
	}
	svc := &Service{store: store, jurisdictions: jurisdictions}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// VerifyRequest captures a compliance-officer verification of an entity.
type VerifyRequest struct {
	Entity       domain.EntityID
	Tier         domain.Tier
	Jurisdiction domain.Jurisdiction
	DocumentHash string
	ExpiresAt    time.Time
}

// Verify records (or overwrites) an entity's verification.
//
// Errors: CodeJurisdictionNotApproved when the jurisdiction is not on the
// approved set; CodeValidation for structural problems.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*Record, error) {
	if req.Entity.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	if !req.Tier.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid tier")
	}
	now := requestcontext.Now(ctx)
	if !req.ExpiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "expiry must be in the future")
	}

	approved, err := s.jurisdictions.IsApproved(ctx, req.Jurisdiction)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check jurisdiction")
	}
	if !approved {
		return nil, dErrors.Newf(dErrors.CodeJurisdictionNotApproved, "jurisdiction %s is not approved", req.Jurisdiction)
	}

	record := &Record{
		Entity:       req.Entity,
		Tier:         req.Tier,
		Jurisdiction: req.Jurisdiction,
		DocumentHash: req.DocumentHash,
		VerifiedAt:   now,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save kyc record")
	}

	if s.audits != nil {
		if err := s.audits.Emit(ctx, audit.Event{
			Action:    audit.ActionAthleteVerified,
			Entity:    req.Entity.String(),
			Decision:  req.Tier.String(),
			Reason:    req.Jurisdiction.String(),
			RequestID: requestcontext.RequestID(ctx),
			ActorID:   requestcontext.Actor(ctx),
		}); err != nil {
			return nil, err
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "entity verified",
			"entity", req.Entity,
			"tier", req.Tier,
			"jurisdiction", req.Jurisdiction,
		)
	}
	return record, nil
}

// RecordFor returns the usable verification record for an entity at the given
// time, or nil when the entity is unverified or the record has expired.
func (s *Service) RecordFor(ctx context.Context, entity domain.EntityID, now time.Time) (*Record, error) {
	if entity.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	record, err := s.store.Find(ctx, entity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load kyc record")
	}
	if record.Expired(now) {
		return nil, nil
	}
	return record, nil
}
