package deal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nilclear/internal/audit"
	"nilclear/internal/compliance"
	"nilclear/internal/settlement"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/platform/sentinel"
	"nilclear/pkg/requestcontext"
)

// Store is the deal persistence contract.
type Store interface {
	Create(ctx context.Context, d *Deal) error
	Update(ctx context.Context, d *Deal) error
	Find(ctx context.Context, id domain.DealID) (*Deal, error)
	ListByAthlete(ctx context.Context, athlete domain.EntityID) ([]*Deal, error)
}

// ComplianceGate evaluates a pending deal. On approval it has already
// recorded the amount against the athlete's volume buckets.
type ComplianceGate interface {
	Check(ctx context.Context, req compliance.CheckRequest) (compliance.CheckResult, error)
}

// Settler moves funds for an approved deal, all-or-nothing.
type Settler interface {
	Execute(ctx context.Context, dealID domain.DealID, from domain.EntityID, amount uint64, splits []domain.Split) ([]settlement.Payout, error)
}

// VolumeLedger is the rollback surface for cancellations of approved deals.
type VolumeLedger interface {
	Remove(ctx context.Context, entity domain.EntityID, amount uint64, at time.Time) error
}

// PlatformAuthorizer answers whether a platform may submit deals for an
// athlete.
type PlatformAuthorizer interface {
	Authorized(ctx context.Context, platform, athlete domain.EntityID) (bool, error)
}

// AuditPublisher records lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the deal lifecycle. All mutations of a deal are serialized per
// athlete so compliance evaluation never races itself on the volume totals.
type Service struct {
	store     Store
	gate      ComplianceGate
	settler   Settler
	volume    VolumeLedger
	platforms PlatformAuthorizer
	auditor   AuditPublisher
	locks     *entityLock
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(
	store Store,
	gate ComplianceGate,
	settler Settler,
	volume VolumeLedger,
	platforms PlatformAuthorizer,
	auditor AuditPublisher,
	opts ...Option,
) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("deal store is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("compliance gate is required")
	}
	if settler == nil {
		return nil, fmt.Errorf("settler is required")
	}
	if volume == nil {
		return nil, fmt.Errorf("volume ledger is required")
	}
	if platforms == nil {
		return nil, fmt.Errorf("platform authorizer is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit publisher is required")
	}
	s := &Service{
		store:     store,
		gate:      gate,
		settler:   settler,
		volume:    volume,
		platforms: platforms,
		auditor:   auditor,
		locks:     newEntityLock(),
		tracer:    otel.Tracer("nilclear/deal"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateRequest carries a platform's deal submission. The submitting platform
// comes from the authenticated request context, never from the body.
type CreateRequest struct {
	Athlete      domain.EntityID
	Brand        domain.EntityID
	Amount       uint64
	Currency     string
	Jurisdiction domain.Jurisdiction
	Deliverables []string
	TermsRef     string
	Splits       []domain.Split
}

func (r CreateRequest) Validate() error {
	if r.Athlete.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "athlete id is required")
	}
	if r.Brand.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "brand id is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	if r.Currency == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "currency is required")
	}
	if _, err := domain.ParseJurisdiction(r.Jurisdiction.String()); err != nil {
		return err
	}
	return domain.ValidateSplits(r.Splits)
}

// Create validates the submission and persists a pending deal. The caller
// must be authenticated as a platform on the athlete's allow-list.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Deal, error) {
	ctx, span := s.tracer.Start(ctx, "deal.Create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	platform := requestcontext.PlatformID(ctx)
	if platform.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is not an authenticated platform")
	}
	authorized, err := s.platforms.Authorized(ctx, platform, req.Athlete)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check platform authorization")
	}
	if !authorized {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "platform is not authorized for this athlete")
	}

	now := requestcontext.Now(ctx)
	d := &Deal{
		ID:           domain.NewDealID(),
		Athlete:      req.Athlete,
		Brand:        req.Brand,
		Platform:     platform,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Jurisdiction: req.Jurisdiction,
		Deliverables: req.Deliverables,
		TermsRef:     req.TermsRef,
		Splits:       req.Splits,
		State:        StatePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	span.SetAttributes(attribute.String("deal.id", d.ID.String()))

	if err := s.store.Create(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist deal")
	}

	detail, err := json.Marshal(struct {
		Deliverables []string `json:"deliverables"`
		TermsRef     string   `json:"terms_ref"`
	}{d.Deliverables, d.TermsRef})
	if err != nil {
		return nil, fmt.Errorf("marshal deal detail: %w", err)
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:       audit.ActionDealCreated,
		DealID:       d.ID.String(),
		Entity:       d.Athlete.String(),
		Counterparty: d.Brand.String(),
		Amount:       d.Amount,
		ActorID:      platform.String(),
		Detail:       detail,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit deal creation")
	}

	s.metrics.transition(StatePending)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "deal created",
			"deal_id", d.ID,
			"athlete", d.Athlete,
			"brand", d.Brand,
			"amount", d.Amount,
			"platform", platform,
		)
	}
	return d, nil
}

// Evaluate runs the compliance gate against a pending deal and applies the
// decision. The recorded result is immutable; re-evaluation of a non-pending
// deal fails.
func (s *Service) Evaluate(ctx context.Context, id domain.DealID) (*Deal, error) {
	ctx, span := s.tracer.Start(ctx, "deal.Evaluate",
		trace.WithAttributes(attribute.String("deal.id", id.String())),
	)
	defer span.End()

	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(d.Athlete)
	defer release()

	// Re-read under the lock; another evaluation may have won the race.
	if d, err = s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := d.CanEvaluate(); err != nil {
		return nil, err
	}

	result, err := s.gate.Check(ctx, compliance.CheckRequest{
		DealID:       d.ID,
		Athlete:      d.Athlete,
		Brand:        d.Brand,
		Amount:       d.Amount,
		Jurisdiction: d.Jurisdiction,
	})
	if err != nil {
		return nil, err
	}

	if err := d.ApplyCompliance(result, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, d); err != nil {
		// The gate already added an approved amount to the ledger; back it
		// out so the totals keep reconciling against stored deals.
		if result.Approved {
			if rbErr := s.volume.Remove(ctx, d.Athlete, d.Amount, result.EvaluatedAt); rbErr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to roll back volume after store failure",
					"deal_id", d.ID,
					"error", rbErr,
				)
			}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist compliance decision")
	}

	s.metrics.transition(d.State)
	return d, nil
}

// Execute settles an approved deal. Funds move all-or-nothing; a settlement
// failure leaves the deal approved.
func (s *Service) Execute(ctx context.Context, id domain.DealID) (*Deal, error) {
	ctx, span := s.tracer.Start(ctx, "deal.Execute",
		trace.WithAttributes(attribute.String("deal.id", id.String())),
	)
	defer span.End()

	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(d.Athlete)
	defer release()

	if d, err = s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := d.CanExecute(); err != nil {
		return nil, err
	}

	payouts, err := s.settler.Execute(ctx, d.ID, d.Brand, d.Amount, d.Splits)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := d.MarkExecuted(payouts, now); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, d); err != nil {
		// Funds have moved. Surface loudly; reconciliation against the audit
		// trail is the recovery path.
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "deal settled but state update failed",
				"deal_id", d.ID,
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist execution")
	}

	detail, err := json.Marshal(payouts)
	if err != nil {
		return nil, fmt.Errorf("marshal payouts: %w", err)
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:       audit.ActionDealExecuted,
		DealID:       d.ID.String(),
		Entity:       d.Athlete.String(),
		Counterparty: d.Brand.String(),
		Amount:       d.Amount,
		ActorID:      requestcontext.Actor(ctx),
		Detail:       detail,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit execution")
	}

	s.metrics.transition(StateExecuted)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "deal executed",
			"deal_id", d.ID,
			"amount", d.Amount,
			"payouts", len(payouts),
		)
	}
	return d, nil
}

// Cancel aborts a pending or approved deal. An approved deal's amount is
// backed out of the volume ledger using the buckets of its evaluation time.
func (s *Service) Cancel(ctx context.Context, id domain.DealID, reason string) (*Deal, error) {
	ctx, span := s.tracer.Start(ctx, "deal.Cancel",
		trace.WithAttributes(attribute.String("deal.id", id.String())),
	)
	defer span.End()

	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(d.Athlete)
	defer release()

	if d, err = s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := d.CanCancel(); err != nil {
		return nil, err
	}

	wasApproved := d.State == StateApproved
	if err := d.Cancel(reason, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist cancellation")
	}

	if wasApproved && d.Compliance != nil {
		if err := s.volume.Remove(ctx, d.Athlete, d.Amount, d.Compliance.EvaluatedAt); err != nil {
			return nil, err
		}
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionDealCancelled,
		DealID:  d.ID.String(),
		Entity:  d.Athlete.String(),
		Amount:  d.Amount,
		Reason:  reason,
		ActorID: requestcontext.Actor(ctx),
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit cancellation")
	}

	s.metrics.transition(StateCancelled)
	return d, nil
}

// Get returns a deal by id.
func (s *Service) Get(ctx context.Context, id domain.DealID) (*Deal, error) {
	return s.find(ctx, id)
}

// ListByAthlete returns the athlete's deals, oldest first.
func (s *Service) ListByAthlete(ctx context.Context, athlete domain.EntityID) ([]*Deal, error) {
	if athlete.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "athlete id is required")
	}
	deals, err := s.store.ListByAthlete(ctx, athlete)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list deals")
	}
	return deals, nil
}

func (s *Service) find(ctx context.Context, id domain.DealID) (*Deal, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "deal id is required")
	}
	d, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "deal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load deal")
	}
	return d, nil
}
