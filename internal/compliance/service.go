package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nilclear/internal/audit"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/requestcontext"
)

// VolumeLedger is the mutable view of the athlete's rolling totals. Add is
// called exactly once per approved deal; Remove undoes it on cancellation or
// when the audit write fails.
type VolumeLedger interface {
	VolumeReader
	Add(ctx context.Context, entity domain.EntityID, amount uint64, at time.Time) error
	Remove(ctx context.Context, entity domain.EntityID, amount uint64, at time.Time) error
}

// ThresholdsProvider resolves the active compliance thresholds.
type ThresholdsProvider interface {
	Thresholds(ctx context.Context) (Thresholds, error)
}

// AuditPublisher records compliance decisions. Emit failures are fatal to the
// operation that triggered them.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the compliance gate: it gathers evidence, runs the rule chain,
// records approved amounts against the volume ledger, and audits the decision.
type Service struct {
	sanctions     SanctionsScreener
	kyc           KYCResolver
	volume        VolumeLedger
	jurisdictions JurisdictionChecker
	thresholds    ThresholdsProvider
	auditor       AuditPublisher
	logger        *slog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
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
	sanctions SanctionsScreener,
	kycResolver KYCResolver,
	volume VolumeLedger,
	jurisdictions JurisdictionChecker,
	thresholds ThresholdsProvider,
	auditor AuditPublisher,
	opts ...Option,
) (*Service, error) {
	if sanctions == nil {
		return nil, fmt.Errorf("sanctions screener is required")
	}
	if kycResolver == nil {
		return nil, fmt.Errorf("kyc resolver is required")
	}
	if volume == nil {
		return nil, fmt.Errorf("volume ledger is required")
	}
	if jurisdictions == nil {
		return nil, fmt.Errorf("jurisdiction checker is required")
	}
	if thresholds == nil {
		return nil, fmt.Errorf("thresholds provider is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit publisher is required")
	}
	s := &Service{
		sanctions:     sanctions,
		kyc:           kycResolver,
		volume:        volume,
		jurisdictions: jurisdictions,
		thresholds:    thresholds,
		auditor:       auditor,
		tracer:        otel.Tracer("nilclear/compliance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Check evaluates a deal against the full rule chain. On approval the amount
// is added to the athlete's volume buckets before the decision is audited; if
// the audit write then fails, the addition is rolled back and the error is
// returned so the caller treats the evaluation as never having happened.
func (s *Service) Check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.Check",
		trace.WithAttributes(
			attribute.String("deal.id", req.DealID.String()),
			attribute.Int64("deal.amount", int64(req.Amount)),
		),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return CheckResult{}, err
	}

	now := requestcontext.Now(ctx)
	started := time.Now()

	th, err := s.thresholds.Thresholds(ctx)
	if err != nil {
		return CheckResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load compliance thresholds")
	}

	ev, err := s.gatherEvidence(ctx, req, now)
	if err != nil {
		return CheckResult{}, err
	}

	result := Evaluate(req, ev, th, now)
	span.SetAttributes(
		attribute.Bool("compliance.approved", result.Approved),
		attribute.String("compliance.reason", result.Reason),
	)

	if result.Approved {
		if err := s.volume.Add(ctx, req.Athlete, req.Amount, now); err != nil {
			return CheckResult{}, err
		}
	}

	if err := s.emitDecision(ctx, req, result); err != nil {
		if result.Approved {
			if rbErr := s.volume.Remove(ctx, req.Athlete, req.Amount, now); rbErr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to roll back volume after audit failure",
					"deal_id", req.DealID,
					"athlete", req.Athlete,
					"error", rbErr,
				)
			}
		}
		return CheckResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit compliance decision")
	}

	s.metrics.observe(result.Reason, time.Since(started).Seconds())
	if s.logger != nil {
		s.logger.InfoContext(ctx, "compliance decision",
			"deal_id", req.DealID,
			"athlete", req.Athlete,
			"brand", req.Brand,
			"amount", req.Amount,
			"approved", result.Approved,
			"reason", result.Reason,
		)
	}
	return result, nil
}

func (s *Service) emitDecision(ctx context.Context, req CheckRequest, result CheckResult) error {
	decision := "rejected"
	if result.Approved {
		decision = "approved"
	}
	detail, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal compliance result: %w", err)
	}
	return s.auditor.Emit(ctx, audit.Event{
		Action:       audit.ActionComplianceEvaluated,
		DealID:       req.DealID.String(),
		Entity:       req.Athlete.String(),
		Counterparty: req.Brand.String(),
		Amount:       req.Amount,
		Decision:     decision,
		Reason:       result.Reason,
		Detail:       detail,
	})
}
