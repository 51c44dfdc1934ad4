package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nilclear/internal/audit"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/platform/sentinel"
	"nilclear/pkg/requestcontext"
)

// AuditPublisher records settlement outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Engine settles approved deals: it computes payouts from the deal's splits
// and moves funds out of the brand's vault in one atomic step.
type Engine struct {
	transfers Transfers
	auditor   AuditPublisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(transfers Transfers, auditor AuditPublisher, opts ...Option) (*Engine, error) {
	if transfers == nil {
		return nil, fmt.Errorf("transfers port is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit publisher is required")
	}
	e := &Engine{
		transfers: transfers,
		auditor:   auditor,
		tracer:    otel.Tracer("nilclear/settlement"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute distributes amount from the source vault across the splits. Every
// recipient is validated before any funds move; the transfer itself is a
// single atomic MultiTransfer, so a failure leaves all balances untouched and
// surfaces as CodeTransferFailed for the caller to keep the deal in its
// pre-execution state.
func (e *Engine) Execute(ctx context.Context, dealID domain.DealID, from domain.EntityID, amount uint64, splits []domain.Split) ([]Payout, error) {
	ctx, span := e.tracer.Start(ctx, "settlement.Execute",
		trace.WithAttributes(
			attribute.String("deal.id", dealID.String()),
			attribute.Int64("deal.amount", int64(amount)),
		),
	)
	defer span.End()

	payouts, err := Distribute(amount, splits)
	if err != nil {
		return nil, err
	}

	for _, payout := range payouts {
		ok, err := e.transfers.ValidRecipient(ctx, payout.Beneficiary)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTransferFailed, "failed to validate recipient")
		}
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeTransferFailed, "recipient %s cannot receive funds", payout.Beneficiary)
		}
	}

	if err := e.transfers.MultiTransfer(ctx, from, payouts); err != nil {
		if errors.Is(err, sentinel.ErrInsufficientFunds) {
			return nil, dErrors.Wrap(err, dErrors.CodeTransferFailed, "source vault has insufficient funds")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeTransferFailed, "multi-transfer failed")
	}

	if e.logger != nil {
		e.logger.InfoContext(ctx, "deal settled",
			"deal_id", dealID,
			"source", from,
			"amount", amount,
			"payouts", len(payouts),
		)
	}
	return payouts, nil
}

// EmergencyWithdraw sweeps the vault's full balance to its owner, bypassing
// splits and the compliance gate. Only the owner may invoke it; the sweep is
// audited distinctly from normal settlement.
func (e *Engine) EmergencyWithdraw(ctx context.Context, owner domain.EntityID, caller domain.EntityID) (uint64, error) {
	ctx, span := e.tracer.Start(ctx, "settlement.EmergencyWithdraw",
		trace.WithAttributes(attribute.String("vault.owner", owner.String())),
	)
	defer span.End()

	if owner.IsZero() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "vault owner is required")
	}
	if caller != owner {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "only the vault owner may withdraw")
	}

	balance, err := e.transfers.Balance(ctx, owner)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read vault balance")
	}
	if balance == 0 {
		return 0, nil
	}

	if err := e.transfers.Withdraw(ctx, owner, balance); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTransferFailed, "emergency withdrawal failed")
	}

	detail, err := json.Marshal(map[string]uint64{"swept": balance})
	if err != nil {
		return 0, fmt.Errorf("marshal withdrawal detail: %w", err)
	}
	if err := e.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionEmergencyWithdrawal,
		Entity:  owner.String(),
		Amount:  balance,
		ActorID: requestcontext.Actor(ctx),
		Detail:  detail,
	}); err != nil {
		// Audit is fail-closed: put the funds back so the vault matches the trail.
		if rbErr := e.transfers.Deposit(ctx, owner, balance); rbErr != nil && e.logger != nil {
			e.logger.ErrorContext(ctx, "failed to restore vault after audit failure",
				"owner", owner,
				"amount", balance,
				"error", rbErr,
			)
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit emergency withdrawal")
	}

	if e.logger != nil {
		e.logger.WarnContext(ctx, "emergency withdrawal executed", "owner", owner, "amount", balance)
	}
	return balance, nil
}
