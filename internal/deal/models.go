package deal

import (
	"time"

	"nilclear/internal/compliance"
	"nilclear/internal/settlement"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
)

// State is a deal's position in its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateExecuted  State = "executed"
	StateCancelled State = "cancelled"
)

// transitions is the full lifecycle: Pending splits on the compliance
// decision, Approved settles or cancels, everything else is terminal.
var transitions = map[State][]State{
	StatePending:  {StateApproved, StateRejected, StateCancelled},
	StateApproved: {StateExecuted, StateCancelled},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Deal is a sponsorship agreement between a brand and an athlete, submitted
// by an authorized platform and gated through compliance before settlement.
type Deal struct {
	ID           domain.DealID       `json:"id"`
	Athlete      domain.EntityID     `json:"athlete"`
	Brand        domain.EntityID     `json:"brand"`
	Platform     domain.EntityID     `json:"platform"`
	Amount       uint64              `json:"amount"`
	Currency     string              `json:"currency"`
	Jurisdiction domain.Jurisdiction `json:"jurisdiction"`
	Deliverables []string            `json:"deliverables"`
	TermsRef     string              `json:"terms_ref"`
	Splits       []domain.Split      `json:"splits"`
	State        State               `json:"state"`
	// Compliance is set once by the first evaluation and immutable after.
	Compliance   *compliance.CheckResult `json:"compliance,omitempty"`
	Payouts      []settlement.Payout     `json:"payouts,omitempty"`
	CancelReason string                  `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// CanEvaluate reports whether a compliance decision may be applied.
func (d *Deal) CanEvaluate() error {
	if d.State != StatePending {
		return dErrors.Newf(dErrors.CodeInvalidStateTransition,
			"deal is %s, compliance applies only to pending deals", d.State)
	}
	return nil
}

// ApplyCompliance moves a pending deal to approved or rejected based on the
// recorded decision.
func (d *Deal) ApplyCompliance(result compliance.CheckResult, at time.Time) error {
	if err := d.CanEvaluate(); err != nil {
		return err
	}
	d.Compliance = &result
	if result.Approved {
		d.State = StateApproved
	} else {
		d.State = StateRejected
	}
	d.UpdatedAt = at
	return nil
}

// CanExecute reports whether settlement may begin.
func (d *Deal) CanExecute() error {
	if d.State == StateExecuted {
		return dErrors.New(dErrors.CodeAlreadyExecuted, "deal has already been executed")
	}
	if d.State != StateApproved {
		return dErrors.Newf(dErrors.CodeInvalidStateTransition,
			"deal is %s, only approved deals can be executed", d.State)
	}
	return nil
}

// MarkExecuted records settlement completion with the final payout list.
func (d *Deal) MarkExecuted(payouts []settlement.Payout, at time.Time) error {
	if err := d.CanExecute(); err != nil {
		return err
	}
	d.State = StateExecuted
	d.Payouts = payouts
	d.UpdatedAt = at
	return nil
}

// CanCancel reports whether the deal may still be cancelled. Only valid
// pre-execution.
func (d *Deal) CanCancel() error {
	if d.State != StatePending && d.State != StateApproved {
		return dErrors.Newf(dErrors.CodeInvalidStateTransition,
			"deal is %s, only pending or approved deals can be cancelled", d.State)
	}
	return nil
}

// Cancel moves the deal to cancelled with an operator-supplied reason.
func (d *Deal) Cancel(reason string, at time.Time) error {
	if err := d.CanCancel(); err != nil {
		return err
	}
	d.State = StateCancelled
	d.CancelReason = reason
	d.UpdatedAt = at
	return nil
}
