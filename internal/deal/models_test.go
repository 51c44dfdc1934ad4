package deal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilclear/internal/compliance"
	dErrors "nilclear/pkg/domain-errors"
)

// =============================================================================
// Deal State Machine Test Suite
// =============================================================================

type ModelsSuite struct {
	suite.Suite
	now time.Time
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func (s *ModelsSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *ModelsSuite) TestCanTransitionTo() {
	s.Run("pending branches on the compliance decision", func() {
		s.True(StatePending.CanTransitionTo(StateApproved))
		s.True(StatePending.CanTransitionTo(StateRejected))
		s.True(StatePending.CanTransitionTo(StateCancelled))
		s.False(StatePending.CanTransitionTo(StateExecuted))
	})

	s.Run("approved settles or cancels", func() {
		s.True(StateApproved.CanTransitionTo(StateExecuted))
		s.True(StateApproved.CanTransitionTo(StateCancelled))
		s.False(StateApproved.CanTransitionTo(StateRejected))
	})

	s.Run("terminal states go nowhere", func() {
		for _, terminal := range []State{StateRejected, StateExecuted, StateCancelled} {
			for _, next := range []State{StatePending, StateApproved, StateRejected, StateExecuted, StateCancelled} {
				s.Falsef(terminal.CanTransitionTo(next), "%s -> %s must be forbidden", terminal, next)
			}
		}
	})
}

func (s *ModelsSuite) TestApplyCompliance() {
	s.Run("approval moves pending to approved", func() {
		d := &Deal{State: StatePending}
		err := d.ApplyCompliance(compliance.CheckResult{Approved: true}, s.now)
		s.NoError(err)
		s.Equal(StateApproved, d.State)
		s.NotNil(d.Compliance)
	})

	s.Run("rejection moves pending to rejected", func() {
		d := &Deal{State: StatePending}
		err := d.ApplyCompliance(compliance.CheckResult{Approved: false}, s.now)
		s.NoError(err)
		s.Equal(StateRejected, d.State)
	})

	s.Run("non-pending deal cannot be re-evaluated", func() {
		d := &Deal{State: StateApproved}
		err := d.ApplyCompliance(compliance.CheckResult{Approved: true}, s.now)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}

func (s *ModelsSuite) TestCanExecute() {
	s.Run("approved deal may execute", func() {
		d := &Deal{State: StateApproved}
		s.NoError(d.CanExecute())
	})

	s.Run("executed deal reports already executed", func() {
		d := &Deal{State: StateExecuted}
		err := d.CanExecute()
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExecuted))
	})

	s.Run("other states report invalid transition", func() {
		for _, state := range []State{StatePending, StateRejected, StateCancelled} {
			d := &Deal{State: state}
			err := d.CanExecute()
			s.Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
		}
	})
}

func (s *ModelsSuite) TestCancel() {
	s.Run("pending and approved deals cancel", func() {
		for _, state := range []State{StatePending, StateApproved} {
			d := &Deal{State: state}
			s.NoError(d.Cancel("terms withdrawn", s.now))
			s.Equal(StateCancelled, d.State)
			s.Equal("terms withdrawn", d.CancelReason)
		}
	})

	s.Run("executed deal cannot cancel", func() {
		d := &Deal{State: StateExecuted}
		err := d.Cancel("too late", s.now)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}
