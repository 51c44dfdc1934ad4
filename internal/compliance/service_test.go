package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilclear/internal/audit"
	"nilclear/internal/kyc"
	"nilclear/internal/sanctions"
	"nilclear/internal/volume"
	"nilclear/pkg/domain"
	"nilclear/pkg/requestcontext"
)

// =============================================================================
// Compliance Gate Test Suite
// =============================================================================
// Justification for unit tests: the gate owns the one side effect of
// evaluation (recording approved volume) and its fail-closed audit contract;
// both need real collaborators to observe.

type GateSuite struct {
	suite.Suite
	sanctions *sanctions.Service
	kyc       *kyc.Service
	ledger    *volume.Ledger
	policy    *PolicyService
	audits    *failableAuditStore
	gate      *Service

	athlete domain.EntityID
	brand   domain.EntityID
	now     time.Time
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

// failableAuditStore lets tests force Append to fail to exercise the
// fail-closed path.
type failableAuditStore struct {
	*audit.InMemoryStore
	failAppend bool
}

func (s *failableAuditStore) Append(ctx context.Context, event audit.Event) error {
	if s.failAppend {
		return context.DeadlineExceeded
	}
	return s.InMemoryStore.Append(ctx, event)
}

func (s *GateSuite) SetupTest() {
	s.athlete = entity(1)
	s.brand = entity(2)
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.audits = &failableAuditStore{InMemoryStore: audit.NewInMemoryStore()}
	auditor := audit.NewPublisher(s.audits)

	var err error
	s.sanctions, err = sanctions.New(sanctions.NewInMemoryStore(), sanctions.WithAuditPublisher(auditor))
	s.Require().NoError(err)

	s.policy, err = NewPolicyService(NewInMemoryPolicyStore(), auditor)
	s.Require().NoError(err)
	s.Require().NoError(s.policy.ApproveJurisdiction(s.ctx(), "US"))

	s.kyc, err = kyc.New(kyc.NewInMemoryStore(), s.policy, kyc.WithAuditPublisher(auditor))
	s.Require().NoError(err)

	s.ledger, err = volume.NewLedger(volume.NewInMemoryStore())
	s.Require().NoError(err)

	s.gate, err = NewService(s.sanctions, s.kyc, s.ledger, s.policy, s.policy, auditor)
	s.Require().NoError(err)

	// enhanced_limit 10000, daily_limit 12000 per the canonical scenario.
	_, err = s.policy.UpdateThresholds(s.ctx(), Thresholds{
		BasicLimit:         1_000,
		EnhancedLimit:      10_000,
		InstitutionalLimit: 100_000,
		DailyLimit:         12_000,
		MonthlyLimit:       50_000,
	})
	s.Require().NoError(err)
}

func (s *GateSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *GateSuite) verifyAthlete(tier domain.Tier) {
	_, err := s.kyc.Verify(s.ctx(), kyc.VerifyRequest{
		Entity:       s.athlete,
		Tier:         tier,
		Jurisdiction: "US",
		DocumentHash: "sha256:abc",
		ExpiresAt:    s.now.Add(365 * 24 * time.Hour),
	})
	s.Require().NoError(err)
}

func (s *GateSuite) check(amount uint64) (CheckResult, error) {
	return s.gate.Check(s.ctx(), CheckRequest{
		DealID:       domain.NewDealID(),
		Athlete:      s.athlete,
		Brand:        s.brand,
		Amount:       amount,
		Jurisdiction: "US",
	})
}

func (s *GateSuite) TestCheck() {
	s.Run("approval records volume exactly once", func() {
		s.verifyAthlete(domain.TierEnhanced)

		result, err := s.check(5_000)
		s.Require().NoError(err)
		s.True(result.Approved)

		day, err := s.ledger.CurrentDayTotal(s.ctx(), s.athlete, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(5_000), day)
	})

	s.Run("second deal over the daily limit is rejected and ledger unchanged", func() {
		result, err := s.check(8_000)
		s.Require().NoError(err)
		s.False(result.Approved)
		s.Equal(ReasonDailyLimitExceeded, result.Reason)

		day, err := s.ledger.CurrentDayTotal(s.ctx(), s.athlete, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(5_000), day)
	})

	s.Run("every decision lands in the audit trail", func() {
		var decisions int
		for _, e := range s.allEvents() {
			if e.Action == audit.ActionComplianceEvaluated {
				decisions++
			}
		}
		s.Equal(2, decisions)
	})
}

func (s *GateSuite) allEvents() []audit.Event {
	entries, err := s.audits.NextUnpublished(context.Background(), 1000)
	s.Require().NoError(err)
	events := make([]audit.Event, len(entries))
	for i, entry := range entries {
		events[i] = entry.Event
	}
	return events
}

func (s *GateSuite) TestCheckSanctions() {
	s.Run("sanctioned athlete rejected at amount zero with valid kyc", func() {
		s.verifyAthlete(domain.TierInstitutional)
		s.Require().NoError(s.sanctions.ListEntity(s.ctx(), sanctions.ListRequest{
			Entity:   s.athlete,
			ListName: "OFAC-SDN",
			Reason:   "test entry",
		}))

		result, err := s.check(0)
		s.Require().NoError(err)
		s.False(result.Approved)
		s.Equal(ReasonSanctionsHit, result.Reason)
	})

	s.Run("delisted athlete clears again", func() {
		s.Require().NoError(s.sanctions.Delist(s.ctx(), s.athlete))

		result, err := s.check(100)
		s.Require().NoError(err)
		s.True(result.Approved)
	})
}

func (s *GateSuite) TestCheckExpiredKYC() {
	s.Run("expired record treated as unverified", func() {
		_, err := s.kyc.Verify(s.ctx(), kyc.VerifyRequest{
			Entity:       s.athlete,
			Tier:         domain.TierEnhanced,
			Jurisdiction: "US",
			ExpiresAt:    s.now.Add(time.Hour),
		})
		s.Require().NoError(err)

		// Evaluate after the record has lapsed.
		later := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Hour))
		result, err := s.gate.Check(later, CheckRequest{
			DealID:       domain.NewDealID(),
			Athlete:      s.athlete,
			Brand:        s.brand,
			Amount:       100,
			Jurisdiction: "US",
		})
		s.Require().NoError(err)
		s.False(result.Approved)
		s.Equal(ReasonTierLimitExceeded, result.Reason)
	})
}

func (s *GateSuite) TestCheckAuditFailure() {
	s.Run("audit failure rolls back recorded volume", func() {
		s.verifyAthlete(domain.TierEnhanced)
		s.audits.failAppend = true

		_, err := s.check(5_000)
		s.Error(err)

		s.audits.failAppend = false
		day, err := s.ledger.CurrentDayTotal(s.ctx(), s.athlete, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(0), day)
	})
}
