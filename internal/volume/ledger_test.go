package volume

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilclear/pkg/domain"
)

// =============================================================================
// Volume Ledger Test Suite
// =============================================================================

type LedgerSuite struct {
	suite.Suite
	store  *InMemoryStore
	ledger *Ledger
	entity domain.EntityID
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.store = NewInMemoryStore()
	var err error
	s.ledger, err = NewLedger(s.store)
	s.Require().NoError(err)
	s.entity[19] = 1
}

func (s *LedgerSuite) TestBuckets() {
	s.Run("day bucket is the UTC date", func() {
		at := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
		s.Equal("2026-03-14", DayBucket(at))
	})

	s.Run("month bucket is the UTC month", func() {
		at := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
		s.Equal("2026-03", MonthBucket(at))
	})

	s.Run("non-UTC times normalize to UTC buckets", func() {
		loc := time.FixedZone("UTC+9", 9*3600)
		at := time.Date(2026, 3, 15, 1, 0, 0, 0, loc) // 2026-03-14 16:00 UTC
		s.Equal("2026-03-14", DayBucket(at))
	})
}

func (s *LedgerSuite) TestAddAndTotals() {
	ctx := context.Background()
	day1 := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	s.Run("add lands in both buckets", func() {
		s.Require().NoError(s.ledger.Add(ctx, s.entity, 500, day1))

		day, err := s.ledger.CurrentDayTotal(ctx, s.entity, day1)
		s.NoError(err)
		s.Equal(uint64(500), day)

		month, err := s.ledger.CurrentMonthTotal(ctx, s.entity, day1)
		s.NoError(err)
		s.Equal(uint64(500), month)
	})

	s.Run("day rollover resets daily but keeps monthly", func() {
		s.Require().NoError(s.ledger.Add(ctx, s.entity, 300, day2))

		day, err := s.ledger.CurrentDayTotal(ctx, s.entity, day2)
		s.NoError(err)
		s.Equal(uint64(300), day)

		month, err := s.ledger.CurrentMonthTotal(ctx, s.entity, day2)
		s.NoError(err)
		s.Equal(uint64(800), month)
	})

	s.Run("month rollover resets monthly", func() {
		april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		month, err := s.ledger.CurrentMonthTotal(ctx, s.entity, april)
		s.NoError(err)
		s.Equal(uint64(0), month)
	})
}

func (s *LedgerSuite) TestRemove() {
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	s.Run("remove undoes a prior add in the same buckets", func() {
		s.Require().NoError(s.ledger.Add(ctx, s.entity, 1_000, at))
		s.Require().NoError(s.ledger.Remove(ctx, s.entity, 1_000, at))

		day, err := s.ledger.CurrentDayTotal(ctx, s.entity, at)
		s.NoError(err)
		s.Equal(uint64(0), day)

		month, err := s.ledger.CurrentMonthTotal(ctx, s.entity, at)
		s.NoError(err)
		s.Equal(uint64(0), month)
	})

	s.Run("removing more than recorded errors", func() {
		s.Require().NoError(s.ledger.Add(ctx, s.entity, 100, at))
		s.Error(s.ledger.Remove(ctx, s.entity, 500, at))
	})
}

func (s *LedgerSuite) TestEntitiesIsolated() {
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	var other domain.EntityID
	other[19] = 2

	s.Require().NoError(s.ledger.Add(ctx, s.entity, 700, at))

	total, err := s.ledger.CurrentDayTotal(ctx, other, at)
	s.NoError(err)
	s.Equal(uint64(0), total)
}
