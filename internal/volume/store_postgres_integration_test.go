//go:build integration

package volume_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"nilclear/internal/volume"
	"nilclear/pkg/domain"
	"nilclear/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *volume.PostgresStore
	entity   domain.EntityID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = volume.NewPostgres(s.postgres.Pool)
	s.entity[19] = 1
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "volume_buckets"))
}

func (s *PostgresStoreSuite) TestAddSubtractTotal() {
	ctx := context.Background()

	total, err := s.store.Total(ctx, s.entity, "2026-03-14")
	s.Require().NoError(err)
	s.Equal(uint64(0), total)

	s.Require().NoError(s.store.Add(ctx, s.entity, "2026-03-14", 5_000))
	s.Require().NoError(s.store.Add(ctx, s.entity, "2026-03-14", 3_000))

	total, err = s.store.Total(ctx, s.entity, "2026-03-14")
	s.Require().NoError(err)
	s.Equal(uint64(8_000), total)

	s.Require().NoError(s.store.Subtract(ctx, s.entity, "2026-03-14", 3_000))
	total, err = s.store.Total(ctx, s.entity, "2026-03-14")
	s.Require().NoError(err)
	s.Equal(uint64(5_000), total)
}

func (s *PostgresStoreSuite) TestSubtractClampsAtZero() {
	ctx := context.Background()

	s.Require().NoError(s.store.Add(ctx, s.entity, "2026-03-14", 1_000))
	s.Require().NoError(s.store.Subtract(ctx, s.entity, "2026-03-14", 5_000))

	total, err := s.store.Total(ctx, s.entity, "2026-03-14")
	s.Require().NoError(err)
	s.Equal(uint64(0), total)
}

func (s *PostgresStoreSuite) TestBucketsIsolated() {
	ctx := context.Background()

	s.Require().NoError(s.store.Add(ctx, s.entity, "2026-03-14", 700))
	s.Require().NoError(s.store.Add(ctx, s.entity, "2026-03", 700))

	total, err := s.store.Total(ctx, s.entity, "2026-03-15")
	s.Require().NoError(err)
	s.Equal(uint64(0), total)
}

// TestConcurrentAdds verifies the upsert keeps increments race-free at the
// row level.
func (s *PostgresStoreSuite) TestConcurrentAdds() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Require().NoError(s.store.Add(ctx, s.entity, "2026-03-14", 100))
		}()
	}
	wg.Wait()

	total, err := s.store.Total(ctx, s.entity, "2026-03-14")
	s.Require().NoError(err)
	s.Equal(uint64(goroutines*100), total)
}
