//go:build integration

package sanctions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilclear/internal/sanctions"
	"nilclear/pkg/domain"
	"nilclear/pkg/platform/sentinel"
	"nilclear/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *sanctions.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = sanctions.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "sanction_entries"))
}

func (s *PostgresStoreSuite) entry(b byte, listed bool) *sanctions.Entry {
	var entity domain.EntityID
	entity[19] = b
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &sanctions.Entry{
		Entity:       entity,
		ListName:     "OFAC-SDN",
		Reason:       "designated",
		EvidenceHash: "sha256:evidence",
		Listed:       listed,
		ListedAt:     now,
		UpdatedAt:    now,
	}
}

func (s *PostgresStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()
	entry := s.entry(1, true)

	s.Require().NoError(s.store.Upsert(ctx, entry))

	found, err := s.store.Find(ctx, entry.Entity)
	s.Require().NoError(err)
	s.Equal(entry.Entity, found.Entity)
	s.Equal(entry.ListName, found.ListName)
	s.True(found.Listed)
	s.True(entry.ListedAt.Equal(found.ListedAt))
}

func (s *PostgresStoreSuite) TestUpsertOverwrites() {
	ctx := context.Background()
	entry := s.entry(1, true)
	s.Require().NoError(s.store.Upsert(ctx, entry))

	entry.Listed = false
	entry.Reason = "cleared"
	entry.UpdatedAt = entry.UpdatedAt.Add(time.Hour)
	s.Require().NoError(s.store.Upsert(ctx, entry))

	found, err := s.store.Find(ctx, entry.Entity)
	s.Require().NoError(err)
	s.False(found.Listed)
	s.Equal("cleared", found.Reason)

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	var entity domain.EntityID
	entity[19] = 9

	_, err := s.store.Find(context.Background(), entity)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrderedByListedAt() {
	ctx := context.Background()
	older := s.entry(1, true)
	older.ListedAt = older.ListedAt.Add(-time.Hour)
	newer := s.entry(2, true)

	s.Require().NoError(s.store.Upsert(ctx, newer))
	s.Require().NoError(s.store.Upsert(ctx, older))

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(older.Entity, entries[0].Entity)
	s.Equal(newer.Entity, entries[1].Entity)
}
