//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/models"
	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/store"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "metadata", "dids"))
}

func (s *PostgresStoreSuite) TestDIDRoundTrip() {
	ctx := context.Background()
	did := &models.DID{
		Identifier: "did:hunt:alice",
		Owner:      id.Address("0xalice"),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	s.Require().NoError(s.store.CreateDID(ctx, did))

	got, err := s.store.FindDID(ctx, did.Owner)
	s.Require().NoError(err)
	s.Equal(did.Identifier, got.Identifier)
	s.Equal(did.Owner, got.Owner)
	s.WithinDuration(did.CreatedAt, got.CreatedAt, time.Millisecond)

	s.Run("duplicate owner is rejected", func() {
		err := s.store.CreateDID(ctx, &models.DID{Identifier: "did:hunt:other", Owner: did.Owner, CreatedAt: time.Now()})
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("unknown owner is not found", func() {
		_, err := s.store.FindDID(ctx, id.Address("0xnobody"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestMetadataUpsert() {
	ctx := context.Background()
	owner := id.Address("0xalice")
	s.Require().NoError(s.store.CreateDID(ctx, &models.DID{
		Identifier: "did:hunt:alice", Owner: owner, CreatedAt: time.Now(),
	}))

	md := &models.Metadata{Name: "Alice", Email: "alice@example.com", ProfilePicture: "https://img.example/a.png"}
	s.Require().NoError(s.store.UpsertMetadata(ctx, owner, md))

	got, err := s.store.FindMetadata(ctx, owner)
	s.Require().NoError(err)
	s.Equal(md, got)

	md.Name = "Alice B"
	s.Require().NoError(s.store.UpsertMetadata(ctx, owner, md))

	got, err = s.store.FindMetadata(ctx, owner)
	s.Require().NoError(err)
	s.Equal("Alice B", got.Name)
}
