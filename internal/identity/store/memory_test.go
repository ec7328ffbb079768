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
)

type MemoryStoreSuite struct {
	suite.Suite
	store *store.Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = store.NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestCreateDID() {
	did := &models.DID{Identifier: "alice-id", Owner: id.Address("0xabc"), CreatedAt: time.Now()}

	s.Run("creates and retrieves", func() {
		s.Require().NoError(s.store.CreateDID(s.ctx, did))

		got, err := s.store.FindDID(s.ctx, did.Owner)
		s.Require().NoError(err)
		s.Equal("alice-id", got.Identifier)
		s.Equal(did.Owner, got.Owner)
	})

	s.Run("rejects a second DID for the same owner", func() {
		err := s.store.CreateDID(s.ctx, &models.DID{Identifier: "other", Owner: did.Owner})
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("returned copy does not alias store state", func() {
		got, err := s.store.FindDID(s.ctx, did.Owner)
		s.Require().NoError(err)
		got.Identifier = "mutated"

		again, err := s.store.FindDID(s.ctx, did.Owner)
		s.Require().NoError(err)
		s.Equal("alice-id", again.Identifier)
	})
}

func (s *MemoryStoreSuite) TestFindDIDMissing() {
	_, err := s.store.FindDID(s.ctx, id.Address("0xnobody"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestMetadata() {
	owner := id.Address("0xabc")

	s.Run("missing before first upsert", func() {
		_, err := s.store.FindMetadata(s.ctx, owner)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("upsert then find", func() {
		md := &models.Metadata{Name: "Alice", Email: "alice@example.com", ProfilePicture: "https://img.example/a.png"}
		s.Require().NoError(s.store.UpsertMetadata(s.ctx, owner, md))

		got, err := s.store.FindMetadata(s.ctx, owner)
		s.Require().NoError(err)
		s.Equal(md, got)
	})

	s.Run("second upsert overwrites", func() {
		md := &models.Metadata{Name: "Alice B", Email: "ab@example.com", ProfilePicture: "https://img.example/b.png"}
		s.Require().NoError(s.store.UpsertMetadata(s.ctx, owner, md))

		got, err := s.store.FindMetadata(s.ctx, owner)
		s.Require().NoError(err)
		s.Equal("Alice B", got.Name)
	})
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}
