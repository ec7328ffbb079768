package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/service"
	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/store"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	auditmemory "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/store/memory"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/publisher"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

type IdentityServiceSuite struct {
	suite.Suite
	service *service.Service
	events  *auditmemory.InMemoryStore
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.events = auditmemory.NewInMemoryStore()
	s.service = service.New(store.NewMemory(),
		service.WithAuditPublisher(publisher.NewPublisher(s.events)),
	)
}

func (s *IdentityServiceSuite) as(addr string) context.Context {
	return requestcontext.WithCaller(context.Background(), id.Address(addr))
}

func (s *IdentityServiceSuite) TestCreateDID() {
	s.Run("creates exactly one DID per address", func() {
		ctx := s.as("0xalice")

		did, err := s.service.CreateDID(ctx, "did:hunt:alice")
		s.Require().NoError(err)
		s.Equal("did:hunt:alice", did.Identifier)
		s.Equal(id.Address("0xalice"), did.Owner)

		_, err = s.service.CreateDID(ctx, "did:hunt:alice-again")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects empty identifier", func() {
		_, err := s.service.CreateDID(s.as("0xbob"), "   ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("emits a did_created event", func() {
		ctx := s.as("0xcarol")
		_, err := s.service.CreateDID(ctx, "did:hunt:carol")
		s.Require().NoError(err)

		events, err := s.events.ListByActor(ctx, id.Address("0xcarol"))
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventDIDCreated), events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
	})

	s.Run("failed attempt emits nothing", func() {
		_, err := s.service.CreateDID(s.as("0xdan"), "")
		s.Require().Error(err)

		events, err := s.events.ListByActor(context.Background(), id.Address("0xdan"))
		s.Require().NoError(err)
		s.Empty(events)
	})
}

func (s *IdentityServiceSuite) TestGetDID() {
	ctx := s.as("0xalice")
	_, err := s.service.CreateDID(ctx, "did:hunt:alice")
	s.Require().NoError(err)

	s.Run("returns registered DID", func() {
		did, err := s.service.GetDID(ctx, id.Address("0xalice"))
		s.Require().NoError(err)
		s.Equal("did:hunt:alice", did.Identifier)
	})

	s.Run("unknown address is not found", func() {
		_, err := s.service.GetDID(ctx, id.Address("0xnobody"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *IdentityServiceSuite) TestHasDID() {
	ctx := s.as("0xalice")
	_, err := s.service.CreateDID(ctx, "did:hunt:alice")
	s.Require().NoError(err)

	ok, err := s.service.HasDID(ctx, id.Address("0xalice"))
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.HasDID(ctx, id.Address("0xnobody"))
	s.Require().NoError(err)
	s.False(ok)
}

func (s *IdentityServiceSuite) TestSetMetadata() {
	s.Run("requires a DID first", func() {
		_, err := s.service.SetMetadata(s.as("0xnodid"), "Name", "n@example.com", "pic")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	ctx := s.as("0xalice")
	_, err := s.service.CreateDID(ctx, "did:hunt:alice")
	s.Require().NoError(err)

	s.Run("rejects empty fields", func() {
		_, err := s.service.SetMetadata(ctx, "Alice", "", "pic")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("stores and overwrites", func() {
		_, err := s.service.SetMetadata(ctx, "Alice", "alice@example.com", "https://img.example/a.png")
		s.Require().NoError(err)

		md, err := s.service.GetMetadata(ctx, id.Address("0xalice"))
		s.Require().NoError(err)
		s.Equal("Alice", md.Name)

		_, err = s.service.SetMetadata(ctx, "Alice B", "ab@example.com", "https://img.example/b.png")
		s.Require().NoError(err)

		md, err = s.service.GetMetadata(ctx, id.Address("0xalice"))
		s.Require().NoError(err)
		s.Equal("Alice B", md.Name)
		s.Equal("ab@example.com", md.Email)
	})

	s.Run("emits a metadata_set event per write", func() {
		events, err := s.events.ListByAction(context.Background(), string(audit.EventMetadataSet))
		s.Require().NoError(err)
		s.Len(events, 2)
	})
}

func (s *IdentityServiceSuite) TestGetMetadataMissing() {
	ctx := s.as("0xalice")
	_, err := s.service.GetMetadata(ctx, id.Address("0xalice"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
