package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/models"
	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/store"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *store.Memory
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = store.NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestRoles() {
	user := id.Address("0xalice")

	s.Run("missing role is not found", func() {
		_, err := s.store.FindRole(s.ctx, user)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("assignment overwrites", func() {
		s.Require().NoError(s.store.AssignRole(s.ctx, user, "engineer"))
		s.Require().NoError(s.store.AssignRole(s.ctx, user, "manager"))

		role, err := s.store.FindRole(s.ctx, user)
		s.Require().NoError(err)
		s.Equal("manager", role)
	})

	s.Run("holder lookup by role", func() {
		holder, err := s.store.HolderOf(s.ctx, "manager")
		s.Require().NoError(err)
		s.Equal(user, holder)

		_, err = s.store.HolderOf(s.ctx, "director")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestHistoryIsAppendOnly() {
	user := id.Address("0xalice")
	other := id.Address("0xbob")

	s.Require().NoError(s.store.AppendHistory(s.ctx, user, "engineer"))
	s.Require().NoError(s.store.AppendHistory(s.ctx, other, "intern"))
	s.Require().NoError(s.store.AppendHistory(s.ctx, user, "manager"))
	s.Require().NoError(s.store.AppendHistory(s.ctx, user, "engineer"))

	history, err := s.store.ListHistory(s.ctx, user)
	s.Require().NoError(err)
	s.Equal([]string{"engineer", "manager", "engineer"}, history)

	history, err = s.store.ListHistory(s.ctx, other)
	s.Require().NoError(err)
	s.Equal([]string{"intern"}, history)
}

func (s *MemoryStoreSuite) TestCredentialLedgerPreservesOrder() {
	subject := id.Address("0xalice")
	at := time.Unix(1700000000, 0)

	for i, issuer := range []id.Address{"0xissuer1", "0xissuer2", "0xissuer1"} {
		cred, err := models.NewCredential(issuer, subject, "engineer", int64(100*(i+1)), at)
		s.Require().NoError(err)
		s.Require().NoError(s.store.AppendCredential(s.ctx, cred))
	}

	creds, err := s.store.ListCredentials(s.ctx, subject)
	s.Require().NoError(err)
	s.Require().Len(creds, 3)
	s.Equal(id.Address("0xissuer1"), creds[0].Issuer)
	s.Equal(id.Address("0xissuer2"), creds[1].Issuer)
	s.Equal(int64(300), creds[2].Salary)

	s.Run("unknown subject has an empty ledger", func() {
		creds, err := s.store.ListCredentials(s.ctx, id.Address("0xnobody"))
		s.Require().NoError(err)
		s.Empty(creds)
	})
}
