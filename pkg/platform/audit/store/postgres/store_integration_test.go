//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/store/postgres"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditStoreSuite) TestAppendAndListByActor() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	events := []audit.Event{
		{
			Category:  audit.CategoryCompliance,
			Timestamp: base,
			Actor:     id.Address("0xalice"),
			Subject:   "0xalice",
			Action:    string(audit.EventDIDCreated),
			Reason:    "did:hunt:alice",
			RequestID: "req-1",
		},
		{
			Category:   audit.CategoryCompliance,
			Timestamp:  base.Add(time.Second),
			Actor:      id.Address("0xalice"),
			Subject:    "0xalice",
			Action:     string(audit.EventRoleVerified),
			Decision:   "true",
			Commitment: "deadbeef",
			RequestID:  "req-2",
		},
		{
			Category:  audit.CategoryOperations,
			Timestamp: base.Add(2 * time.Second),
			Actor:     id.Address("0xbob"),
			Subject:   "3",
			Action:    string(audit.EventTreasureClaimed),
			Amount:    101,
			Position:  42,
			RequestID: "req-3",
		},
	}
	for _, event := range events {
		s.Require().NoError(s.store.Append(ctx, event))
	}

	got, err := s.store.ListByActor(ctx, id.Address("0xalice"))
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(string(audit.EventDIDCreated), got[0].Action)
	s.Equal(string(audit.EventRoleVerified), got[1].Action)
	s.Equal("true", got[1].Decision)
	s.Equal("deadbeef", got[1].Commitment)
	s.WithinDuration(base, got[0].Timestamp, time.Millisecond)
}

func (s *AuditStoreSuite) TestListAllPreservesEmissionOrder() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := range 5 {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			Category:  audit.CategoryOperations,
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
			Actor:     id.Address("0xbob"),
			Subject:   "0xbob",
			Action:    string(audit.EventPlayerMoved),
			Amount:    int64(9 - i),
			Position:  i,
		}))
	}

	got, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 5)
	for i, event := range got {
		s.Equal(i, event.Position)
		s.Equal(int64(9-i), event.Amount)
	}
}
