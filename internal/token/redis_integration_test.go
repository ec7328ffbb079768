//go:build integration

package token_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/qxxq-lcvn/treasure-hunt/internal/token"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/testutil/containers"
)

type RedisLedgerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	ledger *token.RedisLedger
}

func TestRedisLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLedgerSuite))
}

func (s *RedisLedgerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ledger = token.NewRedisLedger(s.redis.Client, token.Collection{Name: "Treasure Hunt", Symbol: "HUNT"})
}

func (s *RedisLedgerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLedgerSuite) TestMintOnce() {
	ctx := context.Background()

	s.Require().NoError(s.ledger.Mint(ctx, id.Address("0xvault"), 1))
	s.Require().ErrorIs(s.ledger.Mint(ctx, id.Address("0xalice"), 1), sentinel.ErrAlreadyUsed)

	owner, err := s.ledger.OwnerOf(ctx, 1)
	s.Require().NoError(err)
	s.Equal(id.Address("0xvault"), owner)
}

func (s *RedisLedgerSuite) TestConcurrentMintExactlyOneWins() {
	ctx := context.Background()
	const minters = 16

	var wg sync.WaitGroup
	errs := make([]error, minters)
	for i := range minters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.ledger.Mint(ctx, id.Address("0xvault"), 7)
		}()
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
		}
	}
	s.Equal(1, wins)
}

func (s *RedisLedgerSuite) TestTransferOwnerOnly() {
	ctx := context.Background()
	vault := id.Address("0xvault")
	alice := id.Address("0xalice")

	s.Require().NoError(s.ledger.Mint(ctx, vault, 1))

	s.Require().ErrorIs(s.ledger.Transfer(ctx, alice, vault, 1), sentinel.ErrInvalidState)
	s.Require().NoError(s.ledger.Transfer(ctx, vault, alice, 1))

	owner, err := s.ledger.OwnerOf(ctx, 1)
	s.Require().NoError(err)
	s.Equal(alice, owner)

	s.Require().ErrorIs(s.ledger.Transfer(ctx, vault, alice, 1), sentinel.ErrInvalidState)
}

func (s *RedisLedgerSuite) TestUnknownToken() {
	ctx := context.Background()

	_, err := s.ledger.OwnerOf(ctx, 42)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.ledger.Transfer(ctx, id.Address("0xvault"), id.Address("0xalice"), 42), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.ledger.SetURI(ctx, 42, "ipfs://nothing"), sentinel.ErrNotFound)
}

func (s *RedisLedgerSuite) TestTokenURI() {
	ctx := context.Background()

	s.Require().NoError(s.ledger.Mint(ctx, id.Address("0xvault"), 1))

	uri, err := s.ledger.URI(ctx, 1)
	s.Require().NoError(err)
	s.Empty(uri)

	s.Require().NoError(s.ledger.SetURI(ctx, 1, "ipfs://treasure-hunt/metadata.json"))

	uri, err = s.ledger.URI(ctx, 1)
	s.Require().NoError(err)
	s.Equal("ipfs://treasure-hunt/metadata.json", uri)
}
