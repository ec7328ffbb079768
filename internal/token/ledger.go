// Package token provides the ownership ledger for collectible treasure items.
//
// The game core composes against the Ledger capability rather than inheriting
// a token-standard implementation; any backend that enforces mint-once and
// owner-only transfer can serve.
package token

import (
	"context"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
)

// Collection identifies the token collection treasures are minted into.
type Collection struct {
	Name   string
	Symbol string
}

// Ledger records unique, transferable ownership of treasure tokens.
//
// Implementations return sentinel errors for factual conflicts:
//   - Mint of an existing token ID: sentinel.ErrAlreadyUsed
//   - Transfer/SetURI/OwnerOf of an unknown token ID: sentinel.ErrNotFound
//   - Transfer where from is not the current owner: sentinel.ErrInvalidState
type Ledger interface {
	Mint(ctx context.Context, owner id.Address, tokenID id.TreasureID) error
	Transfer(ctx context.Context, from, to id.Address, tokenID id.TreasureID) error
	SetURI(ctx context.Context, tokenID id.TreasureID, uri string) error
	OwnerOf(ctx context.Context, tokenID id.TreasureID) (id.Address, error)
}
