package models

import (
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
)

// InitialMoves is the move budget every player starts with. Both moving and
// claiming consume exactly one move.
const InitialMoves = 10

// Treasure is a board item placed once at initialization.
//
// Invariants:
//   - Position is immutable after placement
//   - Claimed flips exactly once, false to true
//   - Value is immutable after placement
type Treasure struct {
	ID       id.TreasureID `json:"id"`
	Value    int64         `json:"value"`
	Claimed  bool          `json:"claimed"`
	Position int           `json:"position"`
}

// CanClaim checks that the treasure is still claimable.
// Use with ApplyClaim in Execute callbacks for atomic validate-then-mutate.
func (t *Treasure) CanClaim() error {
	if t.Claimed {
		return dErrors.New(dErrors.CodeInvariantViolation, "treasure already claimed")
	}
	return nil
}

// ApplyClaim marks the treasure claimed. Call CanClaim first.
func (t *Treasure) ApplyClaim() {
	t.Claimed = true
}

// Player is the per-address game state.
//
// Invariants:
//   - MovesRemaining starts at InitialMoves, only decreases, never below zero
//   - Created once per address; never deleted
type Player struct {
	Address        id.Address `json:"address"`
	Score          int64      `json:"score"`
	MovesRemaining int        `json:"moves_remaining"`
	Position       int        `json:"position"`
}

// NewPlayer constructs a freshly registered player at the origin cell.
func NewPlayer(address id.Address) *Player {
	return &Player{
		Address:        address,
		Score:          0,
		MovesRemaining: InitialMoves,
		Position:       0,
	}
}

// CanSpendMove checks the move budget.
// Use with ApplyMove/ApplyClaim in Execute callbacks.
func (p *Player) CanSpendMove() error {
	if p.MovesRemaining <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "move budget exhausted")
	}
	return nil
}

// ApplyMove repositions the player and spends one move. Call CanSpendMove first.
func (p *Player) ApplyMove(position int) {
	p.Position = position
	p.MovesRemaining--
}

// ApplyClaim credits a claimed treasure's value and spends one move, exactly
// like a plain move. Call CanSpendMove first.
func (p *Player) ApplyClaim(value int64) {
	p.Score += value
	p.MovesRemaining--
}
