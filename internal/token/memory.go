package token

import (
	"context"
	"sync"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
)

// InMemoryLedger keeps ownership in process memory. It is the default wiring
// and the test double for the game service.
type InMemoryLedger struct {
	collection Collection

	mu     sync.RWMutex
	owners map[id.TreasureID]id.Address
	uris   map[id.TreasureID]string
}

func NewInMemoryLedger(collection Collection) *InMemoryLedger {
	return &InMemoryLedger{
		collection: collection,
		owners:     make(map[id.TreasureID]id.Address),
		uris:       make(map[id.TreasureID]string),
	}
}

// Collection returns the collection identity tokens are minted into.
func (l *InMemoryLedger) Collection() Collection {
	return l.collection
}

func (l *InMemoryLedger) Mint(_ context.Context, owner id.Address, tokenID id.TreasureID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.owners[tokenID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	l.owners[tokenID] = owner
	return nil
}

func (l *InMemoryLedger) Transfer(_ context.Context, from, to id.Address, tokenID id.TreasureID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.owners[tokenID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner != from {
		return sentinel.ErrInvalidState
	}
	l.owners[tokenID] = to
	return nil
}

func (l *InMemoryLedger) SetURI(_ context.Context, tokenID id.TreasureID, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.owners[tokenID]; !ok {
		return sentinel.ErrNotFound
	}
	l.uris[tokenID] = uri
	return nil
}

func (l *InMemoryLedger) OwnerOf(_ context.Context, tokenID id.TreasureID) (id.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.owners[tokenID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return owner, nil
}

// URI returns the metadata URI for a token.
func (l *InMemoryLedger) URI(_ context.Context, tokenID id.TreasureID) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.owners[tokenID]; !ok {
		return "", sentinel.ErrNotFound
	}
	return l.uris[tokenID], nil
}
