package store

import (
	"context"
	"sync"

	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
)

// Memory is an in-process identity store for tests and single-node runs.
type Memory struct {
	mu       sync.RWMutex
	dids     map[id.Address]*models.DID
	metadata map[id.Address]*models.Metadata
}

func NewMemory() *Memory {
	return &Memory{
		dids:     make(map[id.Address]*models.DID),
		metadata: make(map[id.Address]*models.Metadata),
	}
}

func (m *Memory) CreateDID(_ context.Context, did *models.DID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dids[did.Owner]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *did
	m.dids[did.Owner] = &cp
	return nil
}

func (m *Memory) FindDID(_ context.Context, owner id.Address) (*models.DID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	did, ok := m.dids[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *did
	return &cp, nil
}

func (m *Memory) UpsertMetadata(_ context.Context, owner id.Address, md *models.Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *md
	m.metadata[owner] = &cp
	return nil
}

func (m *Memory) FindMetadata(_ context.Context, owner id.Address) (*models.Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.metadata[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *md
	return &cp, nil
}
