package store

import (
	"context"
	"sync"

	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
)

// Memory keeps players and treasures in process.
type Memory struct {
	mu        sync.RWMutex
	players   map[id.Address]*models.Player
	treasures map[id.TreasureID]*models.Treasure
	placed    bool
}

func NewMemory() *Memory {
	return &Memory{
		players:   make(map[id.Address]*models.Player),
		treasures: make(map[id.TreasureID]*models.Treasure),
	}
}

// PutTreasures records the board's one-time placement. A second call fails.
func (m *Memory) PutTreasures(_ context.Context, treasures []models.Treasure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.placed {
		return sentinel.ErrConflict
	}
	for i := range treasures {
		cp := treasures[i]
		m.treasures[cp.ID] = &cp
	}
	m.placed = true
	return nil
}

// Placed reports whether the board has been initialized.
func (m *Memory) Placed(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.placed, nil
}

func (m *Memory) FindTreasure(_ context.Context, treasureID id.TreasureID) (*models.Treasure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.treasures[treasureID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) UpdateTreasure(_ context.Context, treasure *models.Treasure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.treasures[treasure.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *treasure
	m.treasures[treasure.ID] = &cp
	return nil
}

func (m *Memory) ListTreasures(_ context.Context) ([]models.Treasure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Treasure, 0, len(m.treasures))
	for _, t := range m.treasures {
		out = append(out, *t)
	}
	return out, nil
}

func (m *Memory) CreatePlayer(_ context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[player.Address]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *player
	m.players[player.Address] = &cp
	return nil
}

func (m *Memory) FindPlayer(_ context.Context, address id.Address) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) UpdatePlayer(_ context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[player.Address]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *player
	m.players[player.Address] = &cp
	return nil
}
