package store

import (
	"context"
	"sync"

	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
)

// Memory keeps credential state in process. Histories and the credential
// ledger are arenas with per-subject index lists: records are only ever
// appended, never rewritten, so the append-only invariant holds structurally.
type Memory struct {
	mu sync.RWMutex

	roles map[id.Address]string

	historyArena []string
	historyIndex map[id.Address][]int

	credentialArena []models.Credential
	credentialIndex map[id.Address][]int
}

func NewMemory() *Memory {
	return &Memory{
		roles:           make(map[id.Address]string),
		historyIndex:    make(map[id.Address][]int),
		credentialIndex: make(map[id.Address][]int),
	}
}

// AssignRole overwrites the user's active role.
func (m *Memory) AssignRole(_ context.Context, user id.Address, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[user] = role
	return nil
}

// FindRole returns the user's active role.
func (m *Memory) FindRole(_ context.Context, user id.Address) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[user]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return role, nil
}

// HolderOf returns an address currently assigned the given role.
func (m *Memory) HolderOf(_ context.Context, role string) (id.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for user, r := range m.roles {
		if r == role {
			return user, nil
		}
	}
	return "", sentinel.ErrNotFound
}

// AppendHistory records a role label in the user's history log.
func (m *Memory) AppendHistory(_ context.Context, user id.Address, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyArena = append(m.historyArena, role)
	m.historyIndex[user] = append(m.historyIndex[user], len(m.historyArena)-1)
	return nil
}

// ListHistory returns the user's role history in append order.
func (m *Memory) ListHistory(_ context.Context, user id.Address) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	indexes := m.historyIndex[user]
	history := make([]string, 0, len(indexes))
	for _, i := range indexes {
		history = append(history, m.historyArena[i])
	}
	return history, nil
}

// AppendCredential appends an issued credential to the subject's ledger.
func (m *Memory) AppendCredential(_ context.Context, cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentialArena = append(m.credentialArena, *cred)
	m.credentialIndex[cred.Subject] = append(m.credentialIndex[cred.Subject], len(m.credentialArena)-1)
	return nil
}

// ListCredentials returns the subject's credentials in issuance order.
func (m *Memory) ListCredentials(_ context.Context, subject id.Address) ([]models.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	indexes := m.credentialIndex[subject]
	creds := make([]models.Credential, 0, len(indexes))
	for _, i := range indexes {
		creds = append(creds, m.credentialArena[i])
	}
	return creds, nil
}
