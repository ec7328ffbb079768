package memory

import (
	"context"
	"sync"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
)

// InMemoryStore keeps emitted events in insertion order. Append-only: there is
// no delete or truncate operation.
type InMemoryStore struct {
	mu      sync.RWMutex
	events  []audit.Event
	byActor map[id.Address][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byActor: make(map[id.Address][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.byActor[event.Actor] = append(s.byActor[event.Actor], len(s.events)-1)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor id.Address) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indexes := s.byActor[actor]
	events := make([]audit.Event, 0, len(indexes))
	for _, i := range indexes {
		events = append(events, s.events[i])
	}
	return events, nil
}

// ListAll returns every event across all actors in emission order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

// ListByAction filters events by action, preserving emission order. Used by
// tests asserting per-iteration verification emissions.
func (s *InMemoryStore) ListByAction(_ context.Context, action string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}
