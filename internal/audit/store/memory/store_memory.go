package memory

import (
	"context"
	"sync"

	"cultiva/internal/audit"
	"cultiva/pkg/domain"
)

// InMemoryStore collects mirror events per farm. Used as the sink in tests
// and in single-process deployments without an aggregator connection.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.FarmID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.FarmID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.FarmID] = append(s.events[event.FarmID], event)
	return nil
}

// ListByFarm returns the mirrored events for one farm, oldest first.
func (s *InMemoryStore) ListByFarm(_ context.Context, id domain.FarmID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[id]...), nil
}

// Clear drops all events. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.FarmID][]audit.Event)
}
