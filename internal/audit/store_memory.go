package audit

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	ordered []Event
	byActor map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byActor: make(map[string][]Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ordered = nil
	s.byActor = make(map[string][]Event)
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ordered = append(s.ordered, event)
	s.byActor[event.ActorID] = append(s.byActor[event.ActorID], event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.byActor[actorID]...), nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.ordered...), nil
}
