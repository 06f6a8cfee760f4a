package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in memory, grouped by subject.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Subject] = append(s.events[event.Subject], event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[subject]...), nil
}

// ListAll returns all events across subjects.
func (s *InMemoryStore) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Event
	for _, subjectEvents := range s.events {
		all = append(all, subjectEvents...)
	}
	return all, nil
}
