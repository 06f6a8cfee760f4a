package store

import (
	"context"
	"sync"

	"github.com/kfrye1212/digitalpulse-tld/internal/registry/models"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
)

// InMemory holds the registry singleton. Creation semantics mirror the
// record store: creating against an occupied key fails, which is what makes
// double initialization impossible.
type InMemory struct {
	mu       sync.RWMutex
	registry *models.Registry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(_ context.Context, r *models.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry != nil {
		return sentinel.ErrKeyOccupied
	}
	clone := *r
	s.registry = &clone
	return nil
}

func (s *InMemory) Get(_ context.Context) (*models.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.registry
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, r *models.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return sentinel.ErrNotFound
	}
	clone := *r
	s.registry = &clone
	return nil
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return (*models.Registry)(nil)
	}
	clone := *s.registry
	return &clone
}

// Restore implements tx.Snapshotter.
func (s *InMemory) Restore(state any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = state.(*models.Registry)
}
