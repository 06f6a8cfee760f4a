package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kfrye1212/digitalpulse-tld/internal/catalog/models"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
)

// InMemory keeps namespace records in a map keyed by normalized name.
type InMemory struct {
	mu   sync.RWMutex
	tlds map[string]*models.TLD
}

func NewInMemory() *InMemory {
	return &InMemory{tlds: make(map[string]*models.TLD)}
}

// CreateIfNameAvailable inserts the record unless its key is occupied.
func (s *InMemory) CreateIfNameAvailable(_ context.Context, t *models.TLD) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.Normalize(t.Name)
	if _, exists := s.tlds[key]; exists {
		return sentinel.ErrKeyOccupied
	}
	clone := *t
	s.tlds[key] = &clone
	return nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.TLD, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tlds[models.Normalize(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, t *models.TLD) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.Normalize(t.Name)
	if _, ok := s.tlds[key]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *t
	s.tlds[key] = &clone
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.TLD, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.TLD, 0, len(s.tlds))
	for _, t := range s.tlds {
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]*models.TLD, len(s.tlds))
	for k, t := range s.tlds {
		clone := *t
		snap[k] = &clone
	}
	return snap
}

// Restore implements tx.Snapshotter.
func (s *InMemory) Restore(state any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tlds = state.(map[string]*models.TLD)
}
