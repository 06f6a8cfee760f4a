package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	"github.com/kfrye1212/digitalpulse-tld/pkg/platform/sentinel"
)

// InMemory keeps domain records in a map keyed by "<name>.<tld>".
type InMemory struct {
	mu      sync.RWMutex
	domains map[string]*models.Domain
}

func NewInMemory() *InMemory {
	return &InMemory{domains: make(map[string]*models.Domain)}
}

func recordKey(name, tld string) string {
	return models.Normalize(name) + "." + models.Normalize(tld)
}

// CreateIfNameAvailable inserts the record unless its key is occupied.
func (s *InMemory) CreateIfNameAvailable(_ context.Context, d *models.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(d.Name, d.TLD)
	if _, exists := s.domains[key]; exists {
		return sentinel.ErrKeyOccupied
	}
	clone := *d
	s.domains[key] = &clone
	return nil
}

func (s *InMemory) Find(_ context.Context, name, tld string) (*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.domains[recordKey(name, tld)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, d *models.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(d.Name, d.TLD)
	if _, ok := s.domains[key]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *d
	s.domains[key] = &clone
	return nil
}

func (s *InMemory) ListByOwner(_ context.Context, owner id.WalletID) ([]*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Domain
	for _, d := range s.domains {
		if d.Owner == owner {
			clone := *d
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]*models.Domain, len(s.domains))
	for k, d := range s.domains {
		clone := *d
		snap[k] = &clone
	}
	return snap
}

// Restore implements tx.Snapshotter.
func (s *InMemory) Restore(state any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains = state.(map[string]*models.Domain)
}
