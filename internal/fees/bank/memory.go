// Package bank provides FundsPort implementations.
package bank

import (
	"context"
	"sync"

	"github.com/kfrye1212/digitalpulse-tld/internal/fees"
	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
)

// InMemory keeps wallet balances in a map. It participates in the in-memory
// transaction runner so partially settled operations roll back.
type InMemory struct {
	mu       sync.RWMutex
	balances map[id.WalletID]uint64
}

func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[id.WalletID]uint64)}
}

// Credit adds funds to a wallet. Used for seeding and deposits.
func (b *InMemory) Credit(_ context.Context, wallet id.WalletID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[wallet] += amount
	return nil
}

func (b *InMemory) Balance(_ context.Context, wallet id.WalletID) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[wallet], nil
}

func (b *InMemory) Transfer(_ context.Context, from, to id.WalletID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[from] < amount {
		return fees.ErrInsufficientFunds
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

// Snapshot implements tx.Snapshotter.
func (b *InMemory) Snapshot() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := make(map[id.WalletID]uint64, len(b.balances))
	for w, n := range b.balances {
		snap[w] = n
	}
	return snap
}

// Restore implements tx.Snapshotter.
func (b *InMemory) Restore(state any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances = state.(map[id.WalletID]uint64)
}
