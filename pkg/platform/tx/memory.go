package tx

import (
	"context"
	"sync"
)

// Snapshotter is implemented by in-memory stores that participate in a
// transaction. Snapshot returns an opaque copy of the store's state;
// Restore reinstates it.
type Snapshotter interface {
	Snapshot() any
	Restore(state any)
}

// InMemory serializes operations under one lock and rolls every registered
// store back to its pre-operation state on failure. It stands in for the
// hosting runtime's all-or-nothing execution when running without a database.
type InMemory struct {
	mu     sync.Mutex
	stores []Snapshotter
}

func NewInMemory(stores ...Snapshotter) *InMemory {
	return &InMemory{stores: stores}
}

// Register adds a store to the transaction scope. Not safe to call
// concurrently with RunInTx; wire everything up before serving.
func (r *InMemory) Register(s Snapshotter) {
	r.stores = append(r.stores, s)
}

func (r *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshots := make([]any, len(r.stores))
	for i, s := range r.stores {
		snapshots[i] = s.Snapshot()
	}

	if err := fn(ctx); err != nil {
		for i, s := range r.stores {
			s.Restore(snapshots[i])
		}
		return err
	}
	return nil
}
