package asset

import (
	"context"
	"crypto/rand"
	"sync"

	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

type tokenState struct {
	owner    id.WalletID
	metadata *Metadata
}

// InMemoryIssuer is the in-process stand-in for the external issuer. It
// tracks ownership and metadata per token and participates in the in-memory
// transaction runner.
type InMemoryIssuer struct {
	mu     sync.RWMutex
	tokens map[id.TokenID]tokenState
}

func NewInMemoryIssuer() *InMemoryIssuer {
	return &InMemoryIssuer{tokens: make(map[id.TokenID]tokenState)}
}

func (i *InMemoryIssuer) MintUnique(_ context.Context, owner id.WalletID) (id.TokenID, error) {
	var token id.TokenID
	if _, err := rand.Read(token[:]); err != nil {
		return id.TokenID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint token")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.tokens[token] = tokenState{owner: owner}
	return token, nil
}

func (i *InMemoryIssuer) CreateMetadata(_ context.Context, token id.TokenID, md Metadata) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, ok := i.tokens[token]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "token not minted")
	}
	state.metadata = &md
	i.tokens[token] = state
	return nil
}

func (i *InMemoryIssuer) TransferUnique(_ context.Context, token id.TokenID, from, to id.WalletID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, ok := i.tokens[token]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "token not minted")
	}
	if state.owner != from {
		return dErrors.New(dErrors.CodeUnauthorized, "token not held by sender")
	}
	state.owner = to
	i.tokens[token] = state
	return nil
}

// Holder returns the current owner of a token.
func (i *InMemoryIssuer) Holder(token id.TokenID) (id.WalletID, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	state, ok := i.tokens[token]
	return state.owner, ok
}

// MetadataOf returns the metadata attached to a token, if any.
func (i *InMemoryIssuer) MetadataOf(token id.TokenID) (*Metadata, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	state, ok := i.tokens[token]
	if !ok || state.metadata == nil {
		return nil, false
	}
	md := *state.metadata
	return &md, true
}

// Snapshot implements tx.Snapshotter.
func (i *InMemoryIssuer) Snapshot() any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	snap := make(map[id.TokenID]tokenState, len(i.tokens))
	for t, s := range i.tokens {
		snap[t] = s
	}
	return snap
}

// Restore implements tx.Snapshotter.
func (i *InMemoryIssuer) Restore(state any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tokens = state.(map[id.TokenID]tokenState)
}
