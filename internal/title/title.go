// Package title abstracts the external NFT ownership registry. It is the
// sole arbiter of who actually holds an invoice token; the registries trust
// its result and keep no ownership state of their own beyond the supplier
// field.
package title

import (
	"context"
	"sync"

	"finvoice/pkg/domain"
	"finvoice/pkg/platform/sentinel"
)

// Registry is the atomic transfer-of-title primitive.
type Registry interface {
	// Mint records first ownership of a token.
	Mint(ctx context.Context, id uint64, owner domain.Principal) error
	// OwnerOf returns the current title holder.
	OwnerOf(ctx context.Context, id uint64) (domain.Principal, error)
	// Transfer moves title from one holder to another. Fails when from does
	// not currently hold the token.
	Transfer(ctx context.Context, id uint64, from, to domain.Principal) error
	// Burn removes the token's title record.
	Burn(ctx context.Context, id uint64) error
}

// InMemoryRegistry is the in-process title registry.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	owners map[uint64]domain.Principal
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{owners: make(map[uint64]domain.Principal)}
}

func (r *InMemoryRegistry) Mint(_ context.Context, id uint64, owner domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; ok {
		return sentinel.ErrConflict
	}
	r.owners[id] = owner
	return nil
}

func (r *InMemoryRegistry) OwnerOf(_ context.Context, id uint64) (domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[id]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return owner, nil
}

func (r *InMemoryRegistry) Transfer(_ context.Context, id uint64, from, to domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[id]
	if !ok || owner != from {
		return sentinel.ErrInvalidState
	}
	r.owners[id] = to
	return nil
}

func (r *InMemoryRegistry) Burn(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(r.owners, id)
	return nil
}
