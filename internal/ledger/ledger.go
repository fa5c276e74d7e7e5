// Package ledger abstracts the external account-balance ledger. The
// registries treat Transfer as an atomic primitive; insufficient-balance
// handling belongs to the real ledger, not to this core.
package ledger

import (
	"context"
	"sync"

	"finvoice/pkg/domain"
)

// Transfer is one recorded fund movement.
type Transfer struct {
	Amount uint64
	From   domain.Principal
	To     domain.Principal
}

// Ledger moves funds between principals.
type Ledger interface {
	Transfer(ctx context.Context, amount uint64, from, to domain.Principal) error
}

// InMemoryLedger journals every transfer and always succeeds, mirroring the
// assume-sufficient-balance contract of the external ledger. Tests read the
// journal to assert fee and escrow movements.
type InMemoryLedger struct {
	mu      sync.Mutex
	journal []Transfer
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{}
}

func (l *InMemoryLedger) Transfer(_ context.Context, amount uint64, from, to domain.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal = append(l.journal, Transfer{Amount: amount, From: from, To: to})
	return nil
}

// Journal returns a copy of all recorded transfers in order.
func (l *InMemoryLedger) Journal() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transfer{}, l.journal...)
}
