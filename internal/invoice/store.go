package invoice

import (
	"context"

	"finvoice/pkg/domain"
)

// Store owns the invoice table, the amendment slots, and the per-supplier
// index. Implementations keep the secondary index consistent with every
// insert and delete on the primary table.
//
// Stores are interface-driven so the registry logic stays testable and a
// cached or external implementation can be swapped in without rewiring
// business code.
type Store interface {
	// Create assigns the next monotonic id, stores the invoice, and appends
	// it to the supplier index.
	Create(ctx context.Context, inv *Invoice) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	// Delete removes the invoice, its amendment slot, and its supplier-index
	// entry.
	Delete(ctx context.Context, id uint64) error
	// Count returns the next id, i.e. the number of invoices ever minted.
	Count(ctx context.Context) (uint64, error)
	CountBySupplier(ctx context.Context, supplier domain.Principal) (int, error)
	SaveAmendment(ctx context.Context, id uint64, a Amendment) error
	FindAmendment(ctx context.Context, id uint64) (Amendment, error)
}
