package oracle

import (
	"context"
)

// Store owns the oracle table (keyed by a monotonic id), the unique name
// index, and the per-invoice verification slot and report history.
type Store interface {
	// CreateOracle assigns the next id, stores the oracle, and claims its
	// name in the index.
	CreateOracle(ctx context.Context, o *Oracle) (uint64, error)
	FindOracle(ctx context.Context, id uint64) (*Oracle, error)
	UpdateOracle(ctx context.Context, o *Oracle) error
	CountOracles(ctx context.Context) (int, error)
	// NameTaken reports whether any oracle currently holds the name.
	NameTaken(ctx context.Context, name string) (bool, error)
	// MoveName atomically releases the old name and claims the new one.
	MoveName(ctx context.Context, oldName, newName string, id uint64) error

	SaveVerification(ctx context.Context, v Verification) error
	FindVerification(ctx context.Context, invoiceID uint64) (Verification, error)
	AppendReport(ctx context.Context, invoiceID uint64, r Report) error
	ListReports(ctx context.Context, invoiceID uint64) ([]Report, error)
}
