package pool

import (
	"context"

	"finvoice/pkg/domain"
)

// Store owns the listing table, the invoice-to-listing index, open bids,
// revision slots, and pool balances. Implementations keep the invoice index
// consistent with every listing insert.
type Store interface {
	// CreateListing assigns the next monotonic id and indexes the listing by
	// its invoice.
	CreateListing(ctx context.Context, l *Listing) (uint64, error)
	FindListing(ctx context.Context, id uint64) (*Listing, error)
	FindListingByInvoice(ctx context.Context, invoiceID uint64) (*Listing, error)
	UpdateListing(ctx context.Context, l *Listing) error
	// CountListings returns the next listing id, i.e. the number of listings
	// ever created.
	CountListings(ctx context.Context) (uint64, error)

	SaveBid(ctx context.Context, b Bid) error
	FindBid(ctx context.Context, listingID uint64, bidder domain.Principal) (Bid, error)
	DeleteBid(ctx context.Context, listingID uint64, bidder domain.Principal) error

	SaveRevision(ctx context.Context, listingID uint64, r Revision) error
	FindRevision(ctx context.Context, listingID uint64) (Revision, error)

	Credit(ctx context.Context, p domain.Principal, amount uint64) error
	Debit(ctx context.Context, p domain.Principal, amount uint64) error
	Balance(ctx context.Context, p domain.Principal) (uint64, error)
}
