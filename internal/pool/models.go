package pool

import (
	"finvoice/pkg/domain"
)

// EscrowAccount holds bid funds and listed titles until a bid is accepted.
const EscrowAccount domain.Principal = "finvoice-pool-escrow"

// ListingType selects the sale mechanism.
type ListingType string

const (
	TypeFixed   ListingType = "fixed"
	TypeAuction ListingType = "auction"
)

func (t ListingType) Valid() bool {
	return t == TypeFixed || t == TypeAuction
}

// Currency is the settlement currency for a listing. BTC settlement is not
// offered in the pool.
type Currency string

const (
	CurrencySTX Currency = "STX"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	return c == CurrencySTX || c == CurrencyUSD
}

// Listing offers a minted invoice for financing. Active is flipped off when
// a bid is accepted; listings are never reactivated.
type Listing struct {
	ID           uint64           `json:"id"`
	InvoiceID    uint64           `json:"invoice_id"`
	Seller       domain.Principal `json:"seller"`
	Price        uint64           `json:"price"`
	MinPrice     uint64           `json:"min_price"`
	MaxBid       uint64           `json:"max_bid"`
	Duration     uint64           `json:"duration"`
	InterestRate uint64           `json:"interest_rate"`
	Type         ListingType      `json:"type"`
	FeeRate      uint64           `json:"fee_rate"`
	Currency     Currency         `json:"currency"`
	Active       bool             `json:"active"`
	CreatedAt    uint64           `json:"created_at"`
}

// Bid is one bidder's open offer on a listing. A bidder holds at most one
// bid per listing; a repeat bid replaces the earlier one.
type Bid struct {
	ListingID uint64           `json:"listing_id"`
	Bidder    domain.Principal `json:"bidder"`
	Amount    uint64           `json:"amount"`
	PlacedAt  uint64           `json:"placed_at"`
}

// Revision records the most recent price update on a listing.
type Revision struct {
	Price     uint64           `json:"price"`
	MinPrice  uint64           `json:"min_price"`
	UpdatedAt uint64           `json:"updated_at"`
	Updater   domain.Principal `json:"updater"`
}

const (
	maxInterestRate = 20
	maxFeeRate      = 10
)

// ListingParams carries the caller-supplied fields for a new listing.
type ListingParams struct {
	InvoiceID    uint64
	Price        uint64
	MinPrice     uint64
	MaxBid       uint64
	Duration     uint64
	InterestRate uint64
	Type         ListingType
	FeeRate      uint64
	Currency     Currency
}

// Validate checks fields in declaration order and returns the first failure.
func (p ListingParams) Validate() error {
	if p.InvoiceID == 0 {
		return ErrInvalidInvoiceID
	}
	if p.Price == 0 {
		return ErrInvalidPrice
	}
	if p.MinPrice == 0 {
		return ErrInvalidMinPrice
	}
	if p.Duration == 0 {
		return ErrInvalidDuration
	}
	if p.InterestRate > maxInterestRate {
		return ErrInvalidInterestRate
	}
	if !p.Type.Valid() {
		return ErrInvalidListingType
	}
	if p.FeeRate > maxFeeRate {
		return ErrInvalidFeeRate
	}
	if !p.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if p.MaxBid == 0 {
		return ErrInvalidMaxBid
	}
	return nil
}

// CanBid checks an incoming bid against the listing's bounds. Both bounds
// are inclusive.
func (l *Listing) CanBid(amount uint64) error {
	if !l.Active {
		return ErrListingClosed
	}
	if amount > l.MaxBid {
		return ErrInvalidMaxBid
	}
	if amount < l.MinPrice {
		return ErrInvalidMinPrice
	}
	return nil
}

// CanRevise checks a price update. Seller-only, both values positive.
func (l *Listing) CanRevise(caller domain.Principal, price, minPrice uint64) error {
	if caller != l.Seller {
		return ErrNotSeller
	}
	if price == 0 || minPrice == 0 {
		return ErrInvalidUpdateParam
	}
	return nil
}

// ApplyRevision updates the prices and restamps the listing.
func (l *Listing) ApplyRevision(price, minPrice, height uint64) {
	l.Price = price
	l.MinPrice = minPrice
	l.CreatedAt = height
}

// Close takes the listing off the market.
func (l *Listing) Close() {
	l.Active = false
}
