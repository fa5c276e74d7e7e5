package pool

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"

	"finvoice/internal/audit"
	"finvoice/internal/chain"
	"finvoice/internal/ledger"
	"finvoice/internal/title"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
	"finvoice/pkg/platform/sentinel"
)

var tracer = otel.Tracer("finvoice/internal/pool")

const (
	defaultMaxListings = 1000
	defaultPoolFee     = 100
)

// Service is the financing pool. Mutating calls are serialized the same way
// as the invoice registry: one mutex across validation, external effects,
// and the store write.
type Service struct {
	mu      sync.Mutex
	store   Store
	ledger  ledger.Ledger
	titles  title.Registry
	heights chain.Source

	admin       domain.Principal
	poolFee     uint64
	maxListings uint64

	audit   *audit.Publisher
	metrics Metrics
}

// Metrics is the subset of counters the service increments.
type Metrics interface {
	IncrementListingsCreated()
	IncrementListingsUpdated()
	IncrementBidsPlaced()
	IncrementBidsAccepted()
	IncrementDeposits()
	IncrementWithdrawals()
}

// Option configures the Service.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCapacity(maxListings uint64) Option {
	return func(s *Service) { s.maxListings = maxListings }
}

func WithPoolFee(fee uint64) Option {
	return func(s *Service) { s.poolFee = fee }
}

func NewService(store Store, l ledger.Ledger, titles title.Registry, heights chain.Source, opts ...Option) *Service {
	s := &Service{
		store:       store,
		ledger:      l,
		titles:      titles,
		heights:     heights,
		poolFee:     defaultPoolFee,
		maxListings: defaultMaxListings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAdmin configures the fee collector. Settable exactly once; the burn
// address is rejected.
func (s *Service) SetAdmin(ctx context.Context, admin domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if admin.IsBurn() || admin.IsZero() {
		return ErrInvalidAdmin
	}
	if !s.admin.IsZero() {
		return ErrAdminAlreadySet
	}
	s.admin = admin
	s.emit(ctx, audit.Event{Action: audit.ActionAuthoritySet, Actor: admin, Height: s.heights.Height()})
	return nil
}

// SetPoolFee changes the listing fee. Only the configured admin may call it.
func (s *Service) SetPoolFee(ctx context.Context, caller domain.Principal, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admin.IsZero() {
		return ErrPoolNotVerified
	}
	if caller != s.admin {
		return ErrNotAdmin
	}
	s.poolFee = fee
	s.emit(ctx, audit.Event{Action: audit.ActionFeeChanged, Actor: caller, Amount: fee, Height: s.heights.Height()})
	return nil
}

// ListInvoice validates, charges the pool fee to the admin, escrows the
// invoice title, and stores the listing with a fresh monotonic id. A failed
// title escrow does not abort the listing; title custody is reconciled out
// of band.
func (s *Service) ListInvoice(ctx context.Context, caller domain.Principal, params ListingParams) (uint64, error) {
	ctx, span := tracer.Start(ctx, "pool.list_invoice")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.CountListings(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count listings")
	}
	if count >= s.maxListings {
		return 0, ErrCapacityExceeded
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.store.FindListingByInvoice(ctx, params.InvoiceID); err == nil {
		return 0, ErrListingExists
	}
	if s.admin.IsZero() {
		return 0, ErrPoolNotVerified
	}

	if err := s.ledger.Transfer(ctx, s.poolFee, caller, s.admin); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "charge pool fee")
	}
	_ = s.titles.Transfer(ctx, params.InvoiceID, caller, EscrowAccount)

	height := s.heights.Height()
	listing := &Listing{
		InvoiceID:    params.InvoiceID,
		Seller:       caller,
		Price:        params.Price,
		MinPrice:     params.MinPrice,
		MaxBid:       params.MaxBid,
		Duration:     params.Duration,
		InterestRate: params.InterestRate,
		Type:         params.Type,
		FeeRate:      params.FeeRate,
		Currency:     params.Currency,
		Active:       true,
		CreatedAt:    height,
	}
	id, err := s.store.CreateListing(ctx, listing)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "store listing")
	}

	if s.metrics != nil {
		s.metrics.IncrementListingsCreated()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionListingCreated, Actor: caller, EntityID: id, Amount: params.Price, Height: height})
	return id, nil
}

// PlaceBid escrows the bid amount and records the bid. A bidder's repeat bid
// on the same listing replaces the earlier one; the earlier escrow is not
// refunded here.
func (s *Service) PlaceBid(ctx context.Context, caller domain.Principal, listingID, amount uint64) error {
	ctx, span := tracer.Start(ctx, "pool.place_bid")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return err
	}
	if err := listing.CanBid(amount); err != nil {
		return err
	}
	if err := s.ledger.Transfer(ctx, amount, caller, EscrowAccount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "escrow bid")
	}
	bid := Bid{ListingID: listingID, Bidder: caller, Amount: amount, PlacedAt: s.heights.Height()}
	if err := s.store.SaveBid(ctx, bid); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "store bid")
	}

	if s.metrics != nil {
		s.metrics.IncrementBidsPlaced()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionBidPlaced, Actor: caller, EntityID: listingID, Amount: amount, Height: bid.PlacedAt})
	return nil
}

// AcceptBid settles a listing: escrowed funds move to the seller, title
// moves to the bidder, the listing closes, and the bid is cleared. A failed
// title handover does not abort settlement.
func (s *Service) AcceptBid(ctx context.Context, caller domain.Principal, listingID uint64, bidder domain.Principal) error {
	ctx, span := tracer.Start(ctx, "pool.accept_bid")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return err
	}
	bid, err := s.store.FindBid(ctx, listingID, bidder)
	if err != nil {
		return ErrBidNotFound
	}
	if caller != listing.Seller {
		return ErrNotSeller
	}

	if err := s.ledger.Transfer(ctx, bid.Amount, EscrowAccount, listing.Seller); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "release escrow")
	}
	_ = s.titles.Transfer(ctx, listing.InvoiceID, EscrowAccount, bidder)

	listing.Close()
	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "close listing")
	}
	if err := s.store.DeleteBid(ctx, listingID, bidder); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "clear bid")
	}

	if s.metrics != nil {
		s.metrics.IncrementBidsAccepted()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionBidAccepted, Actor: caller, EntityID: listingID, Amount: bid.Amount, Height: s.heights.Height()})
	return nil
}

// UpdateListing revises prices, restamps the listing, and records the
// revision slot.
func (s *Service) UpdateListing(ctx context.Context, caller domain.Principal, listingID, price, minPrice uint64) error {
	ctx, span := tracer.Start(ctx, "pool.update_listing")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return err
	}
	if err := listing.CanRevise(caller, price, minPrice); err != nil {
		return err
	}
	height := s.heights.Height()
	listing.ApplyRevision(price, minPrice, height)
	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update listing")
	}
	revision := Revision{Price: price, MinPrice: minPrice, UpdatedAt: height, Updater: caller}
	if err := s.store.SaveRevision(ctx, listingID, revision); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save revision")
	}

	if s.metrics != nil {
		s.metrics.IncrementListingsUpdated()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionListingUpdated, Actor: caller, EntityID: listingID, Amount: price, Height: height})
	return nil
}

// Deposit moves funds into the caller's pool balance.
func (s *Service) Deposit(ctx context.Context, caller domain.Principal, amount uint64) error {
	ctx, span := tracer.Start(ctx, "pool.deposit")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == 0 {
		return ErrInvalidDeposit
	}
	if err := s.ledger.Transfer(ctx, amount, caller, EscrowAccount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "deposit funds")
	}
	if err := s.store.Credit(ctx, caller, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "credit balance")
	}

	if s.metrics != nil {
		s.metrics.IncrementDeposits()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionPoolDeposit, Actor: caller, Amount: amount, Height: s.heights.Height()})
	return nil
}

// Withdraw moves funds out of the caller's pool balance. The balance check
// happens in the store's Debit.
func (s *Service) Withdraw(ctx context.Context, caller domain.Principal, amount uint64) error {
	ctx, span := tracer.Start(ctx, "pool.withdraw")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Debit(ctx, caller, amount); err != nil {
		return ErrInsufficientFunds
	}
	if err := s.ledger.Transfer(ctx, amount, EscrowAccount, caller); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "withdraw funds")
	}

	if s.metrics != nil {
		s.metrics.IncrementWithdrawals()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionPoolWithdrawal, Actor: caller, Amount: amount, Height: s.heights.Height()})
	return nil
}

// GetListing returns the listing. Pure read.
func (s *Service) GetListing(ctx context.Context, id uint64) (*Listing, error) {
	return s.findListing(ctx, id)
}

// GetBid returns a bidder's open bid on a listing.
func (s *Service) GetBid(ctx context.Context, listingID uint64, bidder domain.Principal) (Bid, error) {
	b, err := s.store.FindBid(ctx, listingID, bidder)
	if err != nil {
		return Bid{}, ErrBidNotFound
	}
	return b, nil
}

// GetRevision returns the latest revision slot for a listing.
func (s *Service) GetRevision(ctx context.Context, listingID uint64) (Revision, error) {
	r, err := s.store.FindRevision(ctx, listingID)
	if err != nil {
		return Revision{}, ErrListingNotFound
	}
	return r, nil
}

// Balance returns a principal's pool balance. Pure read.
func (s *Service) Balance(ctx context.Context, p domain.Principal) (uint64, error) {
	return s.store.Balance(ctx, p)
}

// CountListings returns the number of listings ever created. Pure read.
func (s *Service) CountListings(ctx context.Context) (uint64, error) {
	return s.store.CountListings(ctx)
}

// ListingExists reports whether an invoice has a listing. Pure read.
func (s *Service) ListingExists(ctx context.Context, invoiceID uint64) (bool, error) {
	_, err := s.store.FindListingByInvoice(ctx, invoiceID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check listing")
	}
}

// Admin returns the configured fee collector, if set.
func (s *Service) Admin() (domain.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin, !s.admin.IsZero()
}

// PoolFee returns the current listing fee.
func (s *Service) PoolFee() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poolFee
}

func (s *Service) findListing(ctx context.Context, id uint64) (*Listing, error) {
	l, err := s.store.FindListing(ctx, id)
	if err != nil {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// emit is best-effort: the trail never fails a completed transition.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, event)
}
