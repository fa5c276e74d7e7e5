package invoice

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"

	"finvoice/internal/audit"
	"finvoice/internal/chain"
	"finvoice/internal/ledger"
	"finvoice/internal/title"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
)

var tracer = otel.Tracer("finvoice/internal/invoice")

const (
	defaultMaxInvoices    = 10000
	defaultMaxPerSupplier = 100
	defaultCreationFee    = 500
)

// Service is the invoice registry. Every mutating call is one atomic,
// serialized state transition: the mutex is held across validation, the
// external fee/title effects, and the store write, so a failed call leaves
// no partial state behind.
type Service struct {
	mu      sync.Mutex
	store   Store
	ledger  ledger.Ledger
	titles  title.Registry
	heights chain.Source

	authority      domain.Principal
	creationFee    uint64
	maxInvoices    uint64
	maxPerSupplier int

	audit   *audit.Publisher
	metrics Metrics
}

// Metrics is the subset of counters the service increments. Declared here so
// the metrics package stays optional.
type Metrics interface {
	IncrementMinted()
	IncrementTransferred()
	IncrementPaid()
	IncrementAmended()
	IncrementBurned()
}

// Option configures the Service.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCapacity(maxInvoices uint64, maxPerSupplier int) Option {
	return func(s *Service) {
		s.maxInvoices = maxInvoices
		s.maxPerSupplier = maxPerSupplier
	}
}

func WithCreationFee(fee uint64) Option {
	return func(s *Service) { s.creationFee = fee }
}

func NewService(store Store, l ledger.Ledger, titles title.Registry, heights chain.Source, opts ...Option) *Service {
	s := &Service{
		store:          store,
		ledger:         l,
		titles:         titles,
		heights:        heights,
		creationFee:    defaultCreationFee,
		maxInvoices:    defaultMaxInvoices,
		maxPerSupplier: defaultMaxPerSupplier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAuthority configures the fee collector. Settable exactly once; the burn
// address is rejected.
func (s *Service) SetAuthority(ctx context.Context, authority domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if authority.IsBurn() || authority.IsZero() {
		return ErrInvalidAuthority
	}
	if !s.authority.IsZero() {
		return ErrAuthorityAlreadySet
	}
	s.authority = authority
	s.emit(ctx, audit.Event{Action: audit.ActionAuthoritySet, Actor: authority, Height: s.heights.Height()})
	return nil
}

// SetCreationFee changes the mint fee. Only the configured authority may
// call it.
func (s *Service) SetCreationFee(ctx context.Context, caller domain.Principal, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authority.IsZero() {
		return ErrAuthorityNotVerified
	}
	if caller != s.authority {
		return ErrNotAuthority
	}
	s.creationFee = fee
	s.emit(ctx, audit.Event{Action: audit.ActionFeeChanged, Actor: caller, Amount: fee, Height: s.heights.Height()})
	return nil
}

// Mint validates, charges the creation fee to the authority, and stores the
// invoice with a fresh monotonic id. The caller becomes the supplier and
// first title holder.
func (s *Service) Mint(ctx context.Context, caller domain.Principal, params MintParams) (uint64, error) {
	ctx, span := tracer.Start(ctx, "invoice.mint")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count invoices")
	}
	if count >= s.maxInvoices {
		return 0, ErrCapacityExceeded
	}

	height := s.heights.Height()
	if err := params.Validate(caller, height); err != nil {
		return 0, err
	}
	if s.authority.IsZero() {
		return 0, ErrAuthorityNotVerified
	}

	supplierCount, err := s.store.CountBySupplier(ctx, caller)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count supplier invoices")
	}
	if supplierCount >= s.maxPerSupplier {
		return 0, ErrCapacityExceeded
	}

	if err := s.ledger.Transfer(ctx, s.creationFee, caller, s.authority); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "charge creation fee")
	}

	inv := &Invoice{
		Amount:       params.Amount,
		DueDate:      params.DueDate,
		Buyer:        params.Buyer,
		Supplier:     caller,
		CreatedAt:    height,
		Description:  params.Description,
		Currency:     params.Currency,
		Status:       StatusPending,
		DiscountRate: params.DiscountRate,
		PenaltyRate:  params.PenaltyRate,
		Location:     params.Location,
		Terms:        params.Terms,
		Quantity:     params.Quantity,
		UnitPrice:    params.UnitPrice,
	}
	id, err := s.store.Create(ctx, inv)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "store invoice")
	}
	if err := s.titles.Mint(ctx, id, caller); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "record title")
	}

	if s.metrics != nil {
		s.metrics.IncrementMinted()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionInvoiceMinted, Actor: caller, EntityID: id, Amount: params.Amount, Height: height})
	return id, nil
}

// Transfer reassigns the supplier field and moves title. Supplier-only,
// pre-payment, pre-due-date, and the caller must actually hold title.
func (s *Service) Transfer(ctx context.Context, caller domain.Principal, id uint64, recipient domain.Principal) error {
	ctx, span := tracer.Start(ctx, "invoice.transfer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	height := s.heights.Height()
	if err := inv.CanTransfer(caller, height); err != nil {
		return err
	}
	owner, err := s.titles.OwnerOf(ctx, id)
	if err != nil || owner != caller {
		return ErrNotTitleHolder
	}
	if err := s.titles.Transfer(ctx, id, caller, recipient); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transfer title")
	}
	inv.ApplyTransfer(recipient)
	if err := s.store.Update(ctx, inv); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update invoice")
	}

	if s.metrics != nil {
		s.metrics.IncrementTransferred()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionInvoiceTransferred, Actor: caller, EntityID: id, Height: height})
	return nil
}

// MarkPaid flips the invoice into its terminal paid state. Buyer-only,
// one-way.
func (s *Service) MarkPaid(ctx context.Context, caller domain.Principal, id uint64) error {
	ctx, span := tracer.Start(ctx, "invoice.mark_paid")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := inv.CanPay(caller); err != nil {
		return err
	}
	inv.ApplyPayment()
	if err := s.store.Update(ctx, inv); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update invoice")
	}

	if s.metrics != nil {
		s.metrics.IncrementPaid()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionInvoicePaid, Actor: caller, EntityID: id, Amount: inv.Amount, Height: s.heights.Height()})
	return nil
}

// Update amends amount and due date pre-payment and records the amendment
// audit slot.
func (s *Service) Update(ctx context.Context, caller domain.Principal, id, newAmount, newDueDate uint64) error {
	ctx, span := tracer.Start(ctx, "invoice.update")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	height := s.heights.Height()
	if err := inv.CanAmend(caller, newAmount, newDueDate, height); err != nil {
		return err
	}
	inv.ApplyAmendment(newAmount, newDueDate, height)
	if err := s.store.Update(ctx, inv); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update invoice")
	}
	amendment := Amendment{Amount: newAmount, DueDate: newDueDate, UpdatedAt: height, Updater: caller}
	if err := s.store.SaveAmendment(ctx, id, amendment); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save amendment")
	}

	if s.metrics != nil {
		s.metrics.IncrementAmended()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionInvoiceUpdated, Actor: caller, EntityID: id, Amount: newAmount, Height: height})
	return nil
}

// Burn removes the invoice, its amendment slot, and its title record.
// Supplier-only, pre-payment, title-holder check.
func (s *Service) Burn(ctx context.Context, caller domain.Principal, id uint64) error {
	ctx, span := tracer.Start(ctx, "invoice.burn")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := inv.CanBurn(caller); err != nil {
		return err
	}
	owner, err := s.titles.OwnerOf(ctx, id)
	if err != nil || owner != caller {
		return ErrNotTitleHolder
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete invoice")
	}
	if err := s.titles.Burn(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "burn title")
	}

	if s.metrics != nil {
		s.metrics.IncrementBurned()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionInvoiceBurned, Actor: caller, EntityID: id, Height: s.heights.Height()})
	return nil
}

// Get returns the invoice. Pure read.
func (s *Service) Get(ctx context.Context, id uint64) (*Invoice, error) {
	inv, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

// GetAmendment returns the latest amendment slot for the invoice.
func (s *Service) GetAmendment(ctx context.Context, id uint64) (Amendment, error) {
	a, err := s.store.FindAmendment(ctx, id)
	if err != nil {
		return Amendment{}, ErrNotFound
	}
	return a, nil
}

// Count returns the number of invoices ever minted. Pure read.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
}

// Authority returns the configured fee collector, if set.
func (s *Service) Authority() (domain.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authority, !s.authority.IsZero()
}

// CreationFee returns the current mint fee.
func (s *Service) CreationFee() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creationFee
}

func (s *Service) find(ctx context.Context, id uint64) (*Invoice, error) {
	inv, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

// emit is best-effort: the trail never fails a completed transition.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, event)
}
