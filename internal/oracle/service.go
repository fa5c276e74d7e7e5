package oracle

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"

	"finvoice/internal/audit"
	"finvoice/internal/chain"
	"finvoice/internal/ledger"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
)

var tracer = otel.Tracer("finvoice/internal/oracle")

const (
	defaultMaxOracles = 50
	defaultOracleFee  = 100
	defaultMaxReports = 5
)

// Service is the payment oracle registry. The admin principal is fixed at
// construction; the fee authority is configured once at runtime.
type Service struct {
	mu      sync.Mutex
	store   Store
	ledger  ledger.Ledger
	heights chain.Source

	admin      domain.Principal
	authority  domain.Principal
	oracleFee  uint64
	maxOracles int
	maxReports int

	audit   *audit.Publisher
	metrics Metrics
}

// Metrics is the subset of counters the service increments.
type Metrics interface {
	IncrementRegistered()
	IncrementUpdated()
	IncrementReports()
}

// Option configures the Service.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCapacity(maxOracles, maxReports int) Option {
	return func(s *Service) {
		s.maxOracles = maxOracles
		s.maxReports = maxReports
	}
}

func WithOracleFee(fee uint64) Option {
	return func(s *Service) { s.oracleFee = fee }
}

func NewService(store Store, l ledger.Ledger, heights chain.Source, admin domain.Principal, opts ...Option) *Service {
	s := &Service{
		store:      store,
		ledger:     l,
		heights:    heights,
		admin:      admin,
		oracleFee:  defaultOracleFee,
		maxOracles: defaultMaxOracles,
		maxReports: defaultMaxReports,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAuthority configures the fee collector. Admin-only, settable exactly
// once; the burn address is rejected.
func (s *Service) SetAuthority(ctx context.Context, caller, authority domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if authority.IsBurn() || authority.IsZero() {
		return ErrNotAuthorized
	}
	if caller != s.admin {
		return ErrNotAuthorized
	}
	if !s.authority.IsZero() {
		return ErrAuthorityAlreadySet
	}
	s.authority = authority
	s.emit(ctx, audit.Event{Action: audit.ActionAuthoritySet, Actor: caller, Height: s.heights.Height()})
	return nil
}

// SetOracleFee changes the registration fee. Admin-only.
func (s *Service) SetOracleFee(ctx context.Context, caller domain.Principal, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return ErrNotAuthorized
	}
	s.oracleFee = fee
	s.emit(ctx, audit.Event{Action: audit.ActionFeeChanged, Actor: caller, Amount: fee, Height: s.heights.Height()})
	return nil
}

// SetMaxOracles changes the registry capacity. Admin-only, must be positive.
func (s *Service) SetMaxOracles(ctx context.Context, caller domain.Principal, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return ErrNotAuthorized
	}
	if limit <= 0 {
		return ErrInvalidLimit
	}
	s.maxOracles = limit
	return nil
}

// SetMaxReports changes the per-invoice report cap. Admin-only, must be
// positive.
func (s *Service) SetMaxReports(ctx context.Context, caller domain.Principal, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return ErrNotAuthorized
	}
	if limit <= 0 {
		return ErrInvalidLimit
	}
	s.maxReports = limit
	return nil
}

// Register validates, charges the registration fee to the authority, and
// stores the oracle under a fresh id with its name claimed.
func (s *Service) Register(ctx context.Context, caller domain.Principal, params RegisterParams) (uint64, error) {
	ctx, span := tracer.Start(ctx, "oracle.register")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.CountOracles(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count oracles")
	}
	if count >= s.maxOracles {
		return 0, ErrCapacityExceeded
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}
	taken, err := s.store.NameTaken(ctx, params.Name)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "check name")
	}
	if taken {
		return 0, ErrOracleExists
	}
	if s.authority.IsZero() {
		return 0, ErrAuthorityNotVerified
	}

	if err := s.ledger.Transfer(ctx, s.oracleFee, caller, s.authority); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "charge registration fee")
	}

	o := &Oracle{
		Owner:           caller,
		Name:            params.Name,
		Location:        params.Location,
		VotingThreshold: params.VotingThreshold,
		GracePeriod:     params.GracePeriod,
		InterestRate:    params.InterestRate,
		PenaltyRate:     params.PenaltyRate,
		Status:          true,
		RegisteredAt:    s.heights.Height(),
	}
	id, err := s.store.CreateOracle(ctx, o)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "store oracle")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionOracleRegistered, Actor: caller, EntityID: id, Height: o.RegisteredAt})
	return id, nil
}

// Update rewrites an oracle's profile, moving the name claim if the name
// changed. Owner-only. Restamps the registration height.
func (s *Service) Update(ctx context.Context, caller domain.Principal, id uint64, params UpdateParams) error {
	ctx, span := tracer.Start(ctx, "oracle.update")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.store.FindOracle(ctx, id)
	if err != nil {
		return ErrOracleNotFound
	}
	if o.Owner != caller {
		return ErrNotAuthorized
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if params.Name != o.Name {
		taken, err := s.store.NameTaken(ctx, params.Name)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check name")
		}
		if taken {
			return ErrOracleExists
		}
		if err := s.store.MoveName(ctx, o.Name, params.Name, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "move name")
		}
	}
	o.ApplyUpdate(params, s.heights.Height())
	if err := s.store.UpdateOracle(ctx, o); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "store oracle")
	}

	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionOracleUpdated, Actor: caller, EntityID: id, Height: o.RegisteredAt})
	return nil
}

// Report records a payment observation. The first accepted report writes
// the invoice's verification slot; later reports on a verified invoice are
// rejected. The reporter check consults the name index, matching the wire
// behavior of the deployed registry.
func (s *Service) Report(ctx context.Context, caller domain.Principal, invoiceID uint64, params ReportParams) error {
	ctx, span := tracer.Start(ctx, "oracle.report")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	authorized, err := s.store.NameTaken(ctx, string(caller))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check reporter")
	}
	if !authorized {
		return ErrNotAuthorized
	}
	height := s.heights.Height()
	if err := params.Validate(height); err != nil {
		return err
	}
	if _, err := s.store.FindVerification(ctx, invoiceID); err == nil {
		return ErrAlreadyVerified
	}
	existing, err := s.store.ListReports(ctx, invoiceID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list reports")
	}
	if len(existing) >= s.maxReports {
		return ErrReportsExceeded
	}

	v := Verification{
		InvoiceID:    invoiceID,
		Amount:       params.Amount,
		Currency:     params.Currency,
		Timestamp:    params.Timestamp,
		Early:        params.Early,
		GracePeriod:  params.GracePeriod,
		InterestRate: params.InterestRate,
		PenaltyRate:  params.PenaltyRate,
		Verifier:     caller,
		Status:       true,
		VerifiedAt:   height,
	}
	if err := s.store.SaveVerification(ctx, v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "store verification")
	}
	r := Report{Amount: params.Amount, Currency: params.Currency, Timestamp: params.Timestamp, Reporter: caller, ReportedAt: height}
	if err := s.store.AppendReport(ctx, invoiceID, r); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "append report")
	}

	if s.metrics != nil {
		s.metrics.IncrementReports()
	}
	s.emit(ctx, audit.Event{Action: audit.ActionPaymentReported, Actor: caller, EntityID: invoiceID, Amount: params.Amount, Height: height})
	return nil
}

// Get returns an oracle by id. Pure read.
func (s *Service) Get(ctx context.Context, id uint64) (*Oracle, error) {
	o, err := s.store.FindOracle(ctx, id)
	if err != nil {
		return nil, ErrOracleNotFound
	}
	return o, nil
}

// CheckExistence reports whether an oracle holds the name. Pure read.
func (s *Service) CheckExistence(ctx context.Context, name string) (bool, error) {
	return s.store.NameTaken(ctx, name)
}

// GetVerification returns the payment verification slot for an invoice.
func (s *Service) GetVerification(ctx context.Context, invoiceID uint64) (Verification, error) {
	v, err := s.store.FindVerification(ctx, invoiceID)
	if err != nil {
		return Verification{}, ErrOracleNotFound
	}
	return v, nil
}

// ListReports returns an invoice's report history. Pure read.
func (s *Service) ListReports(ctx context.Context, invoiceID uint64) ([]Report, error) {
	return s.store.ListReports(ctx, invoiceID)
}

// CountOracles returns the number of registered oracles. Pure read.
func (s *Service) CountOracles(ctx context.Context) (int, error) {
	return s.store.CountOracles(ctx)
}

// Authority returns the configured fee collector, if set.
func (s *Service) Authority() (domain.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authority, !s.authority.IsZero()
}

// OracleFee returns the current registration fee.
func (s *Service) OracleFee() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracleFee
}

// emit is best-effort: the trail never fails a completed transition.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, event)
}
