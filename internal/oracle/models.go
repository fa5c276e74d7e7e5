package oracle

import (
	"unicode/utf8"

	"finvoice/pkg/domain"
)

// Currency accepted in a payment report.
type Currency string

const (
	CurrencySTX Currency = "STX"
	CurrencyUSD Currency = "USD"
	CurrencyBTC Currency = "BTC"
)

func (c Currency) Valid() bool {
	return c == CurrencySTX || c == CurrencyUSD || c == CurrencyBTC
}

const (
	maxNameLen         = 50
	maxLocationLen     = 100
	maxVotingThreshold = 100
	maxGracePeriod     = 30
	maxInterestRate    = 20
	maxPenaltyRate     = 100
)

// Oracle is a registered payment reporter, keyed by a monotonic integer id.
// One principal may hold several oracles; names are globally unique via a
// secondary index.
type Oracle struct {
	ID              uint64           `json:"id"`
	Owner           domain.Principal `json:"owner"`
	Name            string           `json:"name"`
	Location        string           `json:"location"`
	VotingThreshold uint64           `json:"voting_threshold"`
	GracePeriod     uint64           `json:"grace_period"`
	InterestRate    uint64           `json:"interest_rate"`
	PenaltyRate     uint64           `json:"penalty_rate"`
	Status          bool             `json:"status"`
	RegisteredAt    uint64           `json:"registered_at"`
}

// RegisterParams carries the caller-supplied fields for a new oracle.
type RegisterParams struct {
	Name            string
	Location        string
	VotingThreshold uint64
	GracePeriod     uint64
	InterestRate    uint64
	PenaltyRate     uint64
}

// Validate checks fields in declaration order and returns the first failure.
func (p RegisterParams) Validate() error {
	if p.Name == "" || utf8.RuneCountInString(p.Name) > maxNameLen {
		return ErrInvalidName
	}
	if p.Location == "" || utf8.RuneCountInString(p.Location) > maxLocationLen {
		return ErrInvalidLocation
	}
	if p.VotingThreshold == 0 || p.VotingThreshold > maxVotingThreshold {
		return ErrInvalidVotingThreshold
	}
	if p.GracePeriod > maxGracePeriod {
		return ErrInvalidGracePeriod
	}
	if p.InterestRate > maxInterestRate {
		return ErrInvalidInterestRate
	}
	if p.PenaltyRate > maxPenaltyRate {
		return ErrInvalidPenaltyRate
	}
	return nil
}

// UpdateParams carries the fields an owner may change after registration.
type UpdateParams struct {
	Name            string
	Location        string
	VotingThreshold uint64
}

// Validate checks fields in declaration order and returns the first failure.
func (p UpdateParams) Validate() error {
	if p.Name == "" || utf8.RuneCountInString(p.Name) > maxNameLen {
		return ErrInvalidName
	}
	if p.Location == "" || utf8.RuneCountInString(p.Location) > maxLocationLen {
		return ErrInvalidLocation
	}
	if p.VotingThreshold == 0 || p.VotingThreshold > maxVotingThreshold {
		return ErrInvalidVotingThreshold
	}
	return nil
}

// ApplyUpdate rewrites the mutable fields and restamps the oracle.
func (o *Oracle) ApplyUpdate(p UpdateParams, height uint64) {
	o.Name = p.Name
	o.Location = p.Location
	o.VotingThreshold = p.VotingThreshold
	o.RegisteredAt = height
}

// ReportParams carries one payment observation.
type ReportParams struct {
	Timestamp    uint64
	Amount       uint64
	Currency     Currency
	Early        bool
	GracePeriod  uint64
	InterestRate uint64
	PenaltyRate  uint64
}

// Validate checks fields against the current height in declaration order.
func (p ReportParams) Validate(height uint64) error {
	if p.Timestamp < height {
		return ErrInvalidTimestamp
	}
	if p.Amount == 0 {
		return ErrInvalidAmount
	}
	if !p.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if p.GracePeriod > maxGracePeriod {
		return ErrInvalidGracePeriod
	}
	if p.InterestRate > maxInterestRate {
		return ErrInvalidInterestRate
	}
	if p.PenaltyRate > maxPenaltyRate {
		return ErrInvalidPenaltyRate
	}
	return nil
}

// Verification is the single authoritative payment record per invoice. The
// first accepted report wins.
type Verification struct {
	InvoiceID    uint64           `json:"invoice_id"`
	Amount       uint64           `json:"amount"`
	Currency     Currency         `json:"currency"`
	Timestamp    uint64           `json:"timestamp"`
	Early        bool             `json:"early"`
	GracePeriod  uint64           `json:"grace_period"`
	InterestRate uint64           `json:"interest_rate"`
	PenaltyRate  uint64           `json:"penalty_rate"`
	Verifier     domain.Principal `json:"verifier"`
	Status       bool             `json:"status"`
	VerifiedAt   uint64           `json:"verified_at"`
}

// Report is one appended observation in an invoice's report history.
type Report struct {
	Amount     uint64           `json:"amount"`
	Currency   Currency         `json:"currency"`
	Timestamp  uint64           `json:"timestamp"`
	Reporter   domain.Principal `json:"reporter"`
	ReportedAt uint64           `json:"reported_at"`
}
