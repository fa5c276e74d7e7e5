package invoice

import (
	"unicode/utf8"

	"finvoice/pkg/domain"
)

// Currency is the settlement currency an invoice is denominated in.
type Currency string

const (
	CurrencySTX Currency = "STX"
	CurrencyUSD Currency = "USD"
	CurrencyBTC Currency = "BTC"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencySTX, CurrencyUSD, CurrencyBTC:
		return true
	}
	return false
}

// Status tracks the invoice lifecycle. Paid is terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Invoice is the tokenized receivable.
//
// Invariants:
//   - Paid implies Status == paid, and paid is absorbing: no transfer,
//     amendment, or burn may follow.
//   - Supplier holds title until transferred; Buyer only ever holds the
//     payment obligation.
//   - DueDate is compared against the external block height, lazily, at the
//     point a dependent operation runs.
type Invoice struct {
	ID           uint64           `json:"id"`
	Amount       uint64           `json:"amount"`
	DueDate      uint64           `json:"due_date"`
	Buyer        domain.Principal `json:"buyer"`
	Supplier     domain.Principal `json:"supplier"`
	Paid         bool             `json:"paid"`
	CreatedAt    uint64           `json:"created_at"`
	Description  string           `json:"description"`
	Currency     Currency         `json:"currency"`
	Status       Status           `json:"status"`
	DiscountRate uint64           `json:"discount_rate"`
	PenaltyRate  uint64           `json:"penalty_rate"`
	Location     string           `json:"location"`
	Terms        string           `json:"terms"`
	Quantity     uint64           `json:"quantity"`
	UnitPrice    uint64           `json:"unit_price"`
}

// Amendment is the audit record of the latest terms change. One slot per
// invoice; a new amendment replaces the previous one.
type Amendment struct {
	Amount    uint64           `json:"amount"`
	DueDate   uint64           `json:"due_date"`
	UpdatedAt uint64           `json:"updated_at"`
	Updater   domain.Principal `json:"updater"`
}

// MintParams carries the mint inputs. Validation order follows field
// declaration order; the numeric codes depend on it.
type MintParams struct {
	Amount       uint64           `json:"amount"`
	DueDate      uint64           `json:"due_date"`
	Buyer        domain.Principal `json:"buyer"`
	Description  string           `json:"description"`
	Currency     Currency         `json:"currency"`
	DiscountRate uint64           `json:"discount_rate"`
	PenaltyRate  uint64           `json:"penalty_rate"`
	Location     string           `json:"location"`
	Terms        string           `json:"terms"`
	Quantity     uint64           `json:"quantity"`
	UnitPrice    uint64           `json:"unit_price"`
}

const (
	maxDescriptionLen = 500
	maxLocationLen    = 100
	maxTermsLen       = 1000
	maxDiscountRate   = 50
	maxPenaltyRate    = 100
)

// Validate checks every field bound in declaration order.
func (p MintParams) Validate(caller domain.Principal, height uint64) error {
	if p.Amount == 0 {
		return ErrInvalidAmount
	}
	if p.DueDate <= height {
		return ErrInvalidDueDate
	}
	if p.Buyer == caller {
		return ErrInvalidBuyer
	}
	if p.Description == "" || utf8.RuneCountInString(p.Description) > maxDescriptionLen {
		return ErrInvalidDescription
	}
	if !p.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if p.DiscountRate > maxDiscountRate {
		return ErrInvalidDiscountRate
	}
	if p.PenaltyRate > maxPenaltyRate {
		return ErrInvalidPenaltyRate
	}
	if p.Location == "" || utf8.RuneCountInString(p.Location) > maxLocationLen {
		return ErrInvalidLocation
	}
	if utf8.RuneCountInString(p.Terms) > maxTermsLen {
		return ErrInvalidTerms
	}
	if p.Quantity == 0 {
		return ErrInvalidQuantity
	}
	if p.UnitPrice == 0 {
		return ErrInvalidUnitPrice
	}
	return nil
}

// CanTransfer checks the title-transfer transition: supplier-only, not paid,
// not past due.
func (inv *Invoice) CanTransfer(caller domain.Principal, height uint64) error {
	if caller != inv.Supplier {
		return ErrNotSupplier
	}
	if inv.Paid {
		return ErrInvoicePaid
	}
	if height >= inv.DueDate {
		return ErrInvoiceExpired
	}
	return nil
}

// ApplyTransfer reassigns the supplier field. Call CanTransfer first.
func (inv *Invoice) ApplyTransfer(recipient domain.Principal) {
	inv.Supplier = recipient
}

// CanPay checks the buyer-only, one-way payment transition.
func (inv *Invoice) CanPay(caller domain.Principal) error {
	if caller != inv.Buyer {
		return ErrNotBuyer
	}
	if inv.Paid {
		return ErrInvoicePaid
	}
	return nil
}

// ApplyPayment marks the invoice paid. Terminal.
func (inv *Invoice) ApplyPayment() {
	inv.Paid = true
	inv.Status = StatusPaid
}

// CanAmend checks the pre-payment terms amendment.
func (inv *Invoice) CanAmend(caller domain.Principal, amount, dueDate, height uint64) error {
	if caller != inv.Supplier {
		return ErrNotSupplier
	}
	if inv.Paid {
		return ErrInvoicePaid
	}
	if amount == 0 {
		return ErrInvalidUpdateParam
	}
	if dueDate <= height {
		return ErrInvalidUpdateParam
	}
	return nil
}

// ApplyAmendment rewrites the mutable terms and re-stamps the record.
func (inv *Invoice) ApplyAmendment(amount, dueDate, height uint64) {
	inv.Amount = amount
	inv.DueDate = dueDate
	inv.CreatedAt = height
}

// CanBurn checks the supplier-only, pre-payment burn.
func (inv *Invoice) CanBurn(caller domain.Principal) error {
	if caller != inv.Supplier {
		return ErrNotSupplier
	}
	if inv.Paid {
		return ErrInvoicePaid
	}
	return nil
}
