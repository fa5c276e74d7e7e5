package invoice

import (
	dErrors "finvoice/pkg/domain-errors"
)

// Numeric codes are scoped to this registry and ordered by validation
// sequence: capacity first, field checks in declaration order, then
// existence checks, then the authority-configuration check. Operations the
// wire protocol reports as a bare success/failure carry a category only.
const (
	codeNotAuthorized        = 100
	codeInvalidAmount        = 101
	codeInvalidDueDate       = 102
	codeInvalidBuyer         = 103
	codeNotFound             = 105
	codeAuthorityNotVerified = 107
	codeInvalidDescription   = 108
	codeInvalidCurrency      = 109
	codeInvoicePaid          = 111
	codeInvoiceExpired       = 112
	codeInvalidUpdateParam   = 113
	codeMaxInvoicesExceeded  = 114
	codeInvalidDiscountRate  = 115
	codeInvalidPenaltyRate   = 116
	codeInvalidLocation      = 117
	codeInvalidTerms         = 118
	codeInvalidQuantity      = 119
	codeInvalidPrice         = 120
)

var (
	ErrInvalidAmount       = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidAmount, "invoice amount must be positive")
	ErrInvalidDueDate      = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidDueDate, "due date must be in the future")
	ErrInvalidBuyer        = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidBuyer, "buyer must differ from the supplier")
	ErrInvalidDescription  = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidDescription, "description must be non-empty and at most 500 characters")
	ErrInvalidCurrency     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidCurrency, "currency must be STX, USD, or BTC")
	ErrInvalidDiscountRate = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidDiscountRate, "discount rate must be at most 50")
	ErrInvalidPenaltyRate  = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidPenaltyRate, "penalty rate must be at most 100")
	ErrInvalidLocation     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidLocation, "location must be non-empty and at most 100 characters")
	ErrInvalidTerms        = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidTerms, "terms must be at most 1000 characters")
	ErrInvalidQuantity     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidQuantity, "quantity must be positive")
	ErrInvalidUnitPrice    = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidPrice, "unit price must be positive")

	ErrNotFound             = dErrors.NewCoded(dErrors.CodeNotFound, codeNotFound, "invoice not found")
	ErrCapacityExceeded     = dErrors.NewCoded(dErrors.CodeCapacity, codeMaxInvoicesExceeded, "invoice registry at capacity")
	ErrAuthorityNotVerified = dErrors.NewCoded(dErrors.CodeUnauthorized, codeAuthorityNotVerified, "no authority configured")

	ErrInvalidUpdateParam = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidUpdateParam, "amended amount must be positive and due date in the future")
	ErrInvoicePaid        = dErrors.NewCoded(dErrors.CodeInvariantViolation, codeInvoicePaid, "invoice is paid and terminal")
	ErrInvoiceExpired     = dErrors.NewCoded(dErrors.CodeInvariantViolation, codeInvoiceExpired, "invoice is past its due date")
	ErrNotSupplier        = dErrors.NewCoded(dErrors.CodeForbidden, codeNotAuthorized, "caller is not the supplier")
	ErrNotBuyer           = dErrors.NewCoded(dErrors.CodeForbidden, codeNotAuthorized, "caller is not the buyer")
	ErrNotTitleHolder     = dErrors.NewCoded(dErrors.CodeForbidden, codeNotAuthorized, "caller does not hold title")

	ErrInvalidAuthority    = dErrors.New(dErrors.CodeValidation, "authority principal must not be the burn address")
	ErrAuthorityAlreadySet = dErrors.New(dErrors.CodeConflict, "authority already configured")
	ErrNotAuthority        = dErrors.New(dErrors.CodeForbidden, "caller is not the configured authority")
)
