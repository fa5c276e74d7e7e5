package pool

import (
	dErrors "finvoice/pkg/domain-errors"
)

// Numeric codes are scoped to the pool and follow the listing validation
// sequence. Balance operations report a category only.
const (
	codeNotAuthorized       = 100
	codeInvalidPrice        = 101
	codeInvalidInvoiceID    = 102
	codeInvalidInterestRate = 104
	codeInvalidDuration     = 105
	codeListingExists       = 106
	codeListingNotFound     = 107
	codePoolNotVerified     = 109
	codeInvalidMinPrice     = 110
	codeInvalidMaxBid       = 111
	codeInvalidUpdateParam  = 113
	codeMaxListingsExceeded = 114
	codeInvalidListingType  = 115
	codeInvalidFeeRate      = 116
	codeBidNotFound         = 118
	codeInvalidCurrency     = 119
	codeListingClosed       = 120
)

var (
	ErrInvalidInvoiceID    = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidInvoiceID, "invoice id must be positive")
	ErrInvalidPrice        = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidPrice, "price must be positive")
	ErrInvalidMinPrice     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidMinPrice, "minimum price must be positive")
	ErrInvalidMaxBid       = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidMaxBid, "maximum bid must be positive")
	ErrInvalidDuration     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidDuration, "duration must be positive")
	ErrInvalidInterestRate = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidInterestRate, "interest rate must be at most 20")
	ErrInvalidListingType  = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidListingType, "listing type must be fixed or auction")
	ErrInvalidFeeRate      = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidFeeRate, "fee rate must be at most 10")
	ErrInvalidCurrency     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidCurrency, "currency must be STX or USD")
	ErrInvalidUpdateParam  = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidUpdateParam, "price and minimum price must be positive")

	ErrListingExists    = dErrors.NewCoded(dErrors.CodeConflict, codeListingExists, "invoice is already listed")
	ErrListingNotFound  = dErrors.NewCoded(dErrors.CodeNotFound, codeListingNotFound, "listing not found")
	ErrBidNotFound      = dErrors.NewCoded(dErrors.CodeNotFound, codeBidNotFound, "no bid from that bidder")
	ErrListingClosed    = dErrors.NewCoded(dErrors.CodeInvariantViolation, codeListingClosed, "listing is no longer active")
	ErrCapacityExceeded = dErrors.NewCoded(dErrors.CodeCapacity, codeMaxListingsExceeded, "listing capacity reached")
	ErrPoolNotVerified  = dErrors.NewCoded(dErrors.CodeUnauthorized, codePoolNotVerified, "no pool admin configured")
	ErrNotSeller        = dErrors.NewCoded(dErrors.CodeForbidden, codeNotAuthorized, "caller is not the seller")

	ErrInvalidAdmin      = dErrors.New(dErrors.CodeValidation, "admin principal must not be the burn address")
	ErrAdminAlreadySet   = dErrors.New(dErrors.CodeConflict, "pool admin already configured")
	ErrNotAdmin          = dErrors.New(dErrors.CodeForbidden, "caller is not the pool admin")
	ErrInvalidDeposit    = dErrors.New(dErrors.CodeValidation, "deposit amount must be positive")
	ErrInsufficientFunds = dErrors.New(dErrors.CodeInvariantViolation, "withdrawal exceeds pool balance")
)
