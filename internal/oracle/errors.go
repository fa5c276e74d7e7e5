package oracle

import (
	dErrors "finvoice/pkg/domain-errors"
)

// Numeric codes are scoped to this registry. Authorization failures share
// code 403; the registration and report validations each carry their own.
const (
	codeNotAuthorized        = 403
	codeInvalidTimestamp     = 405
	codeInvalidAmount        = 406
	codeInvalidCurrency      = 407
	codeOracleExists         = 409
	codeOracleNotFound       = 410
	codeAlreadyVerified      = 411
	codeInvalidGracePeriod   = 412
	codeInvalidInterestRate  = 413
	codeInvalidPenaltyRate   = 414
	codeMaxOraclesExceeded   = 415
	codeInvalidName          = 416
	codeAuthorityNotVerified = 417
	codeInvalidLocation      = 418
	codeInvalidThreshold     = 420
	codeMaxReportsExceeded   = 421
)

var (
	ErrInvalidName            = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidName, "name must be non-empty and at most 50 characters")
	ErrInvalidLocation        = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidLocation, "location must be non-empty and at most 100 characters")
	ErrInvalidVotingThreshold = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidThreshold, "voting threshold must be between 1 and 100")
	ErrInvalidGracePeriod     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidGracePeriod, "grace period must be at most 30")
	ErrInvalidInterestRate    = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidInterestRate, "interest rate must be at most 20")
	ErrInvalidPenaltyRate     = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidPenaltyRate, "penalty rate must be at most 100")
	ErrInvalidTimestamp       = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidTimestamp, "timestamp must not be in the past")
	ErrInvalidAmount          = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidAmount, "amount must be positive")
	ErrInvalidCurrency        = dErrors.NewCoded(dErrors.CodeValidation, codeInvalidCurrency, "currency must be STX, USD, or BTC")

	ErrOracleExists         = dErrors.NewCoded(dErrors.CodeConflict, codeOracleExists, "oracle name already registered")
	ErrOracleNotFound       = dErrors.NewCoded(dErrors.CodeNotFound, codeOracleNotFound, "oracle not found")
	ErrAlreadyVerified      = dErrors.NewCoded(dErrors.CodeInvariantViolation, codeAlreadyVerified, "payment already verified")
	ErrCapacityExceeded     = dErrors.NewCoded(dErrors.CodeCapacity, codeMaxOraclesExceeded, "oracle registry at capacity")
	ErrReportsExceeded      = dErrors.NewCoded(dErrors.CodeCapacity, codeMaxReportsExceeded, "report limit reached for invoice")
	ErrNotAuthorized        = dErrors.NewCoded(dErrors.CodeForbidden, codeNotAuthorized, "caller is not authorized")
	ErrInvalidLimit         = dErrors.New(dErrors.CodeValidation, "limit must be positive")
	ErrAuthorityNotVerified = dErrors.NewCoded(dErrors.CodeUnauthorized, codeAuthorityNotVerified, "no authority configured")
	ErrAuthorityAlreadySet  = dErrors.NewCoded(dErrors.CodeConflict, codeAuthorityNotVerified, "authority already configured")
)
