// Package domainerrors defines the error type shared by all registries.
//
// Every failed operation reports a category Code (the error taxonomy) and,
// where the registry assigns one, a registry-scoped numeric code ordered by
// validation sequence. Numeric codes are not globally unique; they only mean
// something together with the registry that produced them.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and the transport layer.
type Code string

const (
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeCapacity           Code = "capacity"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Error carries a category code, an optional registry-scoped numeric code,
// and a human-readable message. It wraps an underlying cause when built
// through Wrap.
type Error struct {
	Code    Code
	Num     int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an error with a category code only. Used by operations that the
// wire protocol reports as a bare success/failure result.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewCoded builds an error carrying the registry's numeric code.
func NewCoded(code Code, num int, message string) *Error {
	return &Error{Code: code, Num: num, Message: message}
}

// Wrap annotates an underlying error with a category code. The cause stays
// reachable through errors.Unwrap.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given
// category code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool { return HasCode(err, code) }

// Num extracts the registry-scoped numeric code, or 0 when the error carries
// none.
func Num(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Num
	}
	return 0
}
