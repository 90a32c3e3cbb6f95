// Package domainerrors provides coded errors that services return and transports
// translate into stable, machine-readable responses.
//
// An Error carries a Code, which is the broad category used for transport
// mapping (HTTP status, log level), and an optional Reason, which is the
// narrow, stable name callers branch on (e.g. "RaffleExpired").
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error by category.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeCapacity           Code = "capacity_exceeded"
	CodeTemporal           Code = "temporal_violation"
	CodeTransfer           Code = "transfer_failed"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Reason != "" {
		prefix = e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a reason.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// NewReason creates a coded error carrying a stable reason name.
func NewReason(code Code, reason, message string) error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is and errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WrapReason is Wrap with a stable reason name.
func WrapReason(err error, code Code, reason, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// HasReason reports whether the outermost domain error in err's chain carries reason.
func HasReason(err error, reason string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason == reason
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal for
// errors that were never classified.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf returns the reason of the outermost domain error, if any.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// MessageOf returns the client-facing message of the outermost domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
