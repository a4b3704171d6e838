package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes aggregate failure semantics across both contexts.
type ErrorCode string

const (
	// CodeValidation: caller supplied a value that violates an invariant.
	// Never silently corrected; the caller must resubmit valid data.
	CodeValidation ErrorCode = "validation"
	// CodeNotFound: the addressed aggregate or entity does not exist.
	CodeNotFound ErrorCode = "not_found"
	// CodeConflict: uniqueness or optimistic-concurrency violation. The
	// caller must reload and retry with fresh state.
	CodeConflict ErrorCode = "conflict"
	// CodeInvariantViolation: a contract violation inside the domain, such
	// as mutating a synced projection outside the sync consumer.
	CodeInvariantViolation ErrorCode = "invariant_violation"
	// CodeRetryable: transient infrastructure failure.
	CodeRetryable ErrorCode = "retryable"
	CodeInternal  ErrorCode = "internal"
)

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// Validation tags a message as a validation failure with no wrapped cause.
func Validation(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

// Conflict tags a message as a uniqueness or concurrency conflict.
func Conflict(op, message string) error {
	return NewError(CodeConflict, op, message, nil)
}

// Invariant tags a message as a domain contract violation.
func Invariant(op, message string) error {
	return NewError(CodeInvariantViolation, op, message, nil)
}

// NotFound tags a message as an unresolved identity.
func NotFound(op, message string) error {
	return NewError(CodeNotFound, op, message, nil)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}
