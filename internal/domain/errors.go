package domain

import (
	"errors"
	"fmt"
)

// Error codes returned by boundary operations. Handlers map these to HTTP
// statuses; nothing below the handler layer knows about HTTP.
const (
	EUnauthorized   = "unauthorized"     // missing/invalid bearer token
	ETenantNotFound = "tenant not found" // verified identity with no Business/User row
	EInvalid        = "invalid"          // validation failed
	EConflict       = "conflict"         // uniqueness or dependency rule violated
	ENotFound       = "not found"        // absent within the caller's tenant scope
	EInternal       = "internal error"   // unexpected failure
)

// Error is a coded error. Code targets automated handling (HTTP mapping),
// Msg is for the caller, Op and Err chain a logical stack trace for operators.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return e.Code
	}
}

// Unwrap exposes the wrapped error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a coded error with a formatted message.
func Errorf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// OpError wraps an underlying failure with a code and the failing operation.
func OpError(code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// ErrorCode returns the code of the first *Error in err's chain,
// EInternal for any other non-nil error, and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EInternal
}

// ErrorMessage returns the human-readable message of the first *Error in
// err's chain, falling back to a generic message for unexpected errors.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Code
	}
	return "an internal error occurred"
}
