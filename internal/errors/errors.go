// Package errors defines the coded errors shared by the cleaner pipeline.
// Per-item failures carry one of these codes so callers can tell a
// protected refusal from a permission problem without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure category.
type ErrorCode string

const (
	ErrUnknown ErrorCode = "UNKNOWN"

	// Per-item outcomes.
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrProtected        ErrorCode = "PROTECTED"
	ErrLocked           ErrorCode = "LOCKED"
	ErrPermission       ErrorCode = "PERMISSION"
	ErrIO               ErrorCode = "IO"
	ErrTrashUnavailable ErrorCode = "TRASH_UNAVAILABLE"

	// Classification could not resolve the path.
	ErrClassify ErrorCode = "CLASSIFY"

	// Initialization.
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrHomeDir       ErrorCode = "HOME_DIR"
)

// Error is a structured error with a stable code.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Details: make(map[string]interface{}), Wrapped: err}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail attaches a key/value detail.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether any error in err's chain has code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the code of err, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}
