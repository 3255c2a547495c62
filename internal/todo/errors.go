package todo

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes todosync errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed input (e.g. a blank title).
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNotFound indicates the target todo no longer exists.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeTransient indicates a temporary availability failure.
	ErrCodeTransient ErrorCode = "TRANSIENT"
)

// Error is the structured error returned by the store and engine.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed ("create", "toggle", ...).
	Op string

	// ID is the affected todo, if any.
	ID string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.ID != "" {
		return fmt.Sprintf("%s: %s: %s (id=%s)", e.Op, e.Code, msg, e.ID)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a VALIDATION error.
func NewValidationError(op, message string) *Error {
	return &Error{Code: ErrCodeValidation, Op: op, Message: message}
}

// NewNotFoundError creates a NOT_FOUND error for id.
func NewNotFoundError(op, id string) *Error {
	return &Error{Code: ErrCodeNotFound, Op: op, ID: id, Message: "todo does not exist"}
}

// NewTransientError wraps err as TRANSIENT.
func NewTransientError(op string, err error) *Error {
	return &Error{Code: ErrCodeTransient, Op: op, Message: "temporarily unavailable", Err: err}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsTransient reports whether err is a TRANSIENT error.
func IsTransient(err error) bool {
	return CodeOf(err) == ErrCodeTransient
}
