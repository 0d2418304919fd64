// Package apperror defines the error kinds returned by the catalog and cart engines.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is an error a caller can act on. Fields maps a field path to a message
// and is only populated for KindValidation.
type Error struct {
	Kind      Kind
	Message   string
	Fields    map[string]string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing entity
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s with id %q not found", resource, id),
	}
}

// Validation reports every rule violation at once
func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// Field is a Validation error with a single entry
func Field(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

// Conflict reports a uniqueness violation
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// RetryableConflict reports a lost race with a concurrent writer; repeating the
// request may succeed.
func RetryableConflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Retryable: true, Err: err}
}

// Internal wraps an unexpected failure. Message is safe to show callers.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
