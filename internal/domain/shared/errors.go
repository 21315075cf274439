package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This lets callers compare a specific message against the sentinel,
// e.g. errors.Is(NewDomainError("NOT_FOUND", "parcel not found"), ErrNotFound).
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps its cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// NotFound returns a NOT_FOUND error with a specific message
func NotFound(message string) *DomainError {
	return NewDomainError("NOT_FOUND", message)
}

// Conflict returns an ALREADY_EXISTS error with a specific message
func Conflict(message string) *DomainError {
	return NewDomainError("ALREADY_EXISTS", message)
}

// Invalid returns an INVALID_INPUT error with a specific message
func Invalid(message string) *DomainError {
	return NewDomainError("INVALID_INPUT", message)
}

// InvalidState returns an INVALID_STATE error with a specific message
func InvalidState(message string) *DomainError {
	return NewDomainError("INVALID_STATE", message)
}

// Forbidden returns a FORBIDDEN error with a specific message
func Forbidden(message string) *DomainError {
	return NewDomainError("FORBIDDEN", message)
}

// IsNotFound reports whether err carries the NOT_FOUND code
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err carries the ALREADY_EXISTS code
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
