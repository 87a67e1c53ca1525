package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy (sentinels)
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrDomain       = errors.New("domain rule violated")
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundError reports a missing entity by kind and key.
type NotFoundError struct {
	Entity string
	Key    any
}

// NewNotFoundError constructs a NotFoundError.
func NewNotFoundError(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v was not found.", e.Entity, e.Key)
}

// Is makes errors.Is(err, ErrNotFound) hold for typed not-found errors.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FieldError is a single failed rule on a named field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates rule failures grouped by field name.
type ValidationError struct {
	Errors map[string][]string
}

// NewValidationError groups failures by field, keeping message order per field.
func NewValidationError(failures []FieldError) *ValidationError {
	grouped := make(map[string][]string, len(failures))
	for _, f := range failures {
		grouped[f.Field] = append(grouped[f.Field], f.Message)
	}
	return &ValidationError{Errors: grouped}
}

func (e *ValidationError) Error() string { return "One or more validation errors have occurred." }

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DomainError is a business rule violation safe to show to clients.
type DomainError struct {
	Message string
	Err     error
}

// NewDomainError constructs a DomainError with the given message.
func NewDomainError(msg string) *DomainError { return &DomainError{Message: msg} }

func (e *DomainError) Error() string { return e.Message }

// Unwrap exposes the underlying cause, if any.
func (e *DomainError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDomain) hold.
func (e *DomainError) Is(target error) bool { return target == ErrDomain }
