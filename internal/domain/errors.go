package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup errors.
var (
	ErrNotFound = errors.New("not found")
)

// Storage errors.
var (
	ErrConnectionStringMissing = errors.New("connection string not defined")
	ErrDuplicateSlug           = errors.New("an event with this slug already exists")
	ErrStoreUnavailable        = errors.New("store unavailable")
)

// Record errors.
var (
	ErrValidation             = errors.New("validation error")
	ErrEventReferenceNotFound = errors.New("referenced event does not exist")
	ErrEventReferenceLookup   = errors.New("failed to validate event reference")
)

// FieldError describes a single failed rule on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field errors found while preparing a record.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a ValidationError holding a single field error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether the named field failed.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// EventReferenceLookupError is returned when the existence check for a
// booking's event could not be completed. It matches ErrEventReferenceLookup
// and exposes the underlying cause.
type EventReferenceLookupError struct {
	EventID string
	Err     error
}

func (e *EventReferenceLookupError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrEventReferenceLookup, e.EventID, e.Err)
}

func (e *EventReferenceLookupError) Unwrap() []error {
	return []error{ErrEventReferenceLookup, e.Err}
}
