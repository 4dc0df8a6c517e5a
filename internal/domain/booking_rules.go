package domain

import (
	"context"
	"regexp"
	"strings"
)

// bookingEmailRegex is deliberately loose: something@something.something
// with no whitespace anywhere.
var bookingEmailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateEmail checks s against the booking address pattern.
func ValidateEmail(s string) error {
	if !bookingEmailRegex.MatchString(s) {
		return NewValidationError("email", "please provide a valid email address")
	}
	return nil
}

// PrepareBooking validates and normalizes next before it is written.
// The email is normalized before it is checked.
func PrepareBooking(next Booking, prev *Booking) (Booking, error) {
	next.EventID = strings.TrimSpace(next.EventID)
	next.Email = NormalizeEmail(next.Email)

	if verr := validateStruct(next); verr != nil {
		return Booking{}, verr
	}
	if err := ValidateEmail(next.Email); err != nil {
		return Booking{}, err
	}
	return next, nil
}

// CheckEventReference verifies that next points at an existing event. The
// lookup only runs when the booking is new or its EventID changed.
func CheckEventReference(ctx context.Context, next Booking, prev *Booking, lookup EventLookup) error {
	if prev != nil && prev.EventID == next.EventID {
		return nil
	}
	ok, err := lookup.EventExists(ctx, next.EventID)
	if err != nil {
		return &EventReferenceLookupError{EventID: next.EventID, Err: err}
	}
	if !ok {
		return ErrEventReferenceNotFound
	}
	return nil
}
