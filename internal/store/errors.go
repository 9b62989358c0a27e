package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by store operations. All are terminal for the
// triggering request; nothing here is retried internally.
var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadySold is returned to every purchase attempt that loses the
	// race for a listing, or that targets a listing already sold.
	ErrAlreadySold = errors.New("listing no longer available")

	// ErrSelfPurchase is returned when a seller tries to buy their own
	// listing.
	ErrSelfPurchase = errors.New("cannot purchase own listing")

	// ErrInvalidState is returned when an action targets a listing in the
	// wrong state, such as editing a sold listing.
	ErrInvalidState = errors.New("listing state does not allow this action")

	// ErrNotAllowed is returned when the acting principal lacks permission.
	ErrNotAllowed = errors.New("not allowed")
)

// ValidationError describes a rejected input field. The write is refused
// before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
