// Package booking owns the capacity invariant for venues: it admits or
// rejects reservation attempts and guarantees that a venue's
// utilization counter never exceeds its capacity, even under concurrent
// bookings.
package booking

import "errors"

// Ledger errors. Handlers translate these into HTTP responses; anything
// else coming out of the ledger is an infrastructure fault that should
// be logged and surfaced as a generic failure.
var (
	// ErrAccessDenied means the caller's membership level or tier is
	// insufficient for the venue. Not retriable without a membership
	// change.
	ErrAccessDenied = errors.New("access denied")

	// ErrCapacityExceeded means the booking would push utilization past
	// the venue's capacity. Retriable only after capacity frees up.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrNotFound means the referenced venue or reservation does not
	// exist (or the venue has been deactivated).
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller does not own the reservation being
	// modified.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means a confirmation number collided twice in a row at
	// persistence time. With one regeneration already attempted this is
	// surfaced loudly instead of silently overwriting.
	ErrConflict = errors.New("confirmation number conflict")

	// ErrTimeout means a storage call exceeded the ledger's deadline.
	ErrTimeout = errors.New("storage deadline exceeded")

	// ErrInvalidQuantity means the requested quantity is outside 1..10.
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 10")
)

// ErrDuplicateConfirmation is returned by Tx.InsertReservation when the
// confirmation number violates the unique key. The ledger regenerates
// once before giving up with ErrConflict.
var ErrDuplicateConfirmation = errors.New("duplicate confirmation number")
