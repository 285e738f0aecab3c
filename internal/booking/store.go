package booking

import (
	"context"
	"time"

	"github.com/solmara/resort-reservation/internal/model"
)

// Store is the persistence boundary of the ledger. The MySQL
// implementation lives in internal/repository; tests use an in-memory
// implementation guarded by a mutex.
//
// All ledger work happens inside InTx so that a failed booking leaves
// no partial state: either the utilization delta and the reservation
// row commit together, or neither does.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx exposes the row operations the ledger composes inside one
// transaction. Implementations must make ApplyUtilization atomic with
// respect to concurrent callers on the same venue: two bookings that
// would jointly overflow capacity must see exactly one true and one
// false, never two trues.
type Tx interface {
	// Venue loads a venue by id, returning nil when absent.
	Venue(ctx context.Context, venueID uint64) (*model.Venue, error)

	// ActiveReservation loads the caller's live (non-cancelled)
	// reservation for the venue, locking it for the remainder of the
	// transaction. Returns nil when the user has none.
	ActiveReservation(ctx context.Context, venueID, userID uint64) (*model.Reservation, error)

	// ApplyUtilization adds delta to the venue's utilization counter as
	// a single conditional update. It reports false, without changing
	// anything, when the result would exceed capacity or drop below
	// zero.
	ApplyUtilization(ctx context.Context, venueID uint64, delta int) (bool, error)

	// InsertReservation persists a new reservation row and fills in its
	// generated ID. Returns ErrDuplicateConfirmation when the
	// confirmation number collides with an existing row.
	InsertReservation(ctx context.Context, res *model.Reservation) error

	// UpdateQuantity changes the quantity of an existing reservation.
	UpdateQuantity(ctx context.Context, reservationID uint64, quantity int) error

	// ReservationByID loads a reservation by primary key with a row
	// lock, returning nil when absent.
	ReservationByID(ctx context.Context, reservationID uint64) (*model.Reservation, error)

	// MarkCancelled flips a reservation to CANCELLED and clears its
	// active flag so a future booking on the same venue can be created.
	MarkCancelled(ctx context.Context, reservationID uint64, at time.Time) error
}
