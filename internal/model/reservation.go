package model

import "time"

// Reservation statuses stored in reservations.status. COMPLETED and
// NO_SHOW are set by back-office tooling after the venue date passes;
// the API itself only moves reservations between CONFIRMED and CANCELLED.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
	StatusNoShow    = "NO_SHOW"
)

// Reservation records a user's claim against a venue. It mirrors the
// `reservations` table.
//
// At most one active (non-cancelled) reservation exists per (user,
// venue) pair; a repeat booking updates the existing row instead of
// creating a duplicate. The schema enforces this with a unique key over
// (user_id, venue_id, active) where `active` is 1 for live rows and
// NULL once cancelled, so cancelled rows never collide.
//
// ConfirmationNumber is unique across all reservations ever created and
// is never reused, even after cancellation.
type Reservation struct {
	ID                 uint64     // reservations.id
	UserID             uint64     // reservations.user_id
	VenueID            uint64     // reservations.venue_id
	Quantity           int        // reservations.quantity (guests, 1..10)
	Status             string     // reservations.status
	ConfirmationNumber string     // reservations.confirmation_number
	CreatedAt          time.Time  // reservations.created_at
	ConfirmedAt        *time.Time // reservations.confirmed_at (nullable)
	CancelledAt        *time.Time // reservations.cancelled_at (nullable)
}
