package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/solmara/resort-reservation/internal/booking"
	"github.com/solmara/resort-reservation/internal/model"
)

// BookingStore is the MySQL implementation of booking.Store. All ledger
// work runs inside one transaction; the capacity check itself is a
// single conditional UPDATE on the venue row, which MySQL executes
// atomically under the row lock, so a read-then-write race on the
// utilization counter is impossible.
type BookingStore struct{ db *sql.DB }

func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{db: db} }

// InTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (s *BookingStore) InTx(ctx context.Context, fn func(booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type bookingTx struct{ tx *sql.Tx }

func (t *bookingTx) Venue(ctx context.Context, venueID uint64) (*model.Venue, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE id=? LIMIT 1", venueID)
	v, err := scanVenue(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const reservationColumns = "id, user_id, venue_id, quantity, status, confirmation_number, created_at, confirmed_at, cancelled_at"

func scanReservation(scan func(dest ...any) error) (*model.Reservation, error) {
	var (
		res         model.Reservation
		confirmedAt sql.NullTime
		cancelledAt sql.NullTime
	)
	err := scan(&res.ID, &res.UserID, &res.VenueID, &res.Quantity, &res.Status,
		&res.ConfirmationNumber, &res.CreatedAt, &confirmedAt, &cancelledAt)
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		at := confirmedAt.Time
		res.ConfirmedAt = &at
	}
	if cancelledAt.Valid {
		at := cancelledAt.Time
		res.CancelledAt = &at
	}
	return &res, nil
}

// ActiveReservation locks and returns the user's live reservation for
// the venue. The FOR UPDATE lock serializes concurrent rebooking
// attempts by the same user so the quantity delta is computed against a
// stable row.
func (t *bookingTx) ActiveReservation(ctx context.Context, venueID, userID uint64) (*model.Reservation, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE venue_id=? AND user_id=? AND active=1 LIMIT 1 FOR UPDATE",
		venueID, userID)
	res, err := scanReservation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return res, err
}

// ApplyUtilization performs the capacity-safe counter move. The WHERE
// clause checks both bounds inside the same statement that applies the
// delta: either the row qualifies and moves, or nothing happens.
func (t *bookingTx) ApplyUtilization(ctx context.Context, venueID uint64, delta int) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE venues
		    SET current_utilization = current_utilization + ?
		  WHERE id = ?
		    AND current_utilization + ? >= 0
		    AND (capacity IS NULL OR current_utilization + ? <= capacity)`,
		delta, venueID, delta, delta)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *bookingTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, venue_id, quantity, status, confirmation_number, active, confirmed_at)
		 VALUES (?,?,?,?,?,1,UTC_TIMESTAMP())`,
		res.UserID, res.VenueID, res.Quantity, res.Status, res.ConfirmationNumber)
	if err != nil {
		return classifyReservationInsertErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	now := time.Now().UTC()
	res.CreatedAt = now
	res.ConfirmedAt = &now
	return nil
}

// classifyReservationInsertErr sorts MySQL duplicate-key (1062) errors
// by the key that fired. The confirmation_number key means a code
// collision the ledger retries once; the (user_id, venue_id, active)
// key means a concurrent first booking by the same user won the race,
// which surfaces as a retriable conflict rather than a server fault.
func classifyReservationInsertErr(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "confirmation") {
		return booking.ErrDuplicateConfirmation
	}
	return booking.ErrConflict
}

func (t *bookingTx) UpdateQuantity(ctx context.Context, reservationID uint64, quantity int) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE reservations SET quantity=? WHERE id=?", quantity, reservationID)
	return err
}

func (t *bookingTx) ReservationByID(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? LIMIT 1 FOR UPDATE",
		reservationID)
	res, err := scanReservation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return res, err
}

// MarkCancelled clears the active flag (NULL) so the unique key over
// (user_id, venue_id, active) frees up for a future booking while the
// cancelled row stays behind for history.
func (t *bookingTx) MarkCancelled(ctx context.Context, reservationID uint64, at time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE reservations SET status=?, active=NULL, cancelled_at=? WHERE id=?",
		model.StatusCancelled, at.UTC().Format("2006-01-02 15:04:05"), reservationID)
	return err
}
