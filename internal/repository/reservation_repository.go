package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReservationRepo provides the read side of reservations: listings and
// detail lookups joined with venue names. Writes go exclusively through
// the booking store so the capacity invariant has a single owner.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationDetail is the row shape returned to clients: the
// reservation plus the venue it claims.
type ReservationDetail struct {
	ID                 uint64     `json:"id"`
	VenueID            uint64     `json:"venue_id"`
	VenueName          string     `json:"venue_name"`
	VenueKind          string     `json:"venue_kind"`
	Quantity           int        `json:"quantity"`
	Status             string     `json:"status"`
	ConfirmationNumber string     `json:"confirmation_number"`
	CreatedAt          time.Time  `json:"created_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

const detailQuery = `
SELECT r.id, r.venue_id, v.name, v.kind, r.quantity, r.status,
       r.confirmation_number, r.created_at, r.confirmed_at, r.cancelled_at
  FROM reservations r
  JOIN venues v ON v.id = r.venue_id`

func scanDetail(scan func(dest ...any) error) (ReservationDetail, error) {
	var (
		d           ReservationDetail
		confirmedAt sql.NullTime
		cancelledAt sql.NullTime
	)
	err := scan(&d.ID, &d.VenueID, &d.VenueName, &d.VenueKind, &d.Quantity,
		&d.Status, &d.ConfirmationNumber, &d.CreatedAt, &confirmedAt, &cancelledAt)
	if err != nil {
		return ReservationDetail{}, err
	}
	if confirmedAt.Valid {
		at := confirmedAt.Time
		d.ConfirmedAt = &at
	}
	if cancelledAt.Valid {
		at := cancelledAt.Time
		d.CancelledAt = &at
	}
	return d, nil
}

// ListByUser returns all of a user's reservations, newest first,
// including cancelled ones.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		detailQuery+" WHERE r.user_id=? ORDER BY r.created_at DESC, r.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByIDForUser returns one reservation detail, enforcing ownership.
// A miss yields sql.ErrNoRows; a row owned by someone else yields
// ErrForbidden so handlers can answer 403 instead of 404.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (ReservationDetail, error) {
	var owner uint64
	full := r.db.QueryRowContext(ctx, `
SELECT r.id, r.venue_id, v.name, v.kind, r.quantity, r.status,
       r.confirmation_number, r.created_at, r.confirmed_at, r.cancelled_at, r.user_id
  FROM reservations r
  JOIN venues v ON v.id = r.venue_id
 WHERE r.id=? LIMIT 1`, id)
	var (
		d           ReservationDetail
		confirmedAt sql.NullTime
		cancelledAt sql.NullTime
	)
	err := full.Scan(&d.ID, &d.VenueID, &d.VenueName, &d.VenueKind, &d.Quantity,
		&d.Status, &d.ConfirmationNumber, &d.CreatedAt, &confirmedAt, &cancelledAt, &owner)
	if err != nil {
		return ReservationDetail{}, err
	}
	if owner != userID {
		return ReservationDetail{}, ErrForbidden
	}
	if confirmedAt.Valid {
		at := confirmedAt.Time
		d.ConfirmedAt = &at
	}
	if cancelledAt.Valid {
		at := cancelledAt.Time
		d.CancelledAt = &at
	}
	return d, nil
}
