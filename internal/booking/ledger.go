package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/solmara/resort-reservation/internal/access"
	"github.com/solmara/resort-reservation/internal/model"
	"github.com/solmara/resort-reservation/internal/queue"
	"github.com/solmara/resort-reservation/internal/utils"
)

// Quantity bounds for a single reservation (number of guests).
const (
	minQuantity = 1
	maxQuantity = 10
)

// Publisher emits a domain event after a reservation commits. Publish
// failures must not fail the booking; the ledger logs them and moves on.
type Publisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// Ledger admits or rejects booking attempts against capacity-bounded
// venues. It performs at most one storage attempt per call and leaves
// no partial state behind on failure. Every call is bounded by the
// configured deadline; an expired deadline surfaces as ErrTimeout so
// callers can tell infrastructure trouble apart from a full venue.
type Ledger struct {
	store   Store
	codes   *utils.CodeGenerator
	pub     Publisher
	log     *zap.Logger
	timeout time.Duration
}

// NewLedger constructs a Ledger. The publisher may be nil when eventing
// is disabled; store and codes must be non-nil.
func NewLedger(store Store, codes *utils.CodeGenerator, pub Publisher, log *zap.Logger, timeout time.Duration) *Ledger {
	if store == nil || codes == nil {
		panic("nil dependency passed to NewLedger")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Ledger{store: store, codes: codes, pub: pub, log: log, timeout: timeout}
}

// Book places or updates a reservation for the identity on the venue.
//
// When the user already holds an active reservation on the venue the
// call is an update-in-place: only the quantity delta is applied to the
// counter, so rebooking 2 -> 5 consumes 3 extra slots, not 7. The
// capacity check and the counter increment happen as one conditional
// update, so two concurrent bookings that would jointly overflow the
// venue resolve to exactly one success.
func (l *Ledger) Book(ctx context.Context, venueID uint64, id access.Identity, quantity int) (*model.Reservation, error) {
	if quantity < minQuantity || quantity > maxQuantity {
		return nil, ErrInvalidQuantity
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		out     *model.Reservation
		venue   model.Venue
		created bool
	)
	err := l.store.InTx(ctx, func(tx Tx) error {
		v, err := tx.Venue(ctx, venueID)
		if err != nil {
			return err
		}
		if v == nil || !v.IsActive {
			return ErrNotFound
		}
		venue = *v
		if !access.CanAccess(id, v.RequiredLevel, v.RequiredTier) {
			return ErrAccessDenied
		}
		existing, err := tx.ActiveReservation(ctx, venueID, id.UserID)
		if err != nil {
			return err
		}
		delta := quantity
		if existing != nil {
			delta = quantity - existing.Quantity
		}
		if delta != 0 {
			ok, err := tx.ApplyUtilization(ctx, venueID, delta)
			if err != nil {
				return err
			}
			if !ok {
				if delta > 0 {
					return ErrCapacityExceeded
				}
				return fmt.Errorf("utilization underflow applying delta %d to venue %d", delta, venueID)
			}
		}
		if existing != nil {
			if delta != 0 {
				if err := tx.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
					return err
				}
			}
			existing.Quantity = quantity
			out = existing
			return nil
		}
		res := &model.Reservation{
			UserID:   id.UserID,
			VenueID:  venueID,
			Quantity: quantity,
			Status:   model.StatusConfirmed,
		}
		if err := l.insertWithCode(ctx, tx, res, venue.Kind); err != nil {
			return err
		}
		out = res
		created = true
		return nil
	})
	if err != nil {
		return nil, l.mapErr(err, venueID, id.UserID)
	}
	if created {
		l.publishConfirmed(*out, venue)
	}
	return out, nil
}

// insertWithCode stamps a fresh confirmation number and inserts the
// reservation. On a unique-key collision it regenerates exactly once;
// a second collision is surfaced as ErrConflict rather than silently
// overwriting an existing code.
func (l *Ledger) insertWithCode(ctx context.Context, tx Tx, res *model.Reservation, kind string) error {
	prefix := utils.KindPrefix(kind)
	for attempt := 0; attempt < 2; attempt++ {
		code, err := l.codes.Generate(prefix)
		if err != nil {
			return err
		}
		res.ConfirmationNumber = code
		err = tx.InsertReservation(ctx, res)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateConfirmation) {
			return err
		}
	}
	return ErrConflict
}

// Cancel releases the identity's reservation. Cancelling an already
// cancelled reservation is a no-op success; the counter is decremented
// exactly once, atomically with the status flip.
func (l *Ledger) Cancel(ctx context.Context, reservationID, userID uint64) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	err := l.store.InTx(ctx, func(tx Tx) error {
		res, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return ErrNotFound
		}
		if res.UserID != userID {
			return ErrForbidden
		}
		if res.Status == model.StatusCancelled {
			return nil
		}
		ok, err := tx.ApplyUtilization(ctx, res.VenueID, -res.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("utilization underflow releasing reservation %d", reservationID)
		}
		return tx.MarkCancelled(ctx, res.ID, time.Now().UTC())
	})
	if err != nil {
		return l.mapErr(err, 0, userID)
	}
	return nil
}

// mapErr passes ledger sentinels through untouched, converts an expired
// deadline into ErrTimeout and logs everything else as an
// infrastructure fault with enough context to diagnose.
func (l *Ledger) mapErr(err error, venueID, userID uint64) error {
	switch {
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		l.log.Warn("booking storage deadline exceeded",
			zap.Uint64("venue_id", venueID),
			zap.Uint64("user_id", userID),
		)
		return ErrTimeout
	default:
		l.log.Error("booking storage failure",
			zap.Uint64("venue_id", venueID),
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
		return err
	}
}

// publishConfirmed emits the post-commit event on a detached context so
// a nearly expired request deadline cannot abort the publish.
func (l *Ledger) publishConfirmed(res model.Reservation, venue model.Venue) {
	if l.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ev := queue.ReservationConfirmedEvent{
		ReservationID:      res.ID,
		UserID:             res.UserID,
		VenueID:            venue.ID,
		VenueName:          venue.Name,
		VenueKind:          venue.Kind,
		Quantity:           res.Quantity,
		ConfirmationNumber: res.ConfirmationNumber,
		ConfirmedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := l.pub.PublishReservationConfirmed(ctx, ev); err != nil {
		l.log.Warn("publish reservation.confirmed failed",
			zap.Uint64("reservation_id", res.ID),
			zap.Error(err),
		)
	}
}
