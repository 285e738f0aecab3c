package booking

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmara/resort-reservation/internal/access"
	"github.com/solmara/resort-reservation/internal/model"
	"github.com/solmara/resort-reservation/internal/queue"
	"github.com/solmara/resort-reservation/internal/utils"
)

// memStore is an in-memory Store whose InTx serializes callers with a
// mutex, mirroring the per-venue linearizability the MySQL store gets
// from its conditional update. State is snapshotted at transaction
// start and restored when fn fails, so failed bookings leave nothing
// behind.
type memStore struct {
	mu           sync.Mutex
	venues       map[uint64]*model.Venue
	reservations map[uint64]*model.Reservation
	nextID       uint64
	failInserts  int // upcoming InsertReservation calls to fail as duplicates
}

func newMemStore(venues ...*model.Venue) *memStore {
	s := &memStore{
		venues:       make(map[uint64]*model.Venue),
		reservations: make(map[uint64]*model.Reservation),
	}
	for _, v := range venues {
		s.venues[v.ID] = v
	}
	return s
}

func (s *memStore) InTx(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	savedVenues := make(map[uint64]*model.Venue, len(s.venues))
	for id, v := range s.venues {
		cp := *v
		savedVenues[id] = &cp
	}
	savedRes := make(map[uint64]*model.Reservation, len(s.reservations))
	for id, r := range s.reservations {
		cp := *r
		savedRes[id] = &cp
	}
	savedNext := s.nextID

	if err := fn((*memTx)(s)); err != nil {
		s.venues = savedVenues
		s.reservations = savedRes
		s.nextID = savedNext
		return err
	}
	return nil
}

type memTx memStore

func (t *memTx) Venue(_ context.Context, venueID uint64) (*model.Venue, error) {
	v, ok := t.venues[venueID]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (t *memTx) ActiveReservation(_ context.Context, venueID, userID uint64) (*model.Reservation, error) {
	for _, r := range t.reservations {
		if r.VenueID == venueID && r.UserID == userID && r.Status != model.StatusCancelled {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) ApplyUtilization(_ context.Context, venueID uint64, delta int) (bool, error) {
	v, ok := t.venues[venueID]
	if !ok {
		return false, nil
	}
	next := int(v.CurrentUtilization) + delta
	if next < 0 {
		return false, nil
	}
	if v.Capacity != nil && next > int(*v.Capacity) {
		return false, nil
	}
	v.CurrentUtilization = uint32(next)
	return true, nil
}

func (t *memTx) InsertReservation(_ context.Context, res *model.Reservation) error {
	if t.failInserts > 0 {
		t.failInserts--
		return ErrDuplicateConfirmation
	}
	for _, r := range t.reservations {
		if r.ConfirmationNumber == res.ConfirmationNumber {
			return ErrDuplicateConfirmation
		}
	}
	t.nextID++
	res.ID = t.nextID
	now := time.Now().UTC()
	res.CreatedAt = now
	res.ConfirmedAt = &now
	cp := *res
	t.reservations[res.ID] = &cp
	return nil
}

func (t *memTx) UpdateQuantity(_ context.Context, reservationID uint64, quantity int) error {
	r, ok := t.reservations[reservationID]
	if !ok {
		return ErrNotFound
	}
	r.Quantity = quantity
	return nil
}

func (t *memTx) ReservationByID(_ context.Context, reservationID uint64) (*model.Reservation, error) {
	r, ok := t.reservations[reservationID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) MarkCancelled(_ context.Context, reservationID uint64, at time.Time) error {
	r, ok := t.reservations[reservationID]
	if !ok {
		return ErrNotFound
	}
	r.Status = model.StatusCancelled
	r.CancelledAt = &at
	return nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationConfirmedEvent
}

func (p *capturePublisher) PublishReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func capPtr(n uint32) *uint32 { return &n }

func eventVenue(id uint64, capacity *uint32, utilization uint32) *model.Venue {
	return &model.Venue{
		ID:                 id,
		Name:               "Moonrise Amphitheater",
		Kind:               model.KindEvent,
		Capacity:           capacity,
		CurrentUtilization: utilization,
		RequiredLevel:      model.LevelAll,
		IsActive:           true,
	}
}

func member(userID uint64) access.Identity {
	return access.Identity{UserID: userID, AccessLevel: model.LevelMember, IsActive: true}
}

func newTestLedger(store Store, pub Publisher) *Ledger {
	return NewLedger(store, utils.NewCodeGenerator(), pub, nil, 2*time.Second)
}

func TestBookCapacityScenario(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(10), 8))
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	_, err := ledger.Book(ctx, 1, member(100), 3)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, uint32(8), store.venues[1].CurrentUtilization)

	res, err := ledger.Book(ctx, 1, member(101), 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), store.venues[1].CurrentUtilization)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Regexp(t, regexp.MustCompile(`^EVE-[0-9a-z]+-[0-9a-z]{4}$`), res.ConfirmationNumber)

	_, err = ledger.Book(ctx, 1, member(102), 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, uint32(10), store.venues[1].CurrentUtilization)
}

func TestBookQuantityBounds(t *testing.T) {
	ledger := newTestLedger(newMemStore(eventVenue(1, nil, 0)), nil)
	ctx := context.Background()

	_, err := ledger.Book(ctx, 1, member(1), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = ledger.Book(ctx, 1, member(1), 11)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBookVenueNotFound(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(5), 0))
	store.venues[1].IsActive = false
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	_, err := ledger.Book(ctx, 99, member(1), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// deactivated venues are hidden, not full
	_, err = ledger.Book(ctx, 1, member(1), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookTierGating(t *testing.T) {
	v := eventVenue(1, capPtr(20), 0)
	v.RequiredLevel = model.LevelInvestor
	v.RequiredTier = model.TierPlatinum
	ledger := newTestLedger(newMemStore(v), nil)
	ctx := context.Background()

	_, err := ledger.Book(ctx, 1, member(1), 1)
	assert.ErrorIs(t, err, ErrAccessDenied)

	gold := access.Identity{UserID: 2, AccessLevel: model.LevelInvestor, InvestorTier: model.TierGold, IsActive: true}
	_, err = ledger.Book(ctx, 1, gold, 1)
	assert.ErrorIs(t, err, ErrAccessDenied)

	diamond := access.Identity{UserID: 3, AccessLevel: model.LevelInvestor, InvestorTier: model.TierDiamond, IsActive: true}
	_, err = ledger.Book(ctx, 1, diamond, 1)
	assert.NoError(t, err)
}

func TestRebookUpdatesInPlace(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(20), 0))
	pub := &capturePublisher{}
	ledger := newTestLedger(store, pub)
	ctx := context.Background()

	first, err := ledger.Book(ctx, 1, member(7), 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), store.venues[1].CurrentUtilization)

	second, err := ledger.Book(ctx, 1, member(7), 5)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ConfirmationNumber, second.ConfirmationNumber)
	assert.Equal(t, 5, second.Quantity)
	// net +3, not +7
	assert.Equal(t, uint32(5), store.venues[1].CurrentUtilization)

	active := 0
	for _, r := range store.reservations {
		if r.UserID == 7 && r.Status != model.StatusCancelled {
			active++
		}
	}
	assert.Equal(t, 1, active)

	// rebooking to a smaller quantity releases the difference
	_, err = ledger.Book(ctx, 1, member(7), 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), store.venues[1].CurrentUtilization)

	// only the initial creation publishes an event
	assert.Len(t, pub.events, 1)
	assert.Equal(t, first.ID, pub.events[0].ReservationID)
}

func TestCancelIdempotent(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(10), 0))
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	res, err := ledger.Book(ctx, 1, member(4), 2)
	require.NoError(t, err)
	require.Equal(t, uint32(2), store.venues[1].CurrentUtilization)

	require.NoError(t, ledger.Cancel(ctx, res.ID, 4))
	assert.Equal(t, uint32(0), store.venues[1].CurrentUtilization)

	// second cancel is a no-op success; the counter is not touched again
	require.NoError(t, ledger.Cancel(ctx, res.ID, 4))
	assert.Equal(t, uint32(0), store.venues[1].CurrentUtilization)
	assert.Equal(t, model.StatusCancelled, store.reservations[res.ID].Status)

	// the slot is free for a new reservation with a fresh confirmation number
	again, err := ledger.Book(ctx, 1, member(4), 1)
	require.NoError(t, err)
	assert.NotEqual(t, res.ID, again.ID)
	assert.NotEqual(t, res.ConfirmationNumber, again.ConfirmationNumber)
}

func TestCancelOwnershipAndExistence(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(10), 0))
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	res, err := ledger.Book(ctx, 1, member(4), 2)
	require.NoError(t, err)

	assert.ErrorIs(t, ledger.Cancel(ctx, res.ID, 5), ErrForbidden)
	assert.ErrorIs(t, ledger.Cancel(ctx, 999, 4), ErrNotFound)
	assert.Equal(t, uint32(2), store.venues[1].CurrentUtilization)
}

func TestExpiredDeadlineMapsToTimeout(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(10), 0))
	ctx := context.Background()

	res, err := newTestLedger(store, nil).Book(ctx, 1, member(9), 2)
	require.NoError(t, err)

	// a per-call deadline that has already passed when storage is
	// reached surfaces as ErrTimeout, not as a capacity or access error
	slow := NewLedger(store, utils.NewCodeGenerator(), nil, nil, time.Nanosecond)

	_, err = slow.Book(ctx, 1, member(10), 1)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, uint32(2), store.venues[1].CurrentUtilization)

	err = slow.Cancel(ctx, res.ID, 9)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, uint32(2), store.venues[1].CurrentUtilization)
	assert.Equal(t, model.StatusConfirmed, store.reservations[res.ID].Status)
}

func TestConfirmationCollisionRetriesOnce(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(10), 0))
	store.failInserts = 1
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	res, err := ledger.Book(ctx, 1, member(1), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ConfirmationNumber)
	assert.Equal(t, uint32(1), store.venues[1].CurrentUtilization)
}

func TestConfirmationDoubleCollisionFailsLoudly(t *testing.T) {
	store := newMemStore(eventVenue(1, capPtr(10), 0))
	store.failInserts = 2
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	_, err := ledger.Book(ctx, 1, member(1), 1)
	assert.ErrorIs(t, err, ErrConflict)
	// the failed transaction rolled back the utilization increment
	assert.Equal(t, uint32(0), store.venues[1].CurrentUtilization)
}

func TestUnlimitedVenueIgnoresCapacity(t *testing.T) {
	store := newMemStore(eventVenue(1, nil, 0))
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	for uid := uint64(1); uid <= 30; uid++ {
		_, err := ledger.Book(ctx, 1, member(uid), 10)
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(300), store.venues[1].CurrentUtilization)
}

func TestConcurrentBookingNeverOverflows(t *testing.T) {
	const (
		capacity = 50
		callers  = 100
	)
	store := newMemStore(eventVenue(1, capPtr(capacity), 0))
	ledger := newTestLedger(store, nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			_, err := ledger.Book(context.Background(), 1, member(uid), 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case err == ErrCapacityExceeded:
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, callers-capacity, full)
	assert.Equal(t, uint32(capacity), store.venues[1].CurrentUtilization)
}

// Random interleaving of bookings and cancellations must keep the
// counter inside [0, capacity] at every step.
func TestBookCancelSequenceKeepsInvariant(t *testing.T) {
	const capacity = 8
	store := newMemStore(eventVenue(1, capPtr(capacity), 0))
	ledger := newTestLedger(store, nil)
	ctx := context.Background()

	held := make(map[uint64]uint64) // user -> reservation id
	for step := 0; step < 200; step++ {
		uid := uint64(step%13 + 1)
		if resID, ok := held[uid]; ok && step%3 == 0 {
			require.NoError(t, ledger.Cancel(ctx, resID, uid))
			delete(held, uid)
		} else {
			res, err := ledger.Book(ctx, 1, member(uid), step%3+1)
			if err == nil {
				held[uid] = res.ID
			} else {
				require.ErrorIs(t, err, ErrCapacityExceeded)
			}
		}
		util := store.venues[1].CurrentUtilization
		require.LessOrEqual(t, util, uint32(capacity), "step %d", step)
	}
}
