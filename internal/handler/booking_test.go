package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmara/resort-reservation/internal/booking"
	"github.com/solmara/resort-reservation/internal/middleware"
	"github.com/solmara/resort-reservation/internal/model"
	"github.com/solmara/resort-reservation/internal/repository"
	"github.com/solmara/resort-reservation/internal/utils"
)

// stubStore is a single-venue booking.Store for handler tests. InTx
// runs the callback directly; rollback behavior is covered by the
// ledger's own tests.
type stubStore struct {
	venue        model.Venue
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

func newStubStore(v model.Venue) *stubStore {
	return &stubStore{venue: v, reservations: make(map[uint64]*model.Reservation)}
}

func (s *stubStore) InTx(_ context.Context, fn func(booking.Tx) error) error { return fn(s) }

func (s *stubStore) Venue(_ context.Context, venueID uint64) (*model.Venue, error) {
	if s.venue.ID != venueID {
		return nil, nil
	}
	v := s.venue
	return &v, nil
}

func (s *stubStore) ActiveReservation(_ context.Context, venueID, userID uint64) (*model.Reservation, error) {
	for _, r := range s.reservations {
		if r.VenueID == venueID && r.UserID == userID && r.Status != model.StatusCancelled {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ApplyUtilization(_ context.Context, venueID uint64, delta int) (bool, error) {
	next := int(s.venue.CurrentUtilization) + delta
	if next < 0 {
		return false, nil
	}
	if s.venue.Capacity != nil && next > int(*s.venue.Capacity) {
		return false, nil
	}
	s.venue.CurrentUtilization = uint32(next)
	return true, nil
}

func (s *stubStore) InsertReservation(_ context.Context, res *model.Reservation) error {
	s.nextID++
	res.ID = s.nextID
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *stubStore) UpdateQuantity(_ context.Context, reservationID uint64, quantity int) error {
	s.reservations[reservationID].Quantity = quantity
	return nil
}

func (s *stubStore) ReservationByID(_ context.Context, reservationID uint64) (*model.Reservation, error) {
	r, ok := s.reservations[reservationID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *stubStore) MarkCancelled(_ context.Context, reservationID uint64, at time.Time) error {
	r := s.reservations[reservationID]
	r.Status = model.StatusCancelled
	r.CancelledAt = &at
	return nil
}

func newBookContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/venues/1/book", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/venues/:id/book")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(middleware.CtxUserID, uint64(7))
	c.Set(middleware.CtxAccessLevel, model.LevelMember)
	c.Set(middleware.CtxIsActive, true)
	return c, rec
}

func testBookingHandler(store booking.Store) *BookingHandler {
	ledger := booking.NewLedger(store, utils.NewCodeGenerator(), nil, nil, time.Second)
	return NewBookingHandler(ledger, repository.NewReservationRepo(nil), nil)
}

func TestBookOmittedQuantityDefaultsToOne(t *testing.T) {
	capacity := uint32(10)
	store := newStubStore(model.Venue{
		ID: 1, Name: "Sunset Terrace", Kind: model.KindRestaurant,
		Capacity: &capacity, RequiredLevel: model.LevelAll, IsActive: true,
	})
	h := testBookingHandler(store)

	c, rec := newBookContext(`{}`)
	require.NoError(t, h.Book(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint32(1), store.venue.CurrentUtilization)
	require.Len(t, store.reservations, 1)
	assert.Equal(t, 1, store.reservations[1].Quantity)
}

func TestBookExplicitZeroQuantityRejected(t *testing.T) {
	capacity := uint32(10)
	store := newStubStore(model.Venue{
		ID: 1, Name: "Sunset Terrace", Kind: model.KindRestaurant,
		Capacity: &capacity, RequiredLevel: model.LevelAll, IsActive: true,
	})
	h := testBookingHandler(store)

	// zero is an explicit out-of-range value, not a request for the default
	c, rec := newBookContext(`{"quantity":0}`)
	require.NoError(t, h.Book(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, uint32(0), store.venue.CurrentUtilization)
	assert.Empty(t, store.reservations)
}
