package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/solmara/resort-reservation/internal/booking"
	"github.com/solmara/resort-reservation/internal/repository"
)

// BookingHandler exposes the reservation ledger over HTTP.
type BookingHandler struct {
	Ledger       *booking.Ledger
	Reservations *repository.ReservationRepo
	Log          *zap.Logger
}

func NewBookingHandler(l *booking.Ledger, r *repository.ReservationRepo, log *zap.Logger) *BookingHandler {
	if l == nil || r == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Ledger: l, Reservations: r, Log: log}
}

// bookReq carries a pointer so an omitted quantity (default 1) can be
// told apart from an explicit zero, which is invalid.
type bookReq struct {
	Quantity *int `json:"quantity"`
}

type reservationResp struct {
	ID                 uint64     `json:"id"`
	VenueID            uint64     `json:"venue_id"`
	Quantity           int        `json:"quantity"`
	Status             string     `json:"status"`
	ConfirmationNumber string     `json:"confirmation_number"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
}

// Book claims capacity at a venue for the authenticated user. A repeat
// booking at the same venue adjusts the existing reservation in place.
func (h *BookingHandler) Book(c echo.Context) error {
	venueID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	id, err := identityFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	res, err := h.Ledger.Book(c.Request().Context(), venueID, id, quantity)
	if err != nil {
		return h.bookingError(c, err, venueID, id.UserID)
	}

	return c.JSON(http.StatusCreated, reservationResp{
		ID:                 res.ID,
		VenueID:            res.VenueID,
		Quantity:           res.Quantity,
		Status:             res.Status,
		ConfirmationNumber: res.ConfirmationNumber,
		ConfirmedAt:        res.ConfirmedAt,
	})
}

// Cancel releases the caller's reservation. Cancelling an already
// cancelled reservation succeeds without effect.
func (h *BookingHandler) Cancel(c echo.Context) error {
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	if err := h.Ledger.Cancel(c.Request().Context(), resID, uid); err != nil {
		return h.bookingError(c, err, 0, uid)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReservations returns the caller's reservations, newest first.
func (h *BookingHandler) ListReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": items})
}

// GetReservation returns one reservation with its venue, owner only.
func (h *BookingHandler) GetReservation(c echo.Context) error {
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Reservations.GetByIDForUser(ctx, resID, uid)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	return c.JSON(http.StatusOK, d)
}

// bookingError translates ledger sentinels into HTTP responses. Tier
// and capacity rejections are told apart so clients can render the
// right message; anything unexpected is logged server-side and hidden
// behind a generic 500.
func (h *BookingHandler) bookingError(c echo.Context, err error, venueID, userID uint64) error {
	switch {
	case errors.Is(err, booking.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be between 1 and 10"})
	case errors.Is(err, booking.ErrAccessDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "membership level too low for this venue"})
	case errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "venue is fully booked"})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "please retry"})
	default:
		h.Log.Error("booking failed",
			zap.Uint64("venue_id", venueID),
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
