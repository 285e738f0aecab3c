package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/model"
	"github.com/solmara/resort-reservation/internal/repository"
)

// PublicHandler serves the unauthenticated venue catalogue.
type PublicHandler struct {
	Venues *repository.VenueRepo
}

func NewPublicHandler(v *repository.VenueRepo) *PublicHandler {
	if v == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Venues: v}
}

type venueResp struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Description   string  `json:"description,omitempty"`
	Capacity      *uint32 `json:"capacity"` // null means unlimited
	Available     *uint32 `json:"available"`
	RequiredLevel string  `json:"required_level"`
	RequiredTier  string  `json:"required_tier,omitempty"`
}

func toVenueResp(v model.Venue) venueResp {
	out := venueResp{
		ID:            v.ID,
		Name:          v.Name,
		Kind:          v.Kind,
		Description:   v.Description,
		Capacity:      v.Capacity,
		RequiredLevel: v.RequiredLevel,
		RequiredTier:  v.RequiredTier,
	}
	if v.Capacity != nil {
		avail := uint32(0)
		if *v.Capacity > v.CurrentUtilization {
			avail = *v.Capacity - v.CurrentUtilization
		}
		out.Available = &avail
	}
	return out
}

// ListVenues returns all active venues with remaining availability.
func (h *PublicHandler) ListVenues(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	venues, err := h.Venues.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]venueResp, 0, len(venues))
	for _, v := range venues {
		out = append(out, toVenueResp(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": out})
}

// GetVenue returns one active venue. Deactivated venues are hidden from
// the public catalogue entirely.
func (h *PublicHandler) GetVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !v.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	}
	return c.JSON(http.StatusOK, toVenueResp(v))
}
