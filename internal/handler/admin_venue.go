package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/model"
	"github.com/solmara/resort-reservation/internal/repository"
)

// AdminHandler bundles repositories for back-office endpoints. All of
// its routes sit behind the admin middleware.
type AdminHandler struct {
	Venues     *repository.VenueRepo
	Users      *repository.UserRepo
	Broadcasts *repository.BroadcastRepo
}

func NewAdminHandler(v *repository.VenueRepo, u *repository.UserRepo, b *repository.BroadcastRepo) *AdminHandler {
	if v == nil || u == nil || b == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Venues: v, Users: u, Broadcasts: b}
}

type venueReq struct {
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Description   string  `json:"description"`
	Capacity      *uint32 `json:"capacity"` // null or omitted means unlimited
	RequiredLevel string  `json:"required_level"`
	RequiredTier  string  `json:"required_tier"`
	IsActive      *bool   `json:"is_active"`
}

var validKinds = map[string]bool{
	model.KindEvent:      true,
	model.KindLodging:    true,
	model.KindRestaurant: true,
	model.KindConcierge:  true,
	model.KindFleet:      true,
}

var validLevels = map[string]bool{
	model.LevelAll:      true,
	model.LevelMember:   true,
	model.LevelInvestor: true,
}

func (req *venueReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Kind = strings.ToUpper(strings.TrimSpace(req.Kind))
	req.RequiredLevel = strings.ToUpper(strings.TrimSpace(req.RequiredLevel))
	req.RequiredTier = strings.ToUpper(strings.TrimSpace(req.RequiredTier))

	if req.Name == "" {
		return "name required"
	}
	if !validKinds[req.Kind] {
		return "invalid kind"
	}
	if req.RequiredLevel == "" {
		req.RequiredLevel = model.LevelAll
	}
	if !validLevels[req.RequiredLevel] {
		return "invalid required_level"
	}
	if req.RequiredTier != "" {
		if req.RequiredLevel != model.LevelInvestor {
			return "required_tier only applies to INVESTOR venues"
		}
		switch req.RequiredTier {
		case model.TierGold, model.TierPlatinum, model.TierDiamond:
		default:
			return "invalid required_tier"
		}
	}
	return ""
}

// CreateVenue registers a new bookable venue.
func (h *AdminHandler) CreateVenue(c echo.Context) error {
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v := model.Venue{
		Name:          req.Name,
		Kind:          req.Kind,
		Description:   req.Description,
		Capacity:      req.Capacity,
		RequiredLevel: req.RequiredLevel,
		RequiredTier:  req.RequiredTier,
	}
	if err := h.Venues.Create(ctx, &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create venue failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": v.ID})
}

// UpdateVenue rewrites a venue's editable fields. Utilization cannot be
// edited here; only the booking ledger moves it.
func (h *AdminHandler) UpdateVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v := model.Venue{
		ID:            id,
		Name:          req.Name,
		Kind:          req.Kind,
		Description:   req.Description,
		Capacity:      req.Capacity,
		RequiredLevel: req.RequiredLevel,
		RequiredTier:  req.RequiredTier,
		IsActive:      true,
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if err := h.Venues.Update(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update venue failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeactivateVenue hides a venue from the catalogue and from booking.
// Existing reservations are untouched.
func (h *AdminHandler) DeactivateVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Venues.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate venue failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListVenuesAdmin returns every venue including deactivated ones, with
// raw utilization counters.
func (h *AdminHandler) ListVenuesAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	venues, err := h.Venues.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	type adminVenueResp struct {
		venueResp
		CurrentUtilization uint32 `json:"current_utilization"`
		IsActive           bool   `json:"is_active"`
	}
	out := make([]adminVenueResp, 0, len(venues))
	for _, v := range venues {
		out = append(out, adminVenueResp{
			venueResp:          toVenueResp(v),
			CurrentUtilization: v.CurrentUtilization,
			IsActive:           v.IsActive,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": out})
}
