package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/repository"
)

type promoteReq struct {
	Tier string `json:"tier"`
}

// PromoteUser upgrades an account to INVESTOR at the given tier. Level
// and tier change in a single statement; in-flight access tokens keep
// their old claims until the next refresh.
func (h *AdminHandler) PromoteUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req promoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	tier := strings.ToUpper(strings.TrimSpace(req.Tier))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.Promote(ctx, id, tier); err != nil {
		if errors.Is(err, repository.ErrInvalidTier) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "promote failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type setActiveReq struct {
	Active bool `json:"active"`
}

// SetUserActive suspends or restores an account. Suspended accounts
// keep their reservations but cannot log in or book.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.SetActive(ctx, id, req.Active); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
