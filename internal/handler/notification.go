package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/notification"
)

// NotificationHandler serves the per-user notification feed built from
// sent broadcasts.
type NotificationHandler struct {
	Router *notification.Router
}

func NewNotificationHandler(r *notification.Router) *NotificationHandler {
	if r == nil {
		panic("nil router passed to NewNotificationHandler")
	}
	return &NotificationHandler{Router: r}
}

type notificationResp struct {
	ID     uint64     `json:"id"`
	Title  string     `json:"title"`
	Body   string     `json:"body"`
	SentAt *time.Time `json:"sent_at,omitempty"`
	Read   bool       `json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// List returns the broadcasts visible to the caller, newest first,
// annotated with read state.
func (h *NotificationHandler) List(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Router.ListFor(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]notificationResp, 0, len(items))
	for _, it := range items {
		out = append(out, notificationResp{
			ID:     it.Broadcast.ID,
			Title:  it.Broadcast.Title,
			Body:   it.Broadcast.Body,
			SentAt: it.Broadcast.SentAt,
			Read:   it.Read,
			ReadAt: it.ReadAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// UnreadCount returns how many visible broadcasts the caller has not
// read yet, for badge rendering.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Router.UnreadCountFor(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkRead records a read receipt. Re-reading is a no-op; broadcasts
// outside the caller's segment report not found rather than leaking
// their existence.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	bid, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	id, err := identityFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Router.MarkRead(ctx, id, bid); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
