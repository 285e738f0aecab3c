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

type broadcastReq struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	TargetType    string   `json:"target_type"`
	TargetUserIDs []uint64 `json:"target_user_ids"`
}

var validTargets = map[string]bool{
	model.TargetAll:       true,
	model.TargetMembers:   true,
	model.TargetInvestors: true,
	model.TargetSpecific:  true,
	model.TierGold:        true,
	model.TierPlatinum:    true,
	model.TierDiamond:     true,
}

// CreateBroadcast stores a draft broadcast. Nothing is delivered until
// the send endpoint is called.
func (h *AdminHandler) CreateBroadcast(c echo.Context) error {
	var req broadcastReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.TargetType = strings.ToUpper(strings.TrimSpace(req.TargetType))
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/body required"})
	}
	if !validTargets[req.TargetType] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid target_type"})
	}
	if req.TargetType == model.TargetSpecific && len(req.TargetUserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_user_ids required for SPECIFIC"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b := model.Broadcast{
		Title:         req.Title,
		Body:          req.Body,
		TargetType:    req.TargetType,
		TargetUserIDs: req.TargetUserIDs,
	}
	if err := h.Broadcasts.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create broadcast failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": b.ID, "status": b.Status})
}

// SendBroadcast marks a broadcast as sent, making it visible to its
// target segment. Sending twice fails: the sent set is immutable.
func (h *AdminHandler) SendBroadcast(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid broadcast id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Broadcasts.Send(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrBroadcastNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "broadcast not found"})
		case errors.Is(err, repository.ErrBroadcastSent):
			return c.JSON(http.StatusConflict, echo.Map{"error": "broadcast already sent"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send broadcast failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBroadcasts returns every broadcast regardless of status.
func (h *AdminHandler) ListBroadcasts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Broadcasts.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	type broadcastResp struct {
		ID         uint64     `json:"id"`
		Title      string     `json:"title"`
		Body       string     `json:"body"`
		TargetType string     `json:"target_type"`
		Status     string     `json:"status"`
		CreatedAt  time.Time  `json:"created_at"`
		SentAt     *time.Time `json:"sent_at,omitempty"`
	}
	out := make([]broadcastResp, 0, len(items))
	for _, b := range items {
		out = append(out, broadcastResp{
			ID:         b.ID,
			Title:      b.Title,
			Body:       b.Body,
			TargetType: b.TargetType,
			Status:     b.Status,
			CreatedAt:  b.CreatedAt,
			SentAt:     b.SentAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"broadcasts": out})
}
