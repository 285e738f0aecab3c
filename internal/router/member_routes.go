package router

import (
	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/handler"
	"github.com/solmara/resort-reservation/internal/middleware"
	"github.com/solmara/resort-reservation/internal/model"
)

// RegisterMember registers the member-scoped endpoints under /v1. Every
// authenticated account may call them; per-venue admission (level and
// tier) is decided inside the booking ledger, not here. The limiter, if
// non-nil, is applied to the booking write endpoints only.
func RegisterMember(e *echo.Echo, b *handler.BookingHandler, n *handler.NotificationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireLevel(model.LevelGuest, model.LevelMember, model.LevelInvestor),
	)

	if limiter == nil {
		limiter = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	g.POST("/venues/:id/book", b.Book, limiter)
	g.DELETE("/reservations/:id", b.Cancel, limiter)

	g.GET("/my-reservations", b.ListReservations)
	g.GET("/reservations/:id", b.GetReservation)

	g.GET("/notifications", n.List)
	g.GET("/notifications/unread-count", n.UnreadCount)
	g.POST("/notifications/:id/read", n.MarkRead)
}
