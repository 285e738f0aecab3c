package router

import (
	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/handler"
	"github.com/solmara/resort-reservation/internal/middleware"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.
// Every route requires a valid JWT with the admin claim set.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireAdmin(),
	)

	g.POST("/venues", a.CreateVenue)
	g.GET("/venues", a.ListVenuesAdmin)
	g.PUT("/venues/:id", a.UpdateVenue)
	g.DELETE("/venues/:id", a.DeactivateVenue)

	g.POST("/broadcasts", a.CreateBroadcast)
	g.GET("/broadcasts", a.ListBroadcasts)
	g.POST("/broadcasts/:id/send", a.SendBroadcast)

	g.POST("/users/:id/promote", a.PromoteUser)
	g.POST("/users/:id/active", a.SetUserActive)
}
