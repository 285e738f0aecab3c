package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireLevel returns a middleware that enforces that the
// authenticated user's access level is one of the allowed values. This
// is a coarse route gate only; per-venue tier admission is decided by
// the booking ledger. Missing or unknown levels are rejected with 403.
// It assumes JWTAuth has already populated the context.
func RequireLevel(levels ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(levels))
	for _, l := range levels {
		allowed[l] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, ok := c.Get(CtxAccessLevel).(string)
			if !ok || !allowed[v] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose token does not carry the admin
// claim. Applied to the /v1/admin group.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if admin, ok := c.Get(CtxIsAdmin).(bool); !ok || !admin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
