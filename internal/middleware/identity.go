package middleware

// identity.go provides helpers shared across middleware files for
// identifying the requesting user in cache and rate-limit keys.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user id, or
// "guest" for unauthenticated requests. Used to scope rate-limit
// buckets per user.
func currentUserID(c echo.Context) string {
	v := c.Get(CtxUserID)
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return "guest"
}
