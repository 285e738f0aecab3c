package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys populated by JWTAuth for downstream middleware and
// handlers.
const (
	CtxUserID       = "user_id"
	CtxAccessLevel  = "access_level"
	CtxInvestorTier = "investor_tier"
	CtxIsAdmin      = "is_admin"
	CtxIsActive     = "is_active"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the subject and membership claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers read the verified tuple via c.Get; they never
// re-check the users table, so promotions apply on the next refresh.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(CtxUserID, claims["sub"])
			c.Set(CtxAccessLevel, str(claims["level"]))
			c.Set(CtxInvestorTier, str(claims["tier"]))
			c.Set(CtxIsAdmin, boolean(claims["admin"]))
			c.Set(CtxIsActive, boolean(claims["active"]))
			return next(c)
		}
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func boolean(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
