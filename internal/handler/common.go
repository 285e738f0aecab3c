package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/solmara/resort-reservation/internal/access"
	"github.com/solmara/resort-reservation/internal/middleware"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims are decoded as float64, so several shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get(middleware.CtxUserID)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// identityFrom rebuilds the caller's access profile from the claims the
// JWT middleware stored on the context.
func identityFrom(c echo.Context) (access.Identity, error) {
	uid, err := getUserID(c)
	if err != nil {
		return access.Identity{}, err
	}
	level, _ := c.Get(middleware.CtxAccessLevel).(string)
	tier, _ := c.Get(middleware.CtxInvestorTier).(string)
	active, _ := c.Get(middleware.CtxIsActive).(bool)
	return access.Identity{
		UserID:       uid,
		AccessLevel:  level,
		InvestorTier: tier,
		IsActive:     active,
	}, nil
}

// pathID parses a numeric path parameter; ok is false on garbage input.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
