package handler // handler defines http handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/booking"
)

// userIDFromContext extracts the user_id stored by the JWT middleware and
// converts it to uint64.  JWT numeric claims arrive as float64; string
// subjects are parsed as a fallback.
func userIDFromContext(c echo.Context) (uint64, bool) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, true
	case float64:
		return uint64(t), true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// actorFromContext builds the capability view of the authenticated caller
// from the user_id and role claims set by the JWT middleware.
func actorFromContext(c echo.Context) (booking.Actor, bool) {
	uid, ok := userIDFromContext(c)
	if !ok {
		return booking.Actor{}, false
	}
	role, ok := c.Get("role").(string)
	if !ok {
		return booking.Actor{}, false
	}
	return booking.Actor{UserID: uid, Role: role}, true
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
