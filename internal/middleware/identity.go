package middleware

// identity.go derives the caller identifiers the rate limiter and the
// response cache put into their Redis keys.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// viewerID returns "u<id>" for an authenticated caller and "guest" otherwise.
func viewerID(c echo.Context) string {
	if p := Principal(c); p != nil {
		return "u" + strconv.FormatUint(p.UserID, 10)
	}
	return "guest"
}

// viewerScope adds the role, so two principals that share an id but carry
// different roles never read each other's cached responses.
func viewerScope(c echo.Context) string {
	if role := principalRole(c); role != "" {
		return viewerID(c) + ":" + string(role)
	}
	return viewerID(c)
}
