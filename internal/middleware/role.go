package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-rental/internal/access"
	"github.com/iliyamo/property-rental/internal/model"
)

// RequireRole admits only principals whose role is one of roles. Mount it
// after JWTAuth; on its own it answers 401 "Authentication required".
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return Gate(access.RequireRole(roles...))
}
