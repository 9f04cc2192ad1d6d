package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-rental/internal/access"
	"github.com/iliyamo/property-rental/internal/handler"
	"github.com/iliyamo/property-rental/internal/middleware"
	"github.com/iliyamo/property-rental/internal/model"
)

// RegisterAdmin registers user administration under /admin. Every route
// requires a valid JWT and the admin role.
func RegisterAdmin(api *echo.Group, h *handler.AdminHandler, v access.Verifier) {
	g := api.Group("/admin", middleware.JWTAuth(v), middleware.RequireRole(model.RoleAdmin))
	g.GET("/dashboard", h.Dashboard)
	g.GET("/users", h.ListUsers)
	g.PATCH("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeleteUser)
}

// RegisterDashboards registers the owner and tenant dashboards. Role
// matching is exact, so an admin token is refused here.
func RegisterDashboards(api *echo.Group, h *handler.DashboardHandler, v access.Verifier) {
	jwt := middleware.JWTAuth(v)
	api.GET("/owner/dashboard", h.Owner, jwt, middleware.RequireRole(model.RoleOwner))
	api.GET("/tenant/dashboard", h.Tenant, jwt, middleware.RequireRole(model.RoleTenant))
}

// RegisterPublic registers the anonymous-friendly catalogue. OptionalAuth
// runs before the cache so cached entries are keyed per viewer.
func RegisterPublic(api *echo.Group, h *handler.PropertyHandler, v access.Verifier, cache echo.MiddlewareFunc) {
	api.GET("/properties", h.List, middleware.OptionalAuth(v), cache)
}
