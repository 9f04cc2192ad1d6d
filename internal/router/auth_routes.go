package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-rental/internal/access"
	"github.com/iliyamo/property-rental/internal/handler"
	"github.com/iliyamo/property-rental/internal/middleware"
)

// RegisterAuth mounts /auth. Login and register are public but throttled
// by limiter; the rest require a valid bearer token of any role.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, v access.Verifier, limiter echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/login", a.Login, limiter)
	g.POST("/register", a.Register, limiter)

	jwt := middleware.JWTAuth(v)
	g.GET("/me", a.Me, jwt)
	g.GET("/verify", a.Verify, jwt)
	g.PATCH("/profile", a.UpdateProfile, jwt)
}
