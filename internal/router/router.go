package router // package router wires handlers and middleware into an Echo instance

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/property-rental/internal/access"
	"github.com/iliyamo/property-rental/internal/config"
	"github.com/iliyamo/property-rental/internal/handler"
	"github.com/iliyamo/property-rental/internal/listing"
	"github.com/iliyamo/property-rental/internal/middleware"
)

// Deps is everything the HTTP surface needs. Redis may be nil, in which case
// rate limiting and caching are skipped.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Verifier  access.Verifier
	Auth      handler.Authenticator
	Users     handler.UserManager
	Catalog   *listing.Catalog
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// New builds the Echo instance with the global middleware stack and every
// route of the API mounted under /api.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	api := e.Group("/api")
	RegisterRoutes(api)
	RegisterAuth(api, handler.NewAuthHandler(d.Auth, d.Users), d.Verifier,
		middleware.NewTokenBucket(d.RateLimit, d.Redis))
	RegisterAdmin(api, handler.NewAdminHandler(d.Users), d.Verifier)
	RegisterDashboards(api, handler.NewDashboardHandler(d.Users), d.Verifier)
	RegisterPublic(api, handler.NewPropertyHandler(d.Catalog), d.Verifier,
		middleware.NewRedisCache(d.Cache, d.Redis))
	return e
}

// RegisterRoutes registers routes that need no identity at all.
func RegisterRoutes(g *echo.Group) {
	g.GET("/health", handler.Health)
}
