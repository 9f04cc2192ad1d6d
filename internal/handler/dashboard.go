package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/access"
	"github.com/iliyamo/property-rental/internal/middleware"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/repository"
	"github.com/iliyamo/property-rental/internal/response"
)

// DashboardHandler serves the owner and tenant landing data.
type DashboardHandler struct {
	Users ProfileStore
}

func NewDashboardHandler(users ProfileStore) *DashboardHandler {
	return &DashboardHandler{Users: users}
}

type roleDashboard struct {
	Principal *access.Principal `json:"principal"`
	Profile   model.PublicUser  `json:"profile"`
}

func (h *DashboardHandler) render(c echo.Context, message string) error {
	p := middleware.Principal(c)
	if p == nil {
		return response.Unauthorized(c, "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response.NotFound(c, "User not found")
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Uint64("user_id", p.UserID).Msg("dashboard: load profile failed")
		return response.ServerError(c, "")
	}
	return response.Success(c, http.StatusOK, message, roleDashboard{Principal: p, Profile: u.Public()})
}

func (h *DashboardHandler) Owner(c echo.Context) error {
	return h.render(c, "Owner dashboard retrieved successfully")
}

func (h *DashboardHandler) Tenant(c echo.Context) error {
	return h.render(c, "Tenant dashboard retrieved successfully")
}
