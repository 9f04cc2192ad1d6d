package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/middleware"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/repository"
	"github.com/iliyamo/property-rental/internal/response"
)

// UserManager is the store surface the admin endpoints use.
type UserManager interface {
	ProfileStore
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.User, error)
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}

// AdminHandler serves /api/admin. Every route is mounted behind
// RequireRole(admin).
type AdminHandler struct {
	Users UserManager
}

func NewAdminHandler(users UserManager) *AdminHandler {
	if users == nil {
		panic("nil user store passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users}
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// ListUsers returns the public projection of every account.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("admin: list users failed")
		return response.ServerError(c, "")
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return response.Success(c, http.StatusOK, "Users retrieved successfully", out)
}

// UpdateUser changes names, phone number or the active flag of any account.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, MsgValidationFailed, "Invalid user id")
	}
	var req model.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, MsgValidationFailed, "Invalid request body")
	}
	if ok, err := validate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, id, trimUpdate(req))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response.NotFound(c, "User not found")
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Uint64("user_id", id).Msg("admin: update user failed")
		return response.ServerError(c, "")
	}
	return response.Success(c, http.StatusOK, "User updated successfully", u.Public())
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, http.StatusBadRequest, MsgValidationFailed, "Invalid user id")
	}
	if p := middleware.Principal(c); p != nil && p.UserID == id {
		return response.Error(c, http.StatusBadRequest, "You cannot delete your own account")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	err := h.Users.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response.NotFound(c, "User not found")
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Uint64("user_id", id).Msg("admin: delete user failed")
		return response.ServerError(c, "")
	}
	return response.Success(c, http.StatusOK, "User deleted successfully", nil)
}

type adminDashboard struct {
	TotalUsers  int                `json:"totalUsers"`
	UsersByRole map[model.Role]int `json:"usersByRole"`
}

// Dashboard reports account counts per role.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	counts, err := h.Users.CountByRole(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("admin: count users failed")
		return response.ServerError(c, "")
	}
	out := adminDashboard{UsersByRole: counts}
	for _, n := range counts {
		out.TotalUsers += n
	}
	return response.Success(c, http.StatusOK, "Dashboard retrieved successfully", out)
}
