package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/middleware"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/repository"
	"github.com/iliyamo/property-rental/internal/response"
	"github.com/iliyamo/property-rental/internal/service"
)

// storeTimeout bounds the store calls handlers make directly.
const storeTimeout = 5 * time.Second

// Authenticator is what the auth endpoints need from the service layer.
type Authenticator interface {
	Login(ctx context.Context, in service.Credentials) service.Result
	Register(ctx context.Context, in service.Registration) service.Result
}

// ProfileStore reads and updates a single account.
type ProfileStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, id uint64, upd model.ProfileUpdate) (model.User, error)
}

// AuthHandler bundles dependencies for the /api/auth endpoints.
type AuthHandler struct {
	Auth  Authenticator
	Users ProfileStore
}

func NewAuthHandler(auth Authenticator, users ProfileStore) *AuthHandler {
	return &AuthHandler{Auth: auth, Users: users}
}

// Login: 200 with {user, token}, 401 with the service message otherwise.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.Credentials
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, MsgValidationFailed, "Invalid request body")
	}
	if ok, err := validate(c, &req); !ok {
		return err
	}

	res := h.Auth.Login(c.Request().Context(), req)
	if !res.Success {
		return response.Error(c, http.StatusUnauthorized, res.Message)
	}
	return response.Success(c, http.StatusOK, res.Message, res.Data)
}

// Register: 201 with {user, token}, 400 with the service message otherwise.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.Registration
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, MsgValidationFailed, "Invalid request body")
	}
	if ok, err := validate(c, &req); !ok {
		return err
	}

	res := h.Auth.Register(c.Request().Context(), req)
	if !res.Success {
		return response.Error(c, http.StatusBadRequest, res.Message)
	}
	return response.Success(c, http.StatusCreated, res.Message, res.Data)
}

// Me returns the principal attached by JWTAuth.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return response.Unauthorized(c, "")
	}
	return response.Success(c, http.StatusOK, "User retrieved successfully", p)
}

// Verify confirms the bearer token is still accepted.
func (h *AuthHandler) Verify(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return response.Unauthorized(c, "Invalid token")
	}
	return response.Success(c, http.StatusOK, "Token is valid", echo.Map{"valid": true, "user": p})
}

// UpdateProfile lets any signed-in user change their own names and phone
// number. The active flag is reserved for admins.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return response.Unauthorized(c, "")
	}
	var req model.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, MsgValidationFailed, "Invalid request body")
	}
	req.IsActive = nil
	if ok, err := validate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, p.UserID, trimUpdate(req))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response.NotFound(c, "User not found")
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Uint64("user_id", p.UserID).Msg("profile: update failed")
		return response.ServerError(c, "An error occurred while updating the profile")
	}
	return response.Success(c, http.StatusOK, "Profile updated successfully", u.Public())
}

func trimUpdate(upd model.ProfileUpdate) model.ProfileUpdate {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	upd.FirstName = trim(upd.FirstName)
	upd.LastName = trim(upd.LastName)
	upd.PhoneNumber = trim(upd.PhoneNumber)
	return upd
}
