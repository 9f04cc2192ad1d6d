// Package response writes the JSON envelope every API endpoint returns:
// {success, message, data?, errors?}.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Success writes a successful envelope with the given status.
func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope. errs itemises validation problems.
func Error(c echo.Context, status int, message string, errs ...string) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Errors: errs})
}

func Unauthorized(c echo.Context, message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c echo.Context, message string) error {
	if message == "" {
		message = "Forbidden"
	}
	return Error(c, http.StatusForbidden, message)
}

func NotFound(c echo.Context, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, http.StatusNotFound, message)
}

func ServerError(c echo.Context, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, http.StatusInternalServerError, message)
}
