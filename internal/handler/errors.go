package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/response"
)

// MsgUnexpected is the only thing a client learns about an internal fault.
const MsgUnexpected = "An unexpected error occurred"

// HTTPErrorHandler renders errors that escape handlers and middleware in
// the response envelope. Unknown routes get a 404 naming the path, echo
// HTTP errors keep their status, everything else is a 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			err = response.NotFound(c, fmt.Sprintf("Route %s not found", c.Request().URL.RequestURI()))
		case http.StatusMethodNotAllowed:
			err = response.Error(c, he.Code, "Method not allowed")
		case http.StatusInternalServerError:
			log.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
			err = response.ServerError(c, MsgUnexpected)
		default:
			err = response.Error(c, he.Code, fmt.Sprint(he.Message))
		}
	} else {
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
		err = response.ServerError(c, MsgUnexpected)
	}
	if err != nil {
		log.Ctx(c.Request().Context()).Warn().Err(err).Msg("write error response failed")
	}
}
