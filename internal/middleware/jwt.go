package middleware // reusable HTTP middleware for the rental API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-rental/internal/access"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/response"
)

// Gate adapts a chain of access gates to Echo. The gates see the
// Authorization header and any principal an earlier middleware attached.
// A denial is written as a 401 or 403 envelope carrying the gate's reason;
// on success the (possibly new) principal is stored on the request context
// so handlers can read it back with Principal.
func Gate(gates ...access.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ar := &access.Request{
				Authorization: req.Header.Get(echo.HeaderAuthorization),
				Principal:     access.FromContext(req.Context()),
			}
			d := access.Evaluate(ar, gates...)
			switch d.Outcome {
			case access.Unauthenticated:
				return response.Unauthorized(c, d.Reason)
			case access.Forbidden:
				return response.Forbidden(c, d.Reason)
			}
			if ar.Principal != nil {
				c.SetRequest(req.WithContext(access.WithPrincipal(req.Context(), ar.Principal)))
			}
			return next(c)
		}
	}
}

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(v access.Verifier) echo.MiddlewareFunc {
	return Gate(access.RequireToken(v))
}

// OptionalAuth identifies the caller when it can and never rejects.
func OptionalAuth(v access.Verifier) echo.MiddlewareFunc {
	return Gate(access.OptionalToken(v))
}

// Principal returns the identity attached by JWTAuth or OptionalAuth, or
// nil for anonymous requests.
func Principal(c echo.Context) *access.Principal {
	return access.FromContext(c.Request().Context())
}

// principalRole is the caller's role, empty when anonymous.
func principalRole(c echo.Context) model.Role {
	if p := Principal(c); p != nil {
		return p.Role
	}
	return ""
}
