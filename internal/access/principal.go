// Package access holds the request gates that decide whether an inbound
// request may proceed: bearer-token authentication, its optional variant,
// and role authorization. Gates are transport neutral; the HTTP layer
// translates a denial into a response.
package access

import (
	"context"

	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/utils"
)

// Principal is the authenticated identity attached to one request.
type Principal struct {
	UserID uint64     `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// PrincipalFromClaims converts verified token claims into a Principal.
func PrincipalFromClaims(c utils.Claims) *Principal {
	return &Principal{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the Principal stored in ctx, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
