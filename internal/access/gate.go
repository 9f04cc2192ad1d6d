package access

import (
	"strings"

	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/utils"
)

// Messages surfaced to clients for each denial reason.
const (
	ReasonNoToken      = "No token provided"
	ReasonInvalidToken = "Invalid or expired token"
	ReasonAuthRequired = "Authentication required"
	ReasonForbidden    = "You do not have permission to access this resource"
)

// Outcome classifies a gate decision.
type Outcome int

const (
	Allow           Outcome = iota
	Unauthenticated         // 401 class
	Forbidden               // 403 class
)

// Decision is what a gate returns: allow, or deny with a reason.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

func allow() Decision { return Decision{Outcome: Allow} }

func deny(o Outcome, reason string) Decision { return Decision{Outcome: o, Reason: reason} }

// Request is the part of an inbound request the gates look at. Gates may
// set Principal.
type Request struct {
	Authorization string
	Principal     *Principal
}

// Gate inspects and possibly annotates a request.
type Gate func(*Request) Decision

// Verifier validates a raw session token.
type Verifier interface {
	Verify(token string) (utils.Claims, error)
}

// Evaluate runs gates in order and returns the first denial, or Allow when
// every gate passes.
func Evaluate(req *Request, gates ...Gate) Decision {
	for _, g := range gates {
		if d := g(req); !d.Allowed() {
			return d
		}
	}
	return allow()
}

// BearerToken extracts the token from an Authorization header value. It
// fails on a missing header, another scheme, or an empty token.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// RequireToken authenticates the request from its bearer token and attaches
// the resulting Principal. The verifier is not consulted when no token is
// present.
func RequireToken(v Verifier) Gate {
	return func(r *Request) Decision {
		raw, ok := BearerToken(r.Authorization)
		if !ok {
			return deny(Unauthenticated, ReasonNoToken)
		}
		claims, err := v.Verify(raw)
		if err != nil {
			return deny(Unauthenticated, ReasonInvalidToken)
		}
		r.Principal = PrincipalFromClaims(claims)
		return allow()
	}
}

// OptionalToken attaches a Principal when a valid token is present and
// lets the request through either way.
func OptionalToken(v Verifier) Gate {
	return func(r *Request) Decision {
		raw, ok := BearerToken(r.Authorization)
		if !ok {
			return allow()
		}
		if claims, err := v.Verify(raw); err == nil {
			r.Principal = PrincipalFromClaims(claims)
		}
		return allow()
	}
}

// RequireRole admits requests whose Principal has one of roles. It expects
// authentication to have happened earlier in the pipeline.
func RequireRole(roles ...model.Role) Gate {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(r *Request) Decision {
		if r.Principal == nil {
			return deny(Unauthenticated, ReasonAuthRequired)
		}
		if !allowed[r.Principal.Role] {
			return deny(Forbidden, ReasonForbidden)
		}
		return allow()
	}
}
