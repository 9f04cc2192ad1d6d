package client

import (
	"net/url"
	"strings"

	"github.com/iliyamo/property-rental/internal/model"
)

// Guard decides, from local session state only, whether path may be
// entered. A denying guard has already navigated elsewhere.
type Guard func(path string) bool

// RoleGuard admits signed-in users holding one of roles. Signed-out users
// go to the login view with the requested path as return target; users
// with another role go to the unauthorized view.
func RoleGuard(s *Session, nav Navigator, roles ...model.Role) Guard {
	return func(path string) bool {
		if !s.IsAuthenticated() {
			navigateTo(nav, PathLogin+"?returnUrl="+url.QueryEscape(path))
			return false
		}
		if !s.HasAnyRole(roles...) {
			navigateTo(nav, PathUnauthorized)
			return false
		}
		return true
	}
}

func navigateTo(nav Navigator, path string) {
	if nav != nil {
		nav.Navigate(path)
	}
}

// Route scopes a subtree of views to roles.
type Route struct {
	Prefix string
	Roles  []model.Role
}

// Routes is the role-scoped part of the view tree.
var Routes = []Route{
	{Prefix: "/tenant", Roles: []model.Role{model.RoleTenant}},
	{Prefix: "/owner", Roles: []model.Role{model.RoleOwner}},
	{Prefix: "/admin", Roles: []model.Role{model.RoleAdmin}},
}

// PublicPaths need no session.
var PublicPaths = []string{"/", PathLogin, "/register", PathUnauthorized}

// Router applies the route table. Unknown paths fall back to the login view.
type Router struct {
	nav    Navigator
	guards map[string]Guard
}

func NewRouter(s *Session, nav Navigator) *Router {
	r := &Router{nav: nav, guards: make(map[string]Guard, len(Routes))}
	for _, rt := range Routes {
		r.guards[rt.Prefix] = RoleGuard(s, nav, rt.Roles...)
	}
	return r
}

// CanActivate reports whether path may be rendered.
func (r *Router) CanActivate(path string) bool {
	clean := path
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if clean != "/" {
		clean = strings.TrimRight(clean, "/")
	}
	for _, p := range PublicPaths {
		if clean == p {
			return true
		}
	}
	for _, rt := range Routes {
		if clean == rt.Prefix || strings.HasPrefix(clean, rt.Prefix+"/") {
			return r.guards[rt.Prefix](path)
		}
	}
	navigateTo(r.nav, PathLogin)
	return false
}
