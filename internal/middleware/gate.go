package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"ecommerce-platform/internal/auth"
)

// Decision is the outcome of running a path through a RouteGate.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectLanding
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect-login"
	case RedirectLanding:
		return "redirect-landing"
	default:
		return "allow"
	}
}

// RouteTable describes which paths need a session and which are only for
// visitors without one.
type RouteTable struct {
	// ProtectedExact paths require a session when matched exactly.
	ProtectedExact []string
	// ProtectedPrefix paths require a session for the path and anything below it.
	ProtectedPrefix []string
	// PublicOnlyExact paths send authenticated visitors to the landing page.
	PublicOnlyExact []string
	LoginPath       string
	LandingPath     string
}

// StorefrontRoutes is the route table of the customer-facing shop.
func StorefrontRoutes() RouteTable {
	return RouteTable{
		ProtectedExact:  []string{"/profile", "/cart", "/checkout", "/orders", "/wishlist"},
		PublicOnlyExact: []string{"/login", "/signup"},
		LoginPath:       "/login",
		LandingPath:     "/",
	}
}

// AdminRoutes is the route table of the admin dashboard.
func AdminRoutes() RouteTable {
	return RouteTable{
		ProtectedPrefix: []string{"/dashboard"},
		PublicOnlyExact: []string{"/"},
		LoginPath:       "/",
		LandingPath:     "/dashboard",
	}
}

// RouteGate decides page access from a route table and session presence.
type RouteGate struct {
	routes RouteTable
}

func NewRouteGate(routes RouteTable) *RouteGate {
	return &RouteGate{routes: routes}
}

// Decide is pure: the same path and session state always give the same answer.
// The protected check runs first.
func (g *RouteGate) Decide(path string, authenticated bool) Decision {
	if g.isProtected(path) && !authenticated {
		return RedirectLogin
	}
	if g.isPublicOnly(path) && authenticated {
		return RedirectLanding
	}
	return Allow
}

func (g *RouteGate) isProtected(path string) bool {
	for _, p := range g.routes.ProtectedExact {
		if path == p {
			return true
		}
	}
	for _, p := range g.routes.ProtectedPrefix {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

func (g *RouteGate) isPublicOnly(path string) bool {
	for _, p := range g.routes.PublicOnlyExact {
		if path == p {
			return true
		}
	}
	return false
}

// LoginURL is the redirect target for an unauthenticated visit to a
// protected page.
func (g *RouteGate) LoginURL() string {
	q := url.Values{}
	q.Set("login_required", "true")
	return g.routes.LoginPath + "?" + q.Encode()
}

// SessionGetter resolves the session of a request. Implemented by
// auth.SessionManager.
type SessionGetter interface {
	GetSession(r *http.Request) *auth.Claims
}

type claimsKey struct{}

// WithClaims returns a context carrying the request's session claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by Gate, or nil.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// Gate resolves the session once per request, applies the gate decision and
// stores the claims in the request context for downstream handlers.
func Gate(gate *RouteGate, sessions SessionGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := sessions.GetSession(r)

			switch gate.Decide(r.URL.Path, claims != nil) {
			case RedirectLogin:
				http.Redirect(w, r, gate.LoginURL(), http.StatusSeeOther)
				return
			case RedirectLanding:
				http.Redirect(w, r, gate.routes.LandingPath, http.StatusSeeOther)
				return
			}

			if claims != nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}
