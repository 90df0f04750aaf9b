package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"ecommerce-platform/internal/utils"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const (
	// CSRFHeader carries the token in both directions.
	CSRFHeader = "X-CSRF-Token"

	csrfSessionName = "_csrf"
	csrfTokenKey    = "csrf_token"
)

type csrfKey struct{}

// CSRFMiddleware keeps a per-browser token in a signed cookie and requires it
// back on state-changing requests.
type CSRFMiddleware struct {
	store  sessions.Store
	exempt map[string]bool
	logger logrus.FieldLogger
}

// NewCSRFStore returns the signed cookie store used for CSRF tokens.
func NewCSRFStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	return store
}

// NewCSRFMiddleware creates the middleware. exemptPaths skip the check; they
// are the login procedures a fresh browser calls before it holds a token.
func NewCSRFMiddleware(store sessions.Store, logger logrus.FieldLogger, exemptPaths ...string) *CSRFMiddleware {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}
	return &CSRFMiddleware{store: store, exempt: exempt, logger: logger}
}

// EnsureToken makes sure the browser holds a token and echoes it in the
// response header and request context.
func (m *CSRFMiddleware) EnsureToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A cookie that fails to decode yields a fresh session.
		session, _ := m.store.Get(r, csrfSessionName)

		token, ok := session.Values[csrfTokenKey].(string)
		if !ok || token == "" {
			var err error
			token, err = utils.GenerateSecureToken(32)
			if err != nil {
				m.logger.WithError(err).Error("Failed to generate CSRF token")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			session.Values[csrfTokenKey] = token
			if err := session.Save(r, w); err != nil {
				m.logger.WithError(err).Error("Failed to save CSRF session")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		}

		w.Header().Set(CSRFHeader, token)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
	})
}

// Protect rejects unsafe requests whose header token does not match the
// cookie token. It must run after EnsureToken.
func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if m.exempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		expected := CSRFTokenFromContext(r.Context())
		got := r.Header.Get(CSRFHeader)
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
			m.logger.WithFields(logrus.Fields{
				"path":      r.URL.Path,
				"remote_ip": getClientIP(r),
			}).Warn("CSRF token mismatch")
			writeError(w, http.StatusForbidden, "security token mismatch, refresh and try again")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CSRFTokenFromContext returns the token set by EnsureToken.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}
