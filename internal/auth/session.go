package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/models"

	"github.com/sirupsen/logrus"
)

// RevocationChecker reports the "logged out everywhere" cut-off for a subject.
type RevocationChecker interface {
	RevokedBefore(ctx context.Context, subjectID string, principal models.Principal) (time.Time, bool, error)
}

// SessionOptions parametrise one session namespace.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Principal  models.Principal
	Secure     bool
}

// SessionManager binds tokens for one principal kind to one cookie. The
// storefront and the admin dashboard each run their own instance.
type SessionManager struct {
	codec       *Codec
	opts        SessionOptions
	revocations RevocationChecker
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewSessionManager(codec *Codec, opts SessionOptions, logger logrus.FieldLogger) *SessionManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionManager{
		codec:  codec,
		opts:   opts,
		logger: logger.WithField("session", opts.CookieName),
		now:    time.Now,
	}
}

// NewUserSessionManager builds the storefront session namespace from cfg.
func NewUserSessionManager(codec *Codec, cfg *config.Config, logger logrus.FieldLogger) *SessionManager {
	return NewSessionManager(codec, SessionOptions{
		CookieName: cfg.Session.UserCookieName,
		TTL:        cfg.Session.UserTTL,
		Principal:  models.PrincipalUser,
		Secure:     cfg.Server.SecureCookies,
	}, logger)
}

// NewAdminSessionManager builds the dashboard session namespace from cfg.
func NewAdminSessionManager(codec *Codec, cfg *config.Config, logger logrus.FieldLogger) *SessionManager {
	return NewSessionManager(codec, SessionOptions{
		CookieName: cfg.Session.AdminCookieName,
		TTL:        cfg.Session.AdminTTL,
		Principal:  models.PrincipalAdmin,
		Secure:     cfg.Server.SecureCookies,
	}, logger)
}

// WithRevocations enables the revocation check on GetSession.
func (m *SessionManager) WithRevocations(rc RevocationChecker) *SessionManager {
	m.revocations = rc
	return m
}

func (m *SessionManager) CookieName() string          { return m.opts.CookieName }
func (m *SessionManager) Principal() models.Principal { return m.opts.Principal }

// CreateSession issues a token for subjectID and sets it as the session cookie.
// A token is always issued strictly after the subject's revocation cut-off, so
// a login right after "log out everywhere" stays valid.
func (m *SessionManager) CreateSession(ctx context.Context, w http.ResponseWriter, subjectID string) (*Claims, error) {
	now := m.now().UTC().Truncate(time.Millisecond)
	if m.revocations != nil {
		cutoff, ok, err := m.revocations.RevokedBefore(ctx, subjectID, m.opts.Principal)
		if err != nil {
			return nil, fmt.Errorf("failed to check session revocation: %w", err)
		}
		if ok && !now.After(cutoff) {
			now = cutoff.Add(time.Millisecond)
		}
	}

	claims := Claims{
		SubjectID: subjectID,
		Principal: m.opts.Principal,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.opts.TTL),
	}

	token, err := m.codec.Encrypt(claims)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return &claims, nil
}

// GetSession returns the verified claims of the request's session cookie, or
// nil if there is no valid session for this principal.
func (m *SessionManager) GetSession(r *http.Request) *Claims {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return nil
	}

	claims := m.codec.Decrypt(cookie.Value)
	if claims == nil {
		return nil
	}

	if claims.Principal != m.opts.Principal {
		m.logger.WithField("principal", claims.Principal).Warn("Session token issued for another principal")
		return nil
	}

	if m.revoked(r.Context(), claims) {
		return nil
	}
	return claims
}

func (m *SessionManager) revoked(ctx context.Context, claims *Claims) bool {
	if m.revocations == nil {
		return false
	}
	cutoff, ok, err := m.revocations.RevokedBefore(ctx, claims.SubjectID, m.opts.Principal)
	if err != nil {
		m.logger.WithError(err).Error("Failed to check session revocation")
		return true
	}
	return ok && !claims.IssuedAt.After(cutoff)
}

// DeleteSession expires the session cookie.
func (m *SessionManager) DeleteSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// RevocationCutoff is the instant stored by "log out everywhere". Tokens carry
// millisecond issue times, so the cut-off is truncated to the same precision.
func RevocationCutoff(now time.Time) time.Time {
	return now.UTC().Truncate(time.Millisecond)
}
