package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/services"

	"github.com/sirupsen/logrus"
)

// SessionView is what the session procedures return to the browser.
type SessionView struct {
	Subject   interface{} `json:"subject"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SessionHandler serves the login and session procedures of one application.
// The storefront instance resolves users, the dashboard instance admins.
type SessionHandler struct {
	rpc      *RPC
	auth     *services.AuthService
	sessions *auth.SessionManager
	resolve  func(ctx context.Context, id string) (interface{}, error)
	logger   logrus.FieldLogger
}

// NewUserSessionHandler serves storefront sessions.
func NewUserSessionHandler(rpc *RPC, authService *services.AuthService, sessions *auth.SessionManager, logger logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{
		rpc:      rpc,
		auth:     authService,
		sessions: sessions,
		resolve: func(ctx context.Context, id string) (interface{}, error) {
			return authService.CurrentUser(ctx, id)
		},
		logger: logger,
	}
}

// NewAdminSessionHandler serves dashboard sessions.
func NewAdminSessionHandler(rpc *RPC, authService *services.AuthService, sessions *auth.SessionManager, logger logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{
		rpc:      rpc,
		auth:     authService,
		sessions: sessions,
		resolve: func(ctx context.Context, id string) (interface{}, error) {
			return authService.CurrentAdmin(ctx, id)
		},
		logger: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Login verifies a customer and sets the storefront session cookie.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req loginRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return h.issue(w, r, user.ID, user)
}

// Signup registers a customer and logs them in.
func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req models.UserCreateRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}

	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		return nil, err
	}
	return h.issue(w, r, user.ID, user)
}

// AdminLogin verifies an operator by username or email and sets the dashboard
// session cookie.
func (h *SessionHandler) AdminLogin(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req adminLoginRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}

	admin, err := h.auth.AdminLogin(r.Context(), req.Identifier, req.Password)
	if err != nil {
		return nil, err
	}
	return h.issue(w, r, admin.ID, admin)
}

// GetSession returns the current subject, or null without a valid session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil, nil
	}

	subj, err := h.resolve(r.Context(), claims.SubjectID)
	if errors.Is(err, models.ErrNotFound) {
		// The account was deleted while the token was still valid
		h.sessions.DeleteSession(w)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return SessionView{Subject: subj, ExpiresAt: claims.ExpiresAt}, nil
}

// CreateSession re-issues the session of the current subject with a fresh
// expiry.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	subjectID, err := subject(r)
	if err != nil {
		return nil, err
	}
	subj, err := h.resolve(r.Context(), subjectID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}
	return h.issue(w, r, subjectID, subj)
}

// DeleteSession logs out this browser.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	h.sessions.DeleteSession(w)
	return nil, nil
}

// DeleteAllSessions logs the subject out of every browser.
func (h *SessionHandler) DeleteAllSessions(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	subjectID, err := subject(r)
	if err != nil {
		return nil, err
	}
	if err := h.auth.LogoutEverywhere(r.Context(), subjectID, h.sessions.Principal()); err != nil {
		return nil, err
	}
	h.sessions.DeleteSession(w)
	return nil, nil
}

func (h *SessionHandler) issue(w http.ResponseWriter, r *http.Request, subjectID string, subj interface{}) (interface{}, error) {
	claims, err := h.sessions.CreateSession(r.Context(), w, subjectID)
	if err != nil {
		return nil, err
	}
	return SessionView{Subject: subj, ExpiresAt: claims.ExpiresAt}, nil
}
