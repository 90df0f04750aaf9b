package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func TestRecoverer(t *testing.T) {
	logger, hook := newTestLogger()
	handler := middleware.RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/x", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Data["panic"])
	assert.NotEmpty(t, hook.LastEntry().Data["request_id"])
}

func TestRequestLogger(t *testing.T) {
	logger, hook := newTestLogger()
	handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.MethodGet, entry.Data["method"])
	assert.Equal(t, "/products", entry.Data["path"])
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "192.0.2.1", entry.Data["remote_ip"], "forwarding headers are ignored without RealIP")
	assert.NotEmpty(t, entry.Data["request_id"])
	assert.Contains(t, entry.Data, "latency_ms")
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", getClientIP(req))
}

func TestCORS(t *testing.T) {
	handler := CORS(DefaultCORSConfig("https://shop.example.com"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/rpc/cart.getCart", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), CSRFHeader)
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/rpc/cart.getCart", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard subdomain", func(t *testing.T) {
		assert.True(t, isOriginAllowed("https://a.example.com", []string{"*.example.com"}))
		assert.False(t, isOriginAllowed("https://example.org", []string{"*.example.com"}))
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

type mockAdmins struct {
	mock.Mock
}

func (m *mockAdmins) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if admin := args.Get(0); admin != nil {
		return admin.(*models.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRequireAdmin(t *testing.T) {
	logger, _ := newTestLogger()

	tests := []struct {
		name       string
		admin      *models.Admin
		err        error
		superAdmin bool
		status     int
	}{
		{"admin passes", &models.Admin{ID: "a-1", Role: models.AdminRoleAdmin}, nil, false, http.StatusOK},
		{"admin denied superadmin procedure", &models.Admin{ID: "a-1", Role: models.AdminRoleAdmin}, nil, true, http.StatusForbidden},
		{"superadmin passes", &models.Admin{ID: "a-1", Role: models.AdminRoleSuperAdmin}, nil, true, http.StatusOK},
		{"deleted admin", nil, models.ErrAdminNotFound, false, http.StatusUnauthorized},
		{"store failure", nil, errors.New("db down"), false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admins := &mockAdmins{}
			admins.On("GetByID", mock.Anything, "a-1").Return(tt.admin, tt.err)

			var loaded *models.Admin
			handler := RequireAdmin(admins, tt.superAdmin, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				loaded = AdminFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/rpc/crud.createAdmin", nil)
			req = req.WithContext(WithClaims(req.Context(), &auth.Claims{SubjectID: "a-1", Principal: models.PrincipalAdmin}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.admin, loaded)
			}
			admins.AssertExpectations(t)
		})
	}
}
