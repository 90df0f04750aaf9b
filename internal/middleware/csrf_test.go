package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFHandler(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := newTestLogger()
	csrf := NewCSRFMiddleware(NewCSRFStore("0123456789abcdef0123456789abcdef", false), logger, "/rpc/login")
	return csrf.EnsureToken(csrf.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
}

func TestCSRF_IssuesTokenOnFirstVisit(t *testing.T) {
	handler := newCSRFHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(CSRFHeader))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "_csrf", rec.Result().Cookies()[0].Name)
}

func TestCSRF_Protect(t *testing.T) {
	handler := newCSRFHandler(t)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := first.Result().Cookies()[0]
	token := first.Header().Get(CSRFHeader)

	tests := []struct {
		name   string
		path   string
		cookie bool
		header string
		status int
	}{
		{"matching token", "/rpc/cart.addToCart", true, token, http.StatusOK},
		{"missing header", "/rpc/cart.addToCart", true, "", http.StatusForbidden},
		{"wrong header", "/rpc/cart.addToCart", true, "forged", http.StatusForbidden},
		{"no cookie", "/rpc/cart.addToCart", false, token, http.StatusForbidden},
		{"exempt login", "/rpc/login", false, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.cookie {
				req.AddCookie(cookie)
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCSRF_TokenStableAcrossRequests(t *testing.T) {
	handler := newCSRFHandler(t)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(first.Result().Cookies()[0])
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	assert.Equal(t, first.Header().Get(CSRFHeader), second.Header().Get(CSRFHeader))
	assert.Empty(t, second.Result().Cookies())
}
