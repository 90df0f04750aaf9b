package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCIDR(t *testing.T, cidr string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(cidr)
	require.NoError(t, err)
	return n
}

func TestRealIP(t *testing.T) {
	trusted := []*net.IPNet{mustCIDR(t, "10.0.0.0/8")}

	var seen string
	handler := RealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getClientIP(r)
	}))

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"untrusted peer keeps its address", "192.0.2.1:5555", "203.0.113.9", "198.51.100.2", "192.0.2.1"},
		{"trusted proxy forwards the client", "10.0.0.1:5555", "203.0.113.9", "", "203.0.113.9"},
		{"rightmost untrusted hop wins", "10.0.0.1:5555", "1.2.3.4, 203.0.113.9, 10.0.0.7", "", "203.0.113.9"},
		{"X-Real-IP without X-Forwarded-For", "10.0.0.1:5555", "", "198.51.100.2", "198.51.100.2"},
		{"malformed hop is not believed", "10.0.0.1:5555", "203.0.113.9, not-an-ip", "", "10.0.0.1"},
		{"only trusted hops", "10.0.0.1:5555", "10.0.0.2", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestRealIP_NoTrustedProxies(t *testing.T) {
	var seen string
	handler := RealIP(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.0.0.1:5555", seen)
}

func TestLoginRateLimit_SpoofedForwardingHeadersShareTheLimit(t *testing.T) {
	clock := time.Now()
	rl := newTestLimiter(3, time.Minute, &clock)
	defer rl.Stop()
	logger, _ := newTestLogger()

	handler := RealIP([]*net.IPNet{mustCIDR(t, "10.0.0.0/8")})(
		LoginRateLimit(rl, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	send := func(remote string, i int) int {
		req := httptest.NewRequest(http.MethodPost, "/rpc/login", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	blocked := 0
	for i := 1; i <= 20; i++ {
		if send("192.0.2.10:4000", i) == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Equal(t, 17, blocked, "a rotating header from an untrusted peer does not reset the count")

	for i := 1; i <= 4; i++ {
		assert.Equal(t, http.StatusOK, send("10.0.0.1:4000", i), "clients behind a trusted proxy are limited separately")
	}
}
