package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RealIP replaces r.RemoteAddr with the client address reported by a trusted
// reverse proxy. Forwarding headers from any other peer are ignored, so
// anything keyed on getClientIP sees the real connection address.
//
// X-Forwarded-For is walked from the right and the first hop that is not
// itself a trusted proxy wins. X-Real-IP is used when X-Forwarded-For is
// absent.
func RealIP(trusted []*net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer := net.ParseIP(getClientIP(r)); peer != nil && isTrusted(peer, trusted) {
				if ip := forwardedClient(r, trusted); ip != "" {
					r.RemoteAddr = net.JoinHostPort(ip, "0")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trusted []*net.IPNet) string {
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				return ""
			}
			if !isTrusted(ip, trusted) {
				return ip.String()
			}
		}
		return ""
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return ""
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
