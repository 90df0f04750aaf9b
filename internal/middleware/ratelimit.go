package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LoginRateLimiter counts login attempts per client IP in a sliding window.
type LoginRateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewLoginRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop to end it.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// DefaultLoginRateLimiter allows 10 attempts per 15 minutes.
func DefaultLoginRateLimiter() *LoginRateLimiter {
	return NewLoginRateLimiter(10, 15*time.Minute)
}

// Allow reports whether ip may attempt another login.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	valid := rl.prune(ip)
	return len(valid) < rl.maxAttempts
}

// RecordAttempt records a login attempt for ip.
func (rl *LoginRateLimiter) RecordAttempt(ip string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.attempts[ip] = append(rl.prune(ip), rl.now())
}

// RetryAfter returns how long ip must wait before its next attempt.
func (rl *LoginRateLimiter) RetryAfter(ip string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	valid := rl.prune(ip)
	if len(valid) < rl.maxAttempts {
		return 0
	}
	// The slot frees up when the oldest attempt that keeps ip at the limit ages out.
	oldest := valid[len(valid)-rl.maxAttempts]
	return oldest.Add(rl.window).Sub(rl.now())
}

// Stop ends the cleanup goroutine.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// prune drops attempts outside the window. Callers hold the mutex.
func (rl *LoginRateLimiter) prune(ip string) []time.Time {
	cutoff := rl.now().Add(-rl.window)
	attempts := rl.attempts[ip]

	valid := attempts[:0]
	for _, attempt := range attempts {
		if attempt.After(cutoff) {
			valid = append(valid, attempt)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

func (rl *LoginRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mutex.Lock()
			for ip := range rl.attempts {
				rl.prune(ip)
			}
			rl.mutex.Unlock()
		}
	}
}

// LoginRateLimit limits POSTs to the wrapped login endpoint per client IP.
func LoginRateLimit(limiter *LoginRateLimiter, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !limiter.Allow(ip) {
				wait := limiter.RetryAfter(ip)
				logger.WithFields(logrus.Fields{"remote_ip": ip, "path": r.URL.Path}).Warn("Login rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "too many login attempts, please try again later")
				return
			}

			limiter.RecordAttempt(ip)
			next.ServeHTTP(w, r)
		})
	}
}
