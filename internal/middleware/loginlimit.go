package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = time.Minute
	loginPrunePeriod   = 5 * time.Minute
)

// LoginRateLimiter throttles platform sign-in attempts per client IP. It is
// in-memory and per-process: an attacker rotating across instances gets a
// fresh budget on each, which is acceptable for the owner login form. The
// portal password form, the actual shared-link oracle, uses the Redis-backed
// attempt limiter instead.
type LoginRateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*loginWindow
	lastPrune time.Time
}

type loginWindow struct {
	count    int
	openedAt time.Time
}

func NewLoginRateLimiter() *LoginRateLimiter {
	return &LoginRateLimiter{
		windows:   make(map[string]*loginWindow),
		lastPrune: time.Now(),
	}
}

// take consumes one attempt for ip. When the budget is spent it reports the
// time the current window closes so the response can carry Retry-After.
func (l *LoginRateLimiter) take(ip string) (allowed bool, retryAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.prune(now)

	w := l.windows[ip]
	if w == nil || now.Sub(w.openedAt) > loginAttemptWindow {
		l.windows[ip] = &loginWindow{count: 1, openedAt: now}
		return true, time.Time{}
	}

	if w.count >= loginAttemptLimit {
		return false, w.openedAt.Add(loginAttemptWindow)
	}
	w.count++
	return true, time.Time{}
}

func (l *LoginRateLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < loginPrunePeriod {
		return
	}
	l.lastPrune = now

	for ip, w := range l.windows {
		if now.Sub(w.openedAt) > loginAttemptWindow {
			delete(l.windows, ip)
		}
	}
}

func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			ip = strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		}

		allowed, retryAt := l.take(ip)
		if !allowed {
			wait := time.Until(retryAt)
			if wait < time.Second {
				wait = time.Second
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many login attempts. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
