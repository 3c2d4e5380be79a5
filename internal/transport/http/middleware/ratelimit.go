package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/shared"
)

// loginPeekBytes bounds how much of a login body is read to find the email.
const loginPeekBytes = 16 << 10

type keyFunc func(r *http.Request) string

type counter struct {
	hits  int
	reset time.Time
}

// fixedWindow counts hits per key in windows that start at the first hit.
type fixedWindow struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	key      keyFunc
	counters map[string]*counter
	swept    time.Time
}

func newFixedWindow(limit int, window time.Duration, key keyFunc) *fixedWindow {
	return &fixedWindow{limit: limit, window: window, key: key, counters: map[string]*counter{}}
}

// take records one hit. Expired counters are swept at most once a window so
// the map does not grow with every client seen since start-up.
func (fw *fixedWindow) take(key string, now time.Time) (remaining int, resetIn time.Duration, ok bool) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if now.Sub(fw.swept) >= fw.window {
		for k, c := range fw.counters {
			if now.After(c.reset) {
				delete(fw.counters, k)
			}
		}
		fw.swept = now
	}
	c, found := fw.counters[key]
	if !found || now.After(c.reset) {
		c = &counter{reset: now.Add(fw.window)}
		fw.counters[key] = c
	}
	c.hits++
	return max(fw.limit-c.hits, 0), c.reset.Sub(now), c.hits <= fw.limit
}

// allow applies the window to r and writes the 429 itself when over limit.
func (fw *fixedWindow) allow(w http.ResponseWriter, r *http.Request) bool {
	if fw.limit <= 0 {
		return true
	}
	key := fw.key(r)
	if key == "" {
		key = shared.ClientIP(r)
	}
	remaining, resetIn, ok := fw.take(key, time.Now())
	resetSec := max(int(resetIn.Round(time.Second).Seconds()), 1)

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(fw.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if ok {
		return true
	}
	h.Set("Retry-After", strconv.Itoa(resetSec))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", fw.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func limitWith(windows ...*fixedWindow) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, fw := range windows {
				if !fw.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit caps every request per signed-in user, or per client IP for
// anonymous callers.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return limitWith(newFixedWindow(limit, window, actorKey))
}

type routeClass int

const (
	routeOther routeClass = iota
	routeLogin
	routeSensitive
)

// sensitiveRoutes are mutations that move money, touch another employee's
// record or upload photos. Patterns are relative to /api/v1.
var sensitiveRoutes = []struct {
	method  string
	pattern string
	class   routeClass
}{
	{http.MethodPost, "/auth/login", routeLogin},
	{http.MethodPost, "/auth/password", routeLogin},
	{http.MethodPost, "/attendance/check-in", routeSensitive},
	{http.MethodPost, "/attendance/check-out", routeSensitive},
	{http.MethodPost, "/attendance/manual", routeSensitive},
	{http.MethodPost, "/payroll/generate", routeSensitive},
	{http.MethodDelete, "/payroll/*", routeSensitive},
	{http.MethodPost, "/leave/requests/*/approve", routeSensitive},
	{http.MethodPost, "/leave/requests/*/reject", routeSensitive},
	{http.MethodDelete, "/employees/*", routeSensitive},
	{http.MethodPut, "/employees/*/photo", routeSensitive},
}

func classify(r *http.Request) routeClass {
	p := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/api/v1")
	for _, route := range sensitiveRoutes {
		if r.Method != route.method {
			continue
		}
		if ok, _ := path.Match(route.pattern, p); ok {
			return route.class
		}
	}
	return routeOther
}

// SensitiveMutationRateLimit adds tighter windows on top of RateLimit:
// logins get a quarter of the base limit per IP and per email, other
// sensitive mutations half of it per actor.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit, mutationLimit := max(baseLimit/4, 1), max(baseLimit/2, 1)
	login := limitWith(
		newFixedWindow(loginLimit, window, shared.ClientIP),
		newFixedWindow(loginLimit, window, loginEmailKey),
	)
	mutation := limitWith(newFixedWindow(mutationLimit, window, actorKey))

	return func(next http.Handler) http.Handler {
		guardedLogin, guardedMutation := login(next), mutation(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classify(r) {
			case routeLogin:
				guardedLogin.ServeHTTP(w, r)
			case routeSensitive:
				guardedMutation.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func actorKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return shared.ClientIP(r)
}

// loginEmailKey reads the email from a JSON login body and restores the body
// for the handler. Anything unreadable falls back to the client IP.
func loginEmailKey(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return shared.ClientIP(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, loginPeekBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	if err != nil {
		return shared.ClientIP(r)
	}
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil || strings.TrimSpace(payload.Email) == "" {
		return shared.ClientIP(r)
	}
	return "email:" + strings.ToLower(strings.TrimSpace(payload.Email))
}
