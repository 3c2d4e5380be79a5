package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hrdesk/internal/domain/auth"
)

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(noContent))
	ctx := WithUser(context.Background(), auth.UserContext{UserID: "user-1"})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/generate", nil).WithContext(ctx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	assert.Equal(t, http.StatusNoContent, firstRec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/generate", nil).WithContext(ctx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusTooManyRequests, secondRec.Code)
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(noContent))

	first := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	assert.Equal(t, http.StatusNoContent, firstRec.Code)

	second := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusTooManyRequests, secondRec.Code)
	assert.NotEmpty(t, secondRec.Header().Get("Retry-After"))
	assert.Equal(t, "0", secondRec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(http.HandlerFunc(noContent))
	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests", nil)
		req.RemoteAddr = "192.0.2.20:1111"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, http.StatusNoContent, send())
}

func TestSensitiveMutationRateLimitScope(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(noContent))

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, "read request %d", i+1)
	}

	ctx := WithUser(context.Background(), auth.UserContext{UserID: "hr-1"})
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/l1/approve", nil).WithContext(ctx)
		req.RemoteAddr = "198.51.100.41:9999"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i < 2 {
			assert.Equal(t, http.StatusNoContent, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestSensitiveLoginLimitedPerEmail(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(noContent))
	login := func(ip, email string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = ip + ":1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, login("192.0.2.1", "Admin@Example.com"))
	assert.Equal(t, http.StatusTooManyRequests, login("192.0.2.2", "admin@example.com"))
	assert.Equal(t, http.StatusNoContent, login("192.0.2.3", "other@example.com"))
}

func TestRouteClassification(t *testing.T) {
	cases := []struct {
		method, path string
		want         routeClass
	}{
		{http.MethodPost, "/api/v1/auth/login", routeLogin},
		{http.MethodPost, "/api/v1/attendance/check-in", routeSensitive},
		{http.MethodPost, "/api/v1/leave/requests/l1/reject", routeSensitive},
		{http.MethodDelete, "/api/v1/payroll/p1", routeSensitive},
		{http.MethodPut, "/api/v1/employees/e1/photo", routeSensitive},
		{http.MethodGet, "/api/v1/employees/e1/photo", routeOther},
		{http.MethodPost, "/api/v1/payroll/calculate", routeOther},
		{http.MethodGet, "/api/v1/leave/requests", routeOther},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		assert.Equal(t, tc.want, classify(req), "%s %s", tc.method, tc.path)
	}
}

func TestFixedWindowSweepsExpiredCounters(t *testing.T) {
	fw := newFixedWindow(2, time.Minute, actorKey)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	remaining, _, ok := fw.take("a", start)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	fw.take("b", start)

	_, _, ok = fw.take("c", start.Add(2*time.Minute))
	assert.True(t, ok)
	assert.Len(t, fw.counters, 1)
}

func TestLoginBodyRestored(t *testing.T) {
	var body string
	limited := SensitiveMutationRateLimit(8, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@b.my","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	limited.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, `{"email":"a@b.my","password":"x"}`, body)
}
