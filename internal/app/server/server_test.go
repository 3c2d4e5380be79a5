package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokens "hrdesk/internal/auth"
	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/metrics"
)

func testRouter(t *testing.T, ping func(context.Context) error) (http.Handler, config.Config) {
	t.Helper()
	cfg := config.Config{
		Environment:        "test",
		JWTSecret:          "server-test-secret",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 100,
		MetricsEnabled:     true,
		LogLevel:           slog.LevelError,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	collector := metrics.New()
	auditSvc := audit.New(nil)
	auditSvc.Metrics = collector
	return NewRouter(cfg, Services{Audit: auditSvc, Metrics: collector}, ping), cfg
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	healthy, _ := testRouter(t, func(context.Context) error { return nil })
	rec := get(healthy, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusOK, get(healthy, "/readyz", "").Code)

	down, _ := testRouter(t, func(context.Context) error { return errors.New("refused") })
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "/readyz", "").Code)
}

func TestMetricsCountRequests(t *testing.T) {
	router, _ := testRouter(t, func(context.Context) error { return nil })
	get(router, "/healthz", "")
	get(router, "/healthz", "")

	rec := get(router, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requestsTotal":2`)
}

func TestAPIRequiresToken(t *testing.T) {
	router, cfg := testRouter(t, func(context.Context) error { return nil })

	rec := get(router, "/api/v1/leave/types", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	token, err := tokens.GenerateToken(cfg.JWTSecret, tokens.Claims{UserID: "u1", EmployeeID: "e1", RoleName: auth.RoleEmployee}, time.Hour)
	require.NoError(t, err)
	rec = get(router, "/api/v1/leave/types", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Annual Leave")

	assert.Equal(t, http.StatusForbidden, get(router, "/api/v1/audit/events", token).Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := testRouter(t, func(context.Context) error { return nil })
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/attendance/check-in", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
