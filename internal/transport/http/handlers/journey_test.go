package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/app/server"
	"hrdesk/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

type client struct {
	t    *testing.T
	http *http.Client
	base string
}

func (c client) call(method, path, token string, body any) (int, envelope, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env, raw
}

func (c client) must(method, path, token string, body any, want int, into any) {
	c.t.Helper()
	status, env, raw := c.call(method, path, token, body)
	require.Equal(c.t, want, status, "%s %s: %s", method, path, raw)
	if into != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, into))
	}
}

func (c client) login(email, password string) string {
	var session struct {
		Token string `json:"token"`
	}
	c.must(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password}, http.StatusOK, &session)
	require.NotEmpty(c.t, session.Token)
	return session.Token
}

func TestAttendanceLeavePayrollJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		Environment:        "test",
		DatabaseURL:        dbURL,
		JWTSecret:          "journey-secret",
		TokenTTL:           time.Hour,
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		MigrationsDir:      "../../../../migrations",
		RunMigrations:      true,
		RunSeed:            true,
		SeedAdminName:      "Administrator",
		SeedAdminEmail:     "admin@journey.local",
		SeedAdminPassword:  "ChangeMe123!",
		MaxBodyBytes:       8 << 20,
		RateLimitPerMinute: 1000,
	}
	app, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()
	jobCtx, stopJobs := context.WithCancel(context.Background())
	app.Services.Jobs.Start(jobCtx)
	defer func() {
		stopJobs()
		app.Services.Jobs.Wait()
	}()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	c := client{t: t, http: ts.Client(), base: ts.URL}

	admin := c.login(cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	email := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	var emp struct {
		ID string `json:"id"`
	}
	c.must(http.MethodPost, "/api/v1/employees/", admin, map[string]string{
		"name": "Siti Aminah", "email": email, "password": "Passw0rd!", "role": "Employee",
		"department": "Finance", "position": "Analyst", "salary": "3000", "joinDate": "2024-01-02",
	}, http.StatusCreated, &emp)
	require.NotEmpty(t, emp.ID)

	employee := c.login(email, "Passw0rd!")

	var rec struct {
		Status string `json:"status"`
	}
	c.must(http.MethodPost, "/api/v1/attendance/check-in", employee, map[string]string{}, http.StatusOK, &rec)
	assert.Contains(t, []string{"Present", "Late"}, rec.Status)
	status, _, _ := c.call(http.MethodPost, "/api/v1/attendance/check-in", employee, map[string]string{})
	assert.Equal(t, http.StatusConflict, status)
	c.must(http.MethodPost, "/api/v1/attendance/check-out", employee, map[string]string{}, http.StatusOK, nil)

	start := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	end := time.Now().AddDate(0, 0, 8).Format("2006-01-02")
	var leaveReq struct {
		ID   string `json:"id"`
		Days int    `json:"days"`
	}
	c.must(http.MethodPost, "/api/v1/leave/requests", employee, map[string]string{
		"leaveType": "Annual Leave", "startDate": start, "endDate": end, "reason": "family trip",
	}, http.StatusCreated, &leaveReq)
	assert.Equal(t, 2, leaveReq.Days)

	status, _, _ = c.call(http.MethodPost, "/api/v1/leave/requests/"+leaveReq.ID+"/approve", employee, nil)
	assert.Equal(t, http.StatusForbidden, status)
	c.must(http.MethodPost, "/api/v1/leave/requests/"+leaveReq.ID+"/approve", admin, nil, http.StatusOK, nil)

	var onLeave struct {
		Items []struct {
			Status string `json:"status"`
		} `json:"items"`
	}
	c.must(http.MethodGet, "/api/v1/attendance/?date="+start, employee, nil, http.StatusOK, &onLeave)
	require.Len(t, onLeave.Items, 1)
	assert.Equal(t, "On Leave", onLeave.Items[0].Status)

	month := time.Now().Format("2006-01")
	var payslip struct {
		ID        string `json:"id"`
		NetSalary string `json:"netSalary"`
	}
	c.must(http.MethodPost, "/api/v1/payroll/generate", admin, map[string]any{
		"employeeId": emp.ID, "month": month, "bonus": "200", "manualTax": "100",
	}, http.StatusCreated, &payslip)
	assert.Equal(t, "3100", payslip.NetSalary)

	status, _, _ = c.call(http.MethodPost, "/api/v1/payroll/generate", admin, map[string]any{"employeeId": emp.ID, "month": month})
	assert.Equal(t, http.StatusConflict, status)

	status, _, pdf := c.call(http.MethodGet, "/api/v1/payroll/"+payslip.ID+"/payslip", employee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	var dashboard struct {
		Leave struct {
			Used      int `json:"used"`
			Remaining int `json:"remaining"`
		} `json:"leave"`
		LatestPayslip *struct {
			PayrollID string `json:"payrollId"`
		} `json:"latestPayslip"`
	}
	c.must(http.MethodGet, "/api/v1/reports/dashboard/me", employee, nil, http.StatusOK, &dashboard)
	assert.Equal(t, 14-dashboard.Leave.Used, dashboard.Leave.Remaining)
	require.NotNil(t, dashboard.LatestPayslip)
	assert.Equal(t, payslip.ID, dashboard.LatestPayslip.PayrollID)

	var overview struct {
		TotalEmployees int `json:"totalEmployees"`
	}
	c.must(http.MethodGet, "/api/v1/reports/dashboard/overview", admin, nil, http.StatusOK, &overview)
	assert.GreaterOrEqual(t, overview.TotalEmployees, 1)

	var review struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	c.must(http.MethodPost, "/api/v1/performance/reviews/", admin, map[string]any{
		"employeeId": emp.ID, "reviewDate": time.Now().Format("2006-01-02"),
		"scores": map[string]int{"productivity": 4, "quality": 5, "initiative": 3, "teamwork": 4, "communication": 5},
	}, http.StatusCreated, &review)
	c.must(http.MethodPost, "/api/v1/performance/reviews/"+review.ID+"/submit", admin, nil, http.StatusOK, nil)
	c.must(http.MethodPost, "/api/v1/performance/reviews/"+review.ID+"/acknowledge", employee, map[string]string{"comments": "thanks"}, http.StatusOK, nil)
	c.must(http.MethodPost, "/api/v1/performance/reviews/"+review.ID+"/complete", admin, nil, http.StatusOK, &review)
	assert.Equal(t, "Completed", review.Status)

	var events []map[string]any
	c.must(http.MethodGet, "/api/v1/audit/events?entityType=payroll&entityId="+payslip.ID, admin, nil, http.StatusOK, &events)
	require.NotEmpty(t, events)
	assert.Equal(t, "generate", events[0]["action"])

	assert.Eventually(t, func() bool {
		var runs struct {
			Items []map[string]any `json:"items"`
		}
		c.must(http.MethodGet, "/api/v1/reports/jobs?jobType=payslip_render&status=completed", admin, nil, http.StatusOK, &runs)
		return len(runs.Items) > 0
	}, 5*time.Second, 100*time.Millisecond)
}
