package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	day, err := ParseDate(" 2024-03-09 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), day)

	day, err = ParseDate("2024-03-09T23:30:00+08:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), day)

	day, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, day.IsZero())

	_, err = ParseDate("09/03/2024")
	assert.Error(t, err)
}

func TestMonths(t *testing.T) {
	first, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), LastOfMonth(first))

	_, err = ParseMonth("")
	assert.Error(t, err)
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Required("reason", "  ", "is required")
	v.Enum("leaveType", "annual leave", []string{"Annual Leave", "Sick Leave"}, "unknown")
	v.Enum("status", "", []string{"Pending"}, "unknown")
	v.Enum("role", "Intern", []string{"Employee"}, "unknown role")
	_, ok := v.Month("month", "March")
	assert.False(t, ok)
	amount, ok := v.Amount("bonus", "150.50")
	assert.True(t, ok)
	assert.Equal(t, "150.5", amount.String())
	_, ok = v.Amount("salary", "-1")
	assert.False(t, ok)
	start, _ := v.Date("startDate", "2024-03-10")
	end, _ := v.Date("endDate", "2024-03-08")
	v.DateOrder("startDate", start, "endDate", end)

	assert.Equal(t, []ValidationIssue{
		{Field: "endDate", Reason: "must be on or after startDate"},
		{Field: "month", Reason: "must be YYYY-MM"},
		{Field: "reason", Reason: "is required"},
		{Field: "role", Reason: "unknown role"},
		{Field: "salary", Reason: "must not be negative"},
		{Field: "startDate", Reason: "must be on or before endDate"},
	}, v.Issues())

	rec := httptest.NewRecorder()
	require.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Code)

	assert.False(t, NewValidator().Reject(httptest.NewRecorder(), "req-2"))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		reason string
	}{
		{"3500.50", "3500.5", ""},
		{" 0 ", "0", ""},
		{"9999999999.99", "9999999999.99", ""},
		{"1e6", "", "must be a number"},
		{"1E3", "", "must be a number"},
		{"1e20000000", "", "must be a number"},
		{"abc", "", "must be a number"},
		{"-5", "", "must not be negative"},
		{"2600.555", "", "must have at most two decimal places"},
		{"10000000000", "", "is too large"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := NewValidator()
			amount, ok := v.Amount("salary", tt.raw)
			if tt.reason == "" {
				require.True(t, ok)
				assert.Equal(t, tt.want, amount.String())
				assert.False(t, v.HasIssues())
				return
			}
			assert.False(t, ok)
			assert.Equal(t, []ValidationIssue{{Field: "salary", Reason: tt.reason}}, v.Issues())
		})
	}
}

func TestPagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil)
	assert.Equal(t, Pagination{Limit: 200, Offset: 20}, ParsePagination(r, 50, 200))

	r = httptest.NewRequest(http.MethodGet, "/?limit=-3&offset=x", nil)
	assert.Equal(t, Pagination{Limit: 50}, ParsePagination(r, 50, 200))

	rec := httptest.NewRecorder()
	SetTotal(rec, 42)
	assert.Equal(t, "42", rec.Header().Get("X-Total-Count"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:5123"
	assert.Equal(t, "10.0.0.5", ClientIP(r))
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}
