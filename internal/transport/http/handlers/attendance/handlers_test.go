package attendancehandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokens "hrdesk/internal/auth"
	"hrdesk/internal/domain/attendance"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/middleware"
)

const secret = "handler-test-secret"

type stubService struct {
	checkedIn   []string
	photos      [][]byte
	checkInErr  error
	manual      []attendance.ManualEntry
	listFilter  attendance.Filter
	records     map[string]attendance.Record
	reportMonth time.Time
}

func (s *stubService) CheckIn(_ context.Context, employeeID string, photo []byte) (attendance.Record, error) {
	if s.checkInErr != nil {
		return attendance.Record{}, s.checkInErr
	}
	s.checkedIn = append(s.checkedIn, employeeID)
	s.photos = append(s.photos, photo)
	return attendance.Record{ID: "r1", EmployeeID: employeeID, Status: attendance.StatusPresent}, nil
}

func (s *stubService) CheckOut(context.Context, string, []byte) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrNotCheckedIn
}

func (s *stubService) Today(context.Context, string) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (s *stubService) SaveManual(_ context.Context, entry attendance.ManualEntry) (attendance.Record, error) {
	s.manual = append(s.manual, entry)
	return attendance.Record{ID: "m1", EmployeeID: entry.EmployeeID}, nil
}

func (s *stubService) Get(_ context.Context, id string) (attendance.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (s *stubService) Delete(context.Context, string) error { return nil }

func (s *stubService) List(_ context.Context, filter attendance.Filter) (attendance.ListResult, error) {
	s.listFilter = filter
	return attendance.ListResult{Items: []attendance.Record{}}, nil
}

func (s *stubService) Photo(context.Context, string, string) ([]byte, error) {
	return []byte("\xff\xd8\xff\xe0jpeg"), nil
}

func (s *stubService) MonthlyReport(_ context.Context, month time.Time) (attendance.Report, error) {
	s.reportMonth = month
	return attendance.BuildReport(month, nil), nil
}

func newRouter() (http.Handler, *stubService) {
	svc := &stubService{records: map[string]attendance.Record{
		"own":   {ID: "own", EmployeeID: "e1"},
		"other": {ID: "other", EmployeeID: "e2"},
	}}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Auth(secret))
	NewHandler(svc, auth.StaticPermissions{}, nil).RegisterRoutes(r)
	return r, svc
}

func tokenFor(t *testing.T, role, employeeID string) string {
	t.Helper()
	token, err := tokens.GenerateToken(secret, tokens.Claims{UserID: "u-" + employeeID, EmployeeID: employeeID, RoleName: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCheckIn(t *testing.T) {
	router, svc := newRouter()
	employee := tokenFor(t, auth.RoleEmployee, "e1")
	admin := tokenFor(t, auth.RoleAdministrator, "a1")

	photo := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	rec := do(router, http.MethodPost, "/attendance/check-in", employee, `{"photo":"data:image/jpeg;base64,`+photo+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"e1"}, svc.checkedIn)
	assert.Equal(t, []byte("jpeg-bytes"), svc.photos[0])

	rec = do(router, http.MethodPost, "/attendance/check-in", employee, `{"employeeId":"e2"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPost, "/attendance/check-in", admin, `{"employeeId":"e2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e2", svc.checkedIn[1])

	rec = do(router, http.MethodPost, "/attendance/check-in", employee, `{"photo":"***"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.checkInErr = attendance.ErrAlreadyCheckedIn
	rec = do(router, http.MethodPost, "/attendance/check-in", employee, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_checked_in")
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	router, _ := newRouter()
	rec := do(router, http.MethodPost, "/attendance/check-out", tokenFor(t, auth.RoleEmployee, "e1"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_checked_in")
}

func TestTodayWithoutRecord(t *testing.T) {
	router, _ := newRouter()
	rec := do(router, http.MethodGet, "/attendance/today", tokenFor(t, auth.RoleEmployee, "e1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"data"`)
}

func TestListScopesEmployees(t *testing.T) {
	router, svc := newRouter()

	rec := do(router, http.MethodGet, "/attendance/?employeeId=e2&month=2024-03", tokenFor(t, auth.RoleEmployee, "e1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e1", svc.listFilter.EmployeeID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.listFilter.From)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), svc.listFilter.To)

	rec = do(router, http.MethodGet, "/attendance/?employeeId=e2&status=Late", tokenFor(t, auth.RoleHRManager, "h1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e2", svc.listFilter.EmployeeID)
	assert.Equal(t, attendance.StatusLate, svc.listFilter.Status)

	rec = do(router, http.MethodGet, "/attendance/?status=Sleeping", tokenFor(t, auth.RoleHRManager, "h1"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordVisibility(t *testing.T) {
	router, _ := newRouter()
	employee := tokenFor(t, auth.RoleEmployee, "e1")

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/attendance/own", employee, "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/attendance/other", employee, "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/attendance/other", tokenFor(t, auth.RoleHRManager, "h1"), "").Code)

	rec := do(router, http.MethodGet, "/attendance/own/photo?kind=check-out", employee, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/attendance/own/photo?kind=selfie", employee, "").Code)
}

func TestManualEntryIsAdminOnly(t *testing.T) {
	router, svc := newRouter()
	body := `{"employeeId":"e1","date":"2024-03-04","checkIn":"08:45","checkOut":"17:30","notes":" forgot badge "}`

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodPost, "/attendance/manual", tokenFor(t, auth.RoleHRManager, "h1"), body).Code)

	rec := do(router, http.MethodPost, "/attendance/manual", tokenFor(t, auth.RoleAdministrator, "a1"), body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.manual, 1)
	entry := svc.manual[0]
	assert.Equal(t, "e1", entry.EmployeeID)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, "08:45:00", entry.CheckIn.String())
	assert.Equal(t, "forgot badge", entry.Notes)

	rec = do(router, http.MethodPost, "/attendance/manual", tokenFor(t, auth.RoleAdministrator, "a1"), `{"employeeId":"e1","date":"2024-03-04","checkIn":"25:99"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"checkIn"`)
}

func TestReportFormats(t *testing.T) {
	router, svc := newRouter()
	hr := tokenFor(t, auth.RoleHRManager, "h1")

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/attendance/report?month=2024-03", tokenFor(t, auth.RoleEmployee, "e1"), "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/attendance/report?month=March", hr, "").Code)

	rec := do(router, http.MethodGet, "/attendance/report?month=2024-03&format=csv", hr, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.reportMonth)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Attendance_Report_202403.csv")
	assert.Contains(t, rec.Body.String(), "Employee,Total Days,Present,Late,Absent,Average Check-In Time")

	rec = do(router, http.MethodGet, "/attendance/report?month=2024-03&format=xlsx", hr, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/attendance/report?month=2024-03&format=pdf", hr, "").Code)
}
