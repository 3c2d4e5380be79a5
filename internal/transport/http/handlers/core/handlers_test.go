package corehandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokens "hrdesk/internal/auth"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/transport/http/middleware"
)

const secret = "handler-test-secret"

type memoryEmployees struct {
	items  map[string]core.Employee
	images map[string][]byte
	seq    int
}

func (m *memoryEmployees) Create(_ context.Context, in core.EmployeeInput, _ string) (string, error) {
	for _, e := range m.items {
		if e.Email == in.Email {
			return "", core.ErrEmailTaken
		}
	}
	m.seq++
	id := fmt.Sprintf("e%d", m.seq)
	m.items[id] = core.Employee{ID: id, Number: m.seq, Name: in.Name, Email: in.Email, Role: in.Role,
		Department: in.Department, Position: in.Position, Salary: in.Salary, JoinDate: in.JoinDate,
		ContactNumber: in.ContactNumber, Address: in.Address}
	return id, nil
}

func (m *memoryEmployees) Get(_ context.Context, id string) (core.Employee, error) {
	e, ok := m.items[id]
	if !ok {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	e.HasProfileImage = len(m.images[id]) > 0
	return e, nil
}

func (m *memoryEmployees) GetByUserID(context.Context, string) (core.Employee, error) {
	return core.Employee{}, core.ErrEmployeeNotFound
}

func (m *memoryEmployees) List(context.Context, core.Filter) (core.ListResult, error) {
	out := core.ListResult{Items: []core.Employee{}}
	for _, e := range m.items {
		out.Items = append(out.Items, e)
	}
	out.Total = len(out.Items)
	return out, nil
}

func (m *memoryEmployees) Update(_ context.Context, id string, in core.EmployeeInput, _ string) error {
	e, ok := m.items[id]
	if !ok {
		return core.ErrEmployeeNotFound
	}
	e.Name, e.Email, e.Department, e.Position, e.Salary = in.Name, in.Email, in.Department, in.Position, in.Salary
	m.items[id] = e
	return nil
}

func (m *memoryEmployees) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return core.ErrEmployeeNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryEmployees) SetProfileImage(_ context.Context, id string, image []byte) error {
	if _, ok := m.items[id]; !ok {
		return core.ErrEmployeeNotFound
	}
	m.images[id] = image
	return nil
}

func (m *memoryEmployees) ProfileImage(_ context.Context, id string) ([]byte, error) {
	if _, ok := m.items[id]; !ok {
		return nil, core.ErrEmployeeNotFound
	}
	return m.images[id], nil
}

func newRouter() (http.Handler, *memoryEmployees) {
	store := &memoryEmployees{items: map[string]core.Employee{
		"e1": {ID: "e1", Number: 1, Name: "Aisyah", Email: "aisyah@example.com", Role: auth.RoleEmployee,
			Department: "IT", Position: "Engineer", Salary: decimal.RequireFromString("4200"), ContactNumber: "012-3456789"},
		"e2": {ID: "e2", Number: 2, Name: "Ben", Email: "ben@example.com", Role: auth.RoleEmployee,
			Department: "Sales", Position: "Rep", Salary: decimal.RequireFromString("3100"), ContactNumber: "019-8765432"},
	}, images: map[string][]byte{}, seq: 2}
	h := NewHandler(core.NewService(store, "Acme Sdn Bhd"), auth.StaticPermissions{}, nil)
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Auth(secret))
	h.RegisterRoutes(r)
	return r, store
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

func TestEmployeeAccessRules(t *testing.T) {
	router, _ := newRouter()
	employee := tokenFor(t, auth.RoleEmployee, "e1")
	hr := tokenFor(t, auth.RoleHRManager, "hr")

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/employees/", "", "").Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/employees/", employee, "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/employees/", hr, "").Code)

	own := do(router, http.MethodGet, "/employees/e1", employee, "")
	require.Equal(t, http.StatusOK, own.Code)
	assert.Contains(t, own.Body.String(), "012-3456789")

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/employees/e2", employee, "").Code)

	other := do(router, http.MethodGet, "/employees/e2", hr, "")
	require.Equal(t, http.StatusOK, other.Code)
	assert.Contains(t, other.Body.String(), "019-8765432")

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/employees/e1/salary", employee, "").Code)
	salary := do(router, http.MethodGet, "/employees/e1/salary", hr, "")
	require.Equal(t, http.StatusOK, salary.Code)
	assert.Contains(t, salary.Body.String(), `"salary":"4200"`)
}

func TestCreateEmployee(t *testing.T) {
	router, store := newRouter()
	hr := tokenFor(t, auth.RoleHRManager, "hr")

	rec := do(router, http.MethodPost, "/employees/", hr, `{"name":"Chen","email":"Chen@Example.com","password":"welcome-123","salary":"3500.50","joinDate":"2024-01-15","role":"Employee"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data core.Employee `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "chen@example.com", body.Data.Email)
	assert.True(t, decimal.RequireFromString("3500.50").Equal(body.Data.Salary))
	assert.Len(t, store.items, 3)

	rec = do(router, http.MethodPost, "/employees/", hr, `{"name":"Chen","email":"chen@example.com","password":"welcome-123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodPost, "/employees/", hr, `{"name":"Dee","email":"dee@example.com","password":"welcome-123","salary":"lots","role":"Boss"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"role"`)
	assert.Contains(t, rec.Body.String(), `"field":"salary"`)
}

func TestDeleteEmployee(t *testing.T) {
	router, store := newRouter()
	admin := tokenFor(t, auth.RoleAdministrator, "e2")

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodDelete, "/employees/e2", admin, "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodDelete, "/employees/e1", admin, "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/employees/e1", admin, "").Code)
	assert.NotContains(t, store.items, "e1")
}

func TestPhotoAndIDCard(t *testing.T) {
	router, store := newRouter()
	employee := tokenFor(t, auth.RoleEmployee, "e1")

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/employees/e1/photo", employee, "").Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodPut, "/employees/e2/photo", employee, `{"image":"AAAA"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPut, "/employees/e1/photo", employee, `{"image":"%%%"}`).Code)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	rec := do(router, http.MethodPut, "/employees/e1/photo", employee, `{"image":"`+base64.StdEncoding.EncodeToString(png)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, store.images["e1"])

	rec = do(router, http.MethodGet, "/employees/e1/photo", employee, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	delete(store.images, "e1")
	rec = do(router, http.MethodGet, "/employees/e1/id-card", employee, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}
