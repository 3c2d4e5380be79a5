package corehandler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequireUser).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{employeeID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Get("/{employeeID}/salary", h.handleSalary)
		r.With(middleware.RequireUser).Get("/{employeeID}/photo", h.handleGetPhoto)
		r.With(middleware.RequireUser).Put("/{employeeID}/photo", h.handleSetPhoto)
		r.With(middleware.RequireUser).Get("/{employeeID}/id-card", h.handleIDCard)
	})
}

type employeePayload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	Position      string `json:"position"`
	Salary        string `json:"salary"`
	JoinDate      string `json:"joinDate"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

func (p employeePayload) input(v *shared.Validator) core.EmployeeInput {
	in := core.EmployeeInput{
		Name:          p.Name,
		Email:         p.Email,
		Password:      p.Password,
		Role:          p.Role,
		Department:    p.Department,
		Position:      p.Position,
		ContactNumber: p.ContactNumber,
		Address:       p.Address,
	}
	v.Enum("role", p.Role, auth.Roles, "must be one of Employee, HRManager, Administrator")
	if raw := strings.TrimSpace(p.Salary); raw != "" {
		in.Salary, _ = v.Amount("salary", raw)
	}
	if raw := strings.TrimSpace(p.JoinDate); raw != "" {
		in.JoinDate, _ = v.Date("joinDate", raw)
	}
	return in
}

// canAccess lets employees reach their own record and managers any record.
func canAccess(user auth.UserContext, employeeID, perm string) bool {
	return user.Can(perm) || (user.EmployeeID != "" && user.EmployeeID == employeeID)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, core.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "email_taken", err.Error(), reqID)
	case errors.Is(err, core.ErrNameRequired):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "name", Reason: err.Error()}})
	case errors.Is(err, core.ErrEmailRequired):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "email", Reason: "must be a valid email address"}})
	case errors.Is(err, core.ErrInvalidRole):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "role", Reason: err.Error()}})
	case errors.Is(err, core.ErrNegativeSalary):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "salary", Reason: err.Error()}})
	case errors.Is(err, core.ErrPasswordRequired):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "password", Reason: err.Error()}})
	case errors.Is(err, core.ErrProfileImageEmpty):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "image", Reason: err.Error()}})
	default:
		slog.Error(fallbackMsg, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	out, err := h.Service.List(r.Context(), core.Filter{
		Search:     r.URL.Query().Get("q"),
		Department: r.URL.Query().Get("department"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		writeError(w, r, err, "employee_list_failed", "failed to list employees")
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	in := payload.input(v)
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Service.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionCreate, "employee", emp.ID, reqID, shared.ClientIP(r), nil, emp); err != nil {
		slog.Warn("audit employee.create failed", "err", err)
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "employeeID")
	if !canAccess(user, id, auth.PermEmployeesRead) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "employee_get_failed", "failed to load employee")
		return
	}
	core.FilterEmployeeFields(&emp, user)
	api.Success(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "employeeID")
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	in := payload.input(v)
	if v.Reject(w, reqID) {
		return
	}

	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	emp, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionUpdate, "employee", id, reqID, shared.ClientIP(r), before, emp); err != nil {
		slog.Warn("audit employee.update failed", "err", err)
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "employeeID")
	if id == user.EmployeeID {
		api.Fail(w, http.StatusBadRequest, "self_delete", "cannot delete your own account", reqID)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionDelete, "employee", id, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit employee.delete failed", "err", err)
	}
	api.Deleted(w, reqID)
}

func (h *Handler) handleSalary(w http.ResponseWriter, r *http.Request) {
	info, err := h.Service.SalaryLookup(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err, "salary_lookup_failed", "failed to load salary")
		return
	}
	api.Success(w, info, middleware.GetRequestID(r.Context()))
}

type photoPayload struct {
	Image string `json:"image"`
}

func (h *Handler) handleSetPhoto(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "employeeID")
	if !canAccess(user, id, auth.PermEmployeesWrite) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}
	var payload photoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	image, err := base64.StdEncoding.DecodeString(payload.Image)
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "image", Reason: "must be base64 encoded"}})
		return
	}
	if err := h.Service.SetProfileImage(r.Context(), id, image); err != nil {
		writeError(w, r, err, "photo_update_failed", "failed to store photo")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionUpdate, "employee_photo", id, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit employee.photo failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "updated"}, reqID)
}

func (h *Handler) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	image, err := h.Service.ProfileImage(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err, "photo_failed", "failed to load photo")
		return
	}
	if len(image) == 0 {
		api.Fail(w, http.StatusNotFound, "not_found", "no profile image", reqID)
		return
	}
	api.Image(w, image)
}

func (h *Handler) handleIDCard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "employeeID")
	if !canAccess(user, id, auth.PermEmployeesRead) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}
	pdf, err := h.Service.IDCard(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "id_card_failed", "failed to render id card")
		return
	}
	api.File(w, "application/pdf", "IDCard_"+id+".pdf", pdf)
}
