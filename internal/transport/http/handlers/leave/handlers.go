package leavehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/leave"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Request(ctx context.Context, req leave.NewRequest) (leave.Request, error)
	Get(ctx context.Context, id string) (leave.Request, error)
	List(ctx context.Context, filter leave.Filter) (leave.ListResult, error)
	Approve(ctx context.Context, id, approverID string) (leave.Request, error)
	Reject(ctx context.Context, id, approverID string) (leave.Request, error)
	Delete(ctx context.Context, id, callerEmployeeID string, canApprove bool) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/types", h.handleTypes)
		r.With(middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)).Post("/requests", h.handleCreate)
		r.With(middleware.RequireUser).Get("/requests", h.handleList)
		r.With(middleware.RequireUser).Get("/requests/{requestID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequireUser).Delete("/requests/{requestID}", h.handleDelete)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, leave.ErrRequestNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, leave.ErrNotPending):
		api.Fail(w, http.StatusConflict, "not_pending", err.Error(), reqID)
	case errors.Is(err, leave.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, leave.ErrReasonRequired), errors.Is(err, leave.ErrInvalidType), errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), reqID)
	default:
		slog.Error(fallbackMsg, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

func (h *Handler) handleTypes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, leave.Types, middleware.GetRequestID(r.Context()))
}

type requestPayload struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if user.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "no_employee_record", "account has no employee record", reqID)
		return
	}
	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("leaveType", payload.LeaveType, "is required")
	v.Enum("leaveType", payload.LeaveType, leave.Types, "is not a known leave type")
	v.Required("reason", payload.Reason, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return
	}

	req, err := h.Service.Request(r.Context(), leave.NewRequest{
		EmployeeID: user.EmployeeID,
		Type:       payload.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Reason:     payload.Reason,
	})
	if err != nil {
		writeError(w, r, err, "leave_request_failed", "failed to submit leave request")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionCreate, "leave", req.ID, reqID, shared.ClientIP(r), nil, req); err != nil {
		slog.Warn("audit leave.create failed", "err", err)
	}
	api.Created(w, req, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 100, 500)
	filter := leave.Filter{EmployeeID: q.Get("employeeId"), Status: leave.Status(q.Get("status")), Limit: page.Limit, Offset: page.Offset}
	if !user.Can(auth.PermLeaveRead) {
		filter.EmployeeID = user.EmployeeID
	}

	v := shared.NewValidator()
	v.Enum("status", q.Get("status"), []string{string(leave.StatusPending), string(leave.StatusApproved), string(leave.StatusRejected)}, "must be Pending, Approved or Rejected")
	if v.Reject(w, reqID) {
		return
	}

	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "leave_list_failed", "failed to list leave requests")
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, r, err, "leave_get_failed", "failed to load leave request")
		return
	}
	if req.EmployeeID != user.EmployeeID && !user.Can(auth.PermLeaveRead) {
		api.Fail(w, http.StatusNotFound, "not_found", leave.ErrRequestNotFound.Error(), reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, audit.ActionApprove, h.Service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, audit.ActionReject, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, string, string) (leave.Request, error)) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "requestID")
	req, err := apply(r.Context(), id, user.UserID)
	if err != nil {
		writeError(w, r, err, "leave_decision_failed", "failed to record leave decision")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, "leave", id, reqID, shared.ClientIP(r), map[string]string{"status": string(leave.StatusPending)}, req); err != nil {
		slog.Warn("audit leave decision failed", "action", action, "err", err)
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "requestID")
	if err := h.Service.Delete(r.Context(), id, user.EmployeeID, user.Can(auth.PermLeaveApprove)); err != nil {
		writeError(w, r, err, "leave_delete_failed", "failed to withdraw leave request")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionDelete, "leave", id, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit leave.delete failed", "err", err)
	}
	api.Deleted(w, reqID)
}
