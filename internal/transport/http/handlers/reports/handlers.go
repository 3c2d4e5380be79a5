package reportshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	EmployeeDashboard(ctx context.Context, employeeID string) (reports.EmployeeDashboard, error)
	Overview(ctx context.Context) (reports.Overview, error)
	JobRuns(ctx context.Context, filter reports.JobRunFilter) (reports.JobRunList, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireEmployee).Get("/dashboard/me", h.handleEmployeeDashboard)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/dashboard/overview", h.handleOverview)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Get("/jobs", h.handleJobRuns)
	})
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	d, err := h.Service.EmployeeDashboard(r.Context(), user.EmployeeID)
	if errors.Is(err, reports.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		slog.Error("employee dashboard failed", "employeeId", user.EmployeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", reqID)
		return
	}
	api.Success(w, d, reqID)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	o, err := h.Service.Overview(r.Context())
	if err != nil {
		slog.Error("overview dashboard failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load overview", reqID)
		return
	}
	api.Success(w, o, reqID)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Service.JobRuns(r.Context(), reports.JobRunFilter{
		JobType: r.URL.Query().Get("jobType"),
		Status:  r.URL.Query().Get("status"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		slog.Error("job runs list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", reqID)
		return
	}
	api.Success(w, runs, reqID)
}
