package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/domain/payroll"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Calculate(in payroll.Input) (payroll.Result, error)
	Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.Record, error)
	Get(ctx context.Context, id string) (payroll.Record, error)
	List(ctx context.Context, filter payroll.Filter) (payroll.ListResult, error)
	Delete(ctx context.Context, id string) error
	Payslip(ctx context.Context, id string) ([]byte, error)
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
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/generate", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollSelf, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPayrollSelf, h.Perms)).Get("/{payrollID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermPayrollSelf, h.Perms)).Get("/{payrollID}/payslip", h.handlePayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Delete("/{payrollID}", h.handleDelete)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrPayrollNotFound), errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, payroll.ErrPayrollExists):
		api.Fail(w, http.StatusConflict, "payroll_exists", err.Error(), reqID)
	case errors.Is(err, payroll.ErrNegativeAmount), errors.Is(err, payroll.ErrTooManyDecimals), errors.Is(err, payroll.ErrAmountOutOfRange),
		errors.Is(err, payroll.ErrInvalidMaritalStatus), errors.Is(err, payroll.ErrInvalidMonth):
		api.Fail(w, http.StatusBadRequest, "invalid_payroll", err.Error(), reqID)
	default:
		slog.Error(fallbackMsg, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

func decodeInput(w http.ResponseWriter, reqID string, raw payroll.RawInput) (payroll.Input, bool) {
	in, err := raw.Parse()
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "maritalStatus", Reason: err.Error()}})
		return payroll.Input{}, false
	}
	if err := in.Validate(); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payroll", err.Error(), reqID)
		return payroll.Input{}, false
	}
	return in, true
}

// handleCalculate previews a payroll without storing anything.
func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var raw payroll.RawInput
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	in, ok := decodeInput(w, reqID, raw)
	if !ok {
		return
	}
	res, err := h.Service.Calculate(in)
	if err != nil {
		writeError(w, r, err, "calculate_failed", "failed to calculate payroll")
		return
	}
	api.Success(w, map[string]any{
		"result":    res,
		"breakdown": payroll.Breakdown(in, res),
	}, reqID)
}

type generatePayload struct {
	payroll.RawInput
	EmployeeID string `json:"employeeId"`
	Month      string `json:"month"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	month, _ := v.Month("month", payload.Month)
	if v.Reject(w, reqID) {
		return
	}
	in, ok := decodeInput(w, reqID, payload.RawInput)
	if !ok {
		return
	}

	rec, err := h.Service.Generate(r.Context(), payroll.GenerateRequest{EmployeeID: payload.EmployeeID, Month: month, Input: in})
	if err != nil {
		writeError(w, r, err, "generate_failed", "failed to generate payroll")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionGenerate, "payroll", rec.ID, reqID, shared.ClientIP(r), nil, rec); err != nil {
		slog.Warn("audit payroll.generate failed", "err", err)
	}
	api.Created(w, rec, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 100, 500)
	filter := payroll.Filter{EmployeeID: q.Get("employeeId"), Limit: page.Limit, Offset: page.Offset}
	if !user.Can(auth.PermPayrollRead) {
		filter.EmployeeID = user.EmployeeID
	}
	if raw := q.Get("month"); raw != "" {
		v := shared.NewValidator()
		filter.Month, _ = v.Month("month", raw)
		if v.Reject(w, reqID) {
			return
		}
	}

	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "payroll_list_failed", "failed to list payroll")
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (payroll.Record, bool) {
	user, _ := middleware.GetUser(r.Context())
	rec, err := h.Service.Get(r.Context(), chi.URLParam(r, "payrollID"))
	if err != nil {
		writeError(w, r, err, "payroll_get_failed", "failed to load payroll")
		return payroll.Record{}, false
	}
	if rec.EmployeeID != user.EmployeeID && !user.Can(auth.PermPayrollRead) {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrPayrollNotFound.Error(), middleware.GetRequestID(r.Context()))
		return payroll.Record{}, false
	}
	return rec, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	pdf, err := h.Service.Payslip(r.Context(), rec.ID)
	if err != nil {
		writeError(w, r, err, "payslip_failed", "failed to render payslip")
		return
	}
	api.File(w, "application/pdf", "Payslip_"+rec.PaymentReference+".pdf", pdf)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "payrollID")
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "payroll_delete_failed", "failed to delete payroll")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "payroll_delete_failed", "failed to delete payroll")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionDelete, "payroll", id, reqID, shared.ClientIP(r), before, nil); err != nil {
		slog.Warn("audit payroll.delete failed", "err", err)
	}
	api.Deleted(w, reqID)
}
