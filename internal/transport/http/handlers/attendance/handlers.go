package attendancehandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/attendance"
	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	CheckIn(ctx context.Context, employeeID string, photo []byte) (attendance.Record, error)
	CheckOut(ctx context.Context, employeeID string, photo []byte) (attendance.Record, error)
	Today(ctx context.Context, employeeID string) (attendance.Record, error)
	SaveManual(ctx context.Context, entry attendance.ManualEntry) (attendance.Record, error)
	Get(ctx context.Context, id string) (attendance.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter attendance.Filter) (attendance.ListResult, error)
	Photo(ctx context.Context, id, kind string) ([]byte, error)
	MonthlyReport(ctx context.Context, month time.Time) (attendance.Report, error)
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
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceSelf, h.Perms)).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceSelf, h.Perms)).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequirePermission(auth.PermAttendanceSelf, h.Perms), middleware.RequireEmployee).Get("/today", h.handleToday)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/report", h.handleReport)
		r.With(middleware.RequirePermission(auth.PermAttendanceManage, h.Perms)).Post("/manual", h.handleManual)
		r.With(middleware.RequireUser).Get("/", h.handleList)
		r.With(middleware.RequireUser).Get("/{recordID}", h.handleGet)
		r.With(middleware.RequireUser).Get("/{recordID}/photo", h.handlePhoto)
		r.With(middleware.RequirePermission(auth.PermAttendanceManage, h.Perms)).Delete("/{recordID}", h.handleDelete)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrRecordNotFound), errors.Is(err, attendance.ErrPhotoNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", err.Error(), reqID)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		api.Fail(w, http.StatusConflict, "already_checked_out", err.Error(), reqID)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusConflict, "not_checked_in", err.Error(), reqID)
	case errors.Is(err, attendance.ErrRecordExists):
		api.Fail(w, http.StatusConflict, "record_exists", err.Error(), reqID)
	case errors.Is(err, attendance.ErrManualStatusNeeded), errors.Is(err, attendance.ErrInvalidStatus), errors.Is(err, attendance.ErrInvalidClock):
		api.Fail(w, http.StatusBadRequest, "invalid_entry", err.Error(), reqID)
	default:
		slog.Error(fallbackMsg, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

type capturePayload struct {
	EmployeeID string `json:"employeeId"`
	Photo      string `json:"photo"`
}

// captureTarget decodes a check-in/out body. Only attendance managers may
// act for another employee.
func captureTarget(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload capturePayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
			return "", nil, false
		}
	}
	target := user.EmployeeID
	if payload.EmployeeID != "" && payload.EmployeeID != user.EmployeeID {
		if !user.Can(auth.PermAttendanceManage) {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot record attendance for another employee", reqID)
			return "", nil, false
		}
		target = payload.EmployeeID
	}
	if target == "" {
		api.Fail(w, http.StatusBadRequest, "no_employee_record", "account has no employee record", reqID)
		return "", nil, false
	}
	var photo []byte
	if payload.Photo != "" {
		raw := payload.Photo
		if _, data, ok := strings.Cut(raw, ","); ok && strings.HasPrefix(raw, "data:") {
			raw = data
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "photo", Reason: "must be base64 encoded"}})
			return "", nil, false
		}
		photo = decoded
	}
	return target, photo, true
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	target, photo, ok := captureTarget(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.CheckIn(r.Context(), target, photo)
	if err != nil {
		writeError(w, r, err, "check_in_failed", "failed to check in")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionCheckIn, "attendance", rec.ID, reqID, shared.ClientIP(r), nil, rec); err != nil {
		slog.Warn("audit attendance.check_in failed", "err", err)
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	target, photo, ok := captureTarget(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.CheckOut(r.Context(), target, photo)
	if err != nil {
		writeError(w, r, err, "check_out_failed", "failed to check out")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionCheckOut, "attendance", rec.ID, reqID, shared.ClientIP(r), nil, rec); err != nil {
		slog.Warn("audit attendance.check_out failed", "err", err)
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	rec, err := h.Service.Today(r.Context(), user.EmployeeID)
	if errors.Is(err, attendance.ErrRecordNotFound) {
		api.Success(w, nil, reqID)
		return
	}
	if err != nil {
		writeError(w, r, err, "today_failed", "failed to load today's attendance")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 100, 500)
	filter := attendance.Filter{EmployeeID: q.Get("employeeId"), Limit: page.Limit, Offset: page.Offset}
	if !user.Can(auth.PermAttendanceRead) {
		filter.EmployeeID = user.EmployeeID
	}

	v := shared.NewValidator()
	if raw := q.Get("month"); raw != "" {
		if month, ok := v.Month("month", raw); ok {
			filter.From, filter.To = month, shared.LastOfMonth(month)
		}
	}
	if raw := q.Get("date"); raw != "" {
		if day, ok := v.Date("date", raw); ok {
			filter.From, filter.To = day, day
		}
	}
	if raw := q.Get("status"); raw != "" {
		status, err := attendance.ParseStatus(raw)
		if err != nil {
			v.Add("status", err.Error())
		}
		filter.Status = status
	}
	if v.Reject(w, reqID) {
		return
	}

	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "attendance_list_failed", "failed to list attendance")
		return
	}
	api.Success(w, out, reqID)
}

// loadVisible fetches a record the caller is allowed to see.
func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (attendance.Record, bool) {
	user, _ := middleware.GetUser(r.Context())
	rec, err := h.Service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, r, err, "attendance_get_failed", "failed to load attendance")
		return attendance.Record{}, false
	}
	if rec.EmployeeID != user.EmployeeID && !user.Can(auth.PermAttendanceRead) {
		api.Fail(w, http.StatusNotFound, "not_found", attendance.ErrRecordNotFound.Error(), middleware.GetRequestID(r.Context()))
		return attendance.Record{}, false
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

func (h *Handler) handlePhoto(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = attendance.PhotoCheckIn
	}
	if kind != attendance.PhotoCheckIn && kind != attendance.PhotoCheckOut {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "kind", Reason: "must be check-in or check-out"}})
		return
	}
	photo, err := h.Service.Photo(r.Context(), rec.ID, kind)
	if err != nil {
		writeError(w, r, err, "photo_failed", "failed to load photo")
		return
	}
	api.Image(w, photo)
}

type manualPayload struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleManual(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload manualPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	entry := attendance.ManualEntry{ID: payload.ID, EmployeeID: payload.EmployeeID, Notes: strings.TrimSpace(payload.Notes)}
	if payload.ID == "" {
		v.Required("employeeId", payload.EmployeeID, "is required")
		entry.Date, _ = v.Date("date", payload.Date)
	} else if payload.Date != "" {
		entry.Date, _ = v.Date("date", payload.Date)
	}
	parseClock := func(field, raw string) *attendance.Clock {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		c, err := attendance.ParseClock(raw)
		if err != nil {
			v.Add(field, "must be HH:MM or HH:MM:SS")
			return nil
		}
		return &c
	}
	entry.CheckIn = parseClock("checkIn", payload.CheckIn)
	entry.CheckOut = parseClock("checkOut", payload.CheckOut)
	if payload.Status != "" {
		status, err := attendance.ParseStatus(payload.Status)
		if err != nil {
			v.Add("status", err.Error())
		}
		entry.Status = status
	}
	if v.Reject(w, reqID) {
		return
	}

	var before any
	if entry.ID != "" {
		if current, err := h.Service.Get(r.Context(), entry.ID); err == nil {
			before = current
		}
	}
	rec, err := h.Service.SaveManual(r.Context(), entry)
	if err != nil {
		writeError(w, r, err, "manual_entry_failed", "failed to save attendance")
		return
	}
	action := audit.ActionCreate
	if before != nil {
		action = audit.ActionUpdate
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, "attendance", rec.ID, reqID, shared.ClientIP(r), before, rec); err != nil {
		slog.Warn("audit attendance.manual failed", "err", err)
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "recordID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "attendance_delete_failed", "failed to delete attendance")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionDelete, "attendance", id, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit attendance.delete failed", "err", err)
	}
	api.Deleted(w, reqID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	month, _ := v.Month("month", r.URL.Query().Get("month"))
	if v.Reject(w, reqID) {
		return
	}
	report, err := h.Service.MonthlyReport(r.Context(), month)
	if err != nil {
		writeError(w, r, err, "report_failed", "failed to build report")
		return
	}

	var buf bytes.Buffer
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		api.Success(w, report, reqID)
	case "csv":
		if err := report.WriteCSV(&buf); err != nil {
			writeError(w, r, err, "report_failed", "failed to write report")
			return
		}
		api.File(w, "text/csv", report.FileName("csv"), buf.Bytes())
	case "xlsx":
		if err := report.WriteXLSX(&buf); err != nil {
			writeError(w, r, err, "report_failed", "failed to write report")
			return
		}
		api.File(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.FileName("xlsx"), buf.Bytes())
	default:
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "format", Reason: "must be json, csv or xlsx"}})
	}
}
