package performancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/performance"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in performance.ReviewInput, reviewerID string) (performance.Review, error)
	Update(ctx context.Context, id string, in performance.ReviewInput, reviewerID string) (performance.Review, error)
	Get(ctx context.Context, id string) (performance.Review, error)
	List(ctx context.Context, filter performance.Filter) (performance.ListResult, error)
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, id string) (performance.Review, error)
	Acknowledge(ctx context.Context, id, employeeID, comments string) (performance.Review, error)
	Complete(ctx context.Context, id string) (performance.Review, error)
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
	r.Route("/performance/reviews", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf, h.Perms)).Get("/{reviewID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Put("/{reviewID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Delete("/{reviewID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Post("/{reviewID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf, h.Perms)).Post("/{reviewID}/acknowledge", h.handleAcknowledge)
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Post("/{reviewID}/complete", h.handleComplete)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, performance.ErrReviewNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, performance.ErrNotEditable), errors.Is(err, performance.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), reqID)
	case errors.Is(err, performance.ErrNotReviewee):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, performance.ErrScoreOutOfRange), errors.Is(err, performance.ErrEmployeeRequired), errors.Is(err, performance.ErrReviewDateRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_review", err.Error(), reqID)
	default:
		slog.Error(fallbackMsg, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

type reviewPayload struct {
	EmployeeID         string             `json:"employeeId"`
	ReviewDate         string             `json:"reviewDate"`
	Scores             performance.Scores `json:"scores"`
	Achievements       string             `json:"achievements"`
	AreasOfImprovement string             `json:"areasOfImprovement"`
	ReviewerComments   string             `json:"reviewerComments"`
}

func decodeReview(w http.ResponseWriter, r *http.Request) (performance.ReviewInput, bool) {
	reqID := middleware.GetRequestID(r.Context())
	var payload reviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return performance.ReviewInput{}, false
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	date, _ := v.Date("reviewDate", payload.ReviewDate)
	if err := payload.Scores.Validate(); err != nil {
		v.Add("scores", err.Error())
	}
	if v.Reject(w, reqID) {
		return performance.ReviewInput{}, false
	}
	return performance.ReviewInput{
		EmployeeID:         payload.EmployeeID,
		ReviewDate:         date,
		Scores:             payload.Scores,
		Achievements:       payload.Achievements,
		AreasOfImprovement: payload.AreasOfImprovement,
		ReviewerComments:   payload.ReviewerComments,
	}, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	in, ok := decodeReview(w, r)
	if !ok {
		return
	}
	review, err := h.Service.Create(r.Context(), in, user.UserID)
	if err != nil {
		writeError(w, r, err, "review_create_failed", "failed to create review")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionCreate, "performance_review", review.ID, reqID, shared.ClientIP(r), nil, review); err != nil {
		slog.Warn("audit review.create failed", "err", err)
	}
	api.Created(w, review, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "reviewID")
	in, ok := decodeReview(w, r)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "review_update_failed", "failed to update review")
		return
	}
	review, err := h.Service.Update(r.Context(), id, in, user.UserID)
	if err != nil {
		writeError(w, r, err, "review_update_failed", "failed to update review")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionUpdate, "performance_review", id, reqID, shared.ClientIP(r), before, review); err != nil {
		slog.Warn("audit review.update failed", "err", err)
	}
	api.Success(w, review, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 100, 500)
	filter := performance.Filter{EmployeeID: q.Get("employeeId"), Status: performance.Status(q.Get("status")), Limit: page.Limit, Offset: page.Offset}
	if !user.Can(auth.PermPerformanceRead) {
		filter.EmployeeID = user.EmployeeID
	}
	v := shared.NewValidator()
	v.Enum("status", q.Get("status"), []string{
		string(performance.StatusDraft), string(performance.StatusSubmitted),
		string(performance.StatusAcknowledged), string(performance.StatusCompleted),
	}, "is not a review status")
	if v.Reject(w, reqID) {
		return
	}

	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "review_list_failed", "failed to list reviews")
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	review, err := h.Service.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, r, err, "review_get_failed", "failed to load review")
		return
	}
	if review.EmployeeID != user.EmployeeID && !user.Can(auth.PermPerformanceRead) {
		api.Fail(w, http.StatusNotFound, "not_found", performance.ErrReviewNotFound.Error(), reqID)
		return
	}
	api.Success(w, review, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "reviewID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "review_delete_failed", "failed to delete review")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionDelete, "performance_review", id, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit review.delete failed", "err", err)
	}
	api.Deleted(w, reqID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionSubmit, func(ctx context.Context, id string) (performance.Review, error) {
		return h.Service.Submit(ctx, id)
	})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionComplete, func(ctx context.Context, id string) (performance.Review, error) {
		return h.Service.Complete(ctx, id)
	})
}

type acknowledgePayload struct {
	Comments string `json:"comments"`
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload acknowledgePayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}
	h.transition(w, r, audit.ActionAcknowledge, func(ctx context.Context, id string) (performance.Review, error) {
		return h.Service.Acknowledge(ctx, id, user.EmployeeID, payload.Comments)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, string) (performance.Review, error)) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "reviewID")
	review, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "review_transition_failed", "failed to update review status")
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, "performance_review", id, reqID, shared.ClientIP(r), nil, map[string]string{"status": string(review.Status)}); err != nil {
		slog.Warn("audit review transition failed", "action", action, "err", err)
	}
	api.Success(w, review, reqID)
}
