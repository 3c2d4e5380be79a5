package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Audit   *audit.Service
}

func NewHandler(service *auth.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireUser).Get("/me", h.handleMe)
		r.With(middleware.RequireUser).Post("/password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	session, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to sign in", reqID)
		return
	}
	if err := h.Audit.Record(r.Context(), session.User.ID, audit.ActionLogin, "user", session.User.ID, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit login failed", "err", err)
	}
	api.Success(w, session, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	me, err := h.Service.Me(r.Context(), user.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "account no longer exists", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "me_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, map[string]any{
		"user":        me,
		"permissions": auth.RolePermissions[me.Role],
	}, reqID)
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Service.ChangePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword)
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "newPassword", Reason: err.Error()}})
		return
	case errors.Is(err, auth.ErrWrongPassword):
		api.Fail(w, http.StatusBadRequest, "wrong_password", err.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "password_failed", "failed to update password", reqID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionPassword, "user", user.UserID, reqID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit change_password failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "password_changed"}, reqID)
}
