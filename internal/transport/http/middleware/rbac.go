package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hrdesk/internal/transport/http/api"
)

// PermissionStore answers whether a role holds a permission. The static role
// table satisfies it; tests swap in failing stores.
type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				unauthorized(w, r)
				return
			}
			allowed, err := store.HasPermission(r.Context(), user.RoleName, permission)
			if err != nil {
				slog.Error("permission check failed", "role", user.RoleName, "permission", permission, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", GetRequestID(r.Context()))
				return
			}
			if !allowed {
				slog.Info("permission denied", "userId", user.UserID, "role", user.RoleName, "permission", permission, "path", r.URL.Path)
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects anonymous requests without checking a permission.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireEmployee admits signed-in users that have an employee record. Seeded
// administrator accounts can exist without one and have no self-service data.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}
		if user.EmployeeID == "" {
			api.Fail(w, http.StatusForbidden, "no_employee_record", "account has no employee record", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
