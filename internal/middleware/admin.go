package middleware

import (
	"context"
	"net/http"
)

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RequireAdmin gates a route on admin membership. Super admins bypass the role
// check; an empty role admits any admin.
func RequireAdmin(admins AdminStore, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "missing authenticated user", http.StatusUnauthorized)
				return
			}
			isAdmin, isSuper, err := admins.IsAdmin(r.Context(), userID)
			if err != nil {
				http.Error(w, "unable to verify admin", http.StatusInternalServerError)
				return
			}
			if !isAdmin {
				http.Error(w, "admin privileges required", http.StatusForbidden)
				return
			}
			if role != "" && !isSuper {
				hasRole, err := admins.HasRole(r.Context(), userID, role)
				if err != nil {
					http.Error(w, "unable to verify role", http.StatusInternalServerError)
					return
				}
				if !hasRole {
					http.Error(w, "missing required role", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
