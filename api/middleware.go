package api

import (
	"net/http"
	"strings"

	"github.com/warp/print-tracker/auth"
)

// Authenticated rejects requests without a valid session token and stores
// the token's role on the request context. The token is read from the
// Authorization header, or from ?token= for download links.
func (h *Handler) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if header := r.Header.Get("Authorization"); header != "" {
			token = strings.TrimPrefix(header, "Bearer ")
			if token == header {
				writeError(w, http.StatusUnauthorized, "Bearer token not found", nil)
				return
			}
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is missing", nil)
			return
		}

		claims, err := h.Sessions.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithRole(r.Context(), claims.Role)))
	})
}

// RequirePermission allows the request only when the caller's role grants p.
func RequirePermission(p auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := auth.RoleFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			if !role.Can(p) {
				writeError(w, http.StatusForbidden, "You don't have permission to access this resource", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
