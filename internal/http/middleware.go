package http

import (
	"context"
	"net/http"
	"strconv"
)

// IdentityMiddleware trusts the X-User-ID / X-User-Role headers injected by
// the edge proxy after it has validated the caller's JWT. This service never
// sees raw credentials; an absent or malformed header simply leaves the
// request anonymous and handlers respond 401.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
				ctx = context.WithValue(ctx, "user_id", userID)
			}
		}
		if role := r.Header.Get("X-User-Role"); role != "" {
			ctx = context.WithValue(ctx, "user_role", role)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly rejects callers whose role is not ADMIN.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getUserIDFromContext(r.Context()) == 0 {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
			return
		}
		if role, _ := r.Context().Value("user_role").(string); role != "ADMIN" {
			respondError(w, http.StatusForbidden, "permission_denied", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getUserIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value("user_id").(int64); ok {
		return userID
	}
	return 0
}
