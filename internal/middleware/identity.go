package middleware

import (
	"context"
	"net/http"
)

const userIDKey contextKey = "user_id"

// Identity extracts the caller's id from the X-User-ID header set by the
// upstream identity layer and stores it in the request context. Requests
// without the header pass through anonymous; handlers that require an owner
// reject those themselves.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-User-ID"); uid != "" {
			ctx := context.WithValue(r.Context(), userIDKey, uid)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying the given caller id. Handlers read
// it through UserIDFromContext.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the caller id, or "" when the request carried no
// identity.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
