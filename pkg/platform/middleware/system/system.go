// Package system guards endpoints meant for schedulers rather than people,
// such as the all-tenants auto clock-out sweep.
package system

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "storeops/pkg/platform/middleware/request"
	"storeops/pkg/requestcontext"
)

// HeaderSystemKey carries the shared scheduler key.
const HeaderSystemKey = "X-System-Key"

// RequireSystemKey rejects requests that do not present the configured key.
// An empty expected key disables the endpoint entirely.
func RequireSystemKey(expectedKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderSystemKey)
			if expectedKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expectedKey)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "system key mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"system key required"}`))
				return
			}

			ctx := requestcontext.WithActor(r.Context(), "system")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
