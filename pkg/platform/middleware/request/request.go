// Package request assigns every inbound request a correlation ID.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"storeops/pkg/requestcontext"
)

// HeaderRequestID is echoed back so callers can correlate logs.
const HeaderRequestID = "X-Request-ID"

// RequestID reuses an inbound X-Request-ID or generates a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
