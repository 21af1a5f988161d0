package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	id "storeops/pkg/domain"
	request "storeops/pkg/platform/middleware/request"
	"storeops/pkg/requestcontext"
)

// TokenValidator validates bearer tokens issued by the auth collaborator.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims are the token facts this service relies on.
type Claims struct {
	TenantID string
	Username string
	Role     string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireTenant validates the bearer token and scopes the request to its tenant.
// When roles is non-empty the token's role must be one of them.
func RequireTenant(validator TokenValidator, logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			tenantID, err := id.ParseTenantID(claims.TenantID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - token without tenant",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"request_id", requestID,
					"role", claims.Role,
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient role")
				return
			}

			ctx = requestcontext.WithTenantID(ctx, tenantID)
			ctx = requestcontext.WithActor(ctx, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
