// Package httptransport assembles the public router: shared middleware, the
// tenant-scoped API, manager-only routes and the system scheduler route.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	facehandler "storeops/internal/face/handler"
	jwttoken "storeops/internal/jwt_token"
	"storeops/internal/platform/metrics"
	rchandler "storeops/internal/reconciler/handler"
	storehandler "storeops/internal/storehours/handler"
	tchandler "storeops/internal/timeclock/handler"
	"storeops/pkg/platform/httputil"
	"storeops/pkg/platform/middleware/auth"
	request "storeops/pkg/platform/middleware/request"
	"storeops/pkg/platform/middleware/requesttime"
	"storeops/pkg/platform/middleware/system"
)

// managerRoles may enroll faces and trigger a tenant sweep.
var managerRoles = []string{jwttoken.RoleManager, jwttoken.RoleAdmin, jwttoken.RoleSuperAdmin}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the handlers and collaborators the router mounts.
type Dependencies struct {
	Logger       *slog.Logger
	Tokens       auth.TokenValidator
	SystemAPIKey string
	Metrics      *metrics.Metrics

	Access *storehandler.Handler
	Clock  *tchandler.Handler
	Face   *facehandler.Handler
	Sweep  *rchandler.Handler

	// Checks run on /ready, keyed by dependency name.
	Checks map[string]HealthCheck
}

func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", readiness(deps.Checks, logger))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireTenant(deps.Tokens, logger))
		if deps.Access != nil {
			deps.Access.Register(r)
		}
		if deps.Clock != nil {
			deps.Clock.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireTenant(deps.Tokens, logger, managerRoles...))
		if deps.Face != nil {
			deps.Face.Register(r)
		}
		if deps.Sweep != nil {
			deps.Sweep.RegisterTenant(r)
		}
	})

	if deps.Sweep != nil {
		r.Group(func(r chi.Router) {
			r.Use(system.RequireSystemKey(deps.SystemAPIKey, logger))
			deps.Sweep.RegisterSystem(r)
		})
	}
	return r
}

func readiness(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
				result[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
