// Package handler exposes store-hours access checks to the store login and
// clock terminals.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dirmodels "storeops/internal/directory/models"
	"storeops/internal/storehours"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/httputil"
	"storeops/pkg/platform/sentinel"
	"storeops/pkg/requestcontext"
)

// StoreDirectory resolves a store and its hours.
type StoreDirectory interface {
	GetStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*dirmodels.Store, error)
}

type Handler struct {
	stores StoreDirectory
	policy *storehours.Policy
	logger *slog.Logger
}

func New(stores StoreDirectory, policy *storehours.Policy, logger *slog.Logger) *Handler {
	return &Handler{stores: stores, policy: policy, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/stores/{store_id}/access/login", h.HandleLogin)
	r.Get("/stores/{store_id}/access/clock", h.HandleClock)
}

// HandleLogin handles POST /stores/{store_id}/access/login. A denial is a
// 403 STORE_CLOSED_LOGIN with the window metadata.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, storehours.WindowLogin)
}

// HandleClock handles GET /stores/{store_id}/access/clock.
func (h *Handler) HandleClock(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, storehours.WindowClock)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, kind storehours.WindowKind) {
	ctx := r.Context()
	tenantID := requestcontext.TenantID(ctx)
	if tenantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	storeID, err := id.ParseStoreID(chi.URLParam(r, "store_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	store, err := h.stores.GetStore(ctx, tenantID, storeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Store not found"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to load store", "store_id", storeID.String(), "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load store"))
		return
	}

	decision := h.policy.Evaluate(store.Hours, requestcontext.Now(ctx), kind)
	attrs := []any{
		"event", "store_access_check",
		"window", kind.String(),
		"tenant_id", tenantID.String(),
		"store_id", storeID.String(),
		"actor", requestcontext.Actor(ctx),
		"opening_time", store.Hours.Opening,
		"closing_time", store.Hours.Closing,
		"allowed", decision.Allowed,
	}
	if md := decision.Metadata; md != nil {
		attrs = append(attrs,
			"store_timezone", md.Timezone,
			"window_start", md.WindowStart,
			"window_end", md.WindowEnd,
		)
	}

	if !decision.Allowed {
		h.logger.WarnContext(ctx, "store access blocked", attrs...)
		httputil.WriteError(w, decision.Err())
		return
	}
	h.logger.InfoContext(ctx, "store access allowed", attrs...)
	httputil.WriteJSON(w, http.StatusOK, decision)
}
