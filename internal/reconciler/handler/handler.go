// Package handler exposes the auto clock-out sweep to managers and to the
// system scheduler.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storeops/internal/reconciler"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/httputil"
	"storeops/pkg/requestcontext"
)

const noneMessage = "No employees needed auto clock-out"

// Service runs the sweeps.
type Service interface {
	SweepTenant(ctx context.Context, tenantID id.TenantID) (*reconciler.Result, error)
	SweepAllTenants(ctx context.Context) (*reconciler.Result, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterTenant mounts the tenant-scoped sweep behind the tenant middleware.
func (h *Handler) RegisterTenant(r chi.Router) {
	r.Post("/timeclock/auto-clockout", h.HandleSweepTenant)
}

// RegisterSystem mounts the all-tenants sweep behind the system key middleware.
func (h *Handler) RegisterSystem(r chi.Router) {
	r.Post("/timeclock/auto-clockout/all-tenants", h.HandleSweepAllTenants)
}

// EntryResponse is one auto clocked-out session.
type EntryResponse struct {
	TenantID         string    `json:"tenant_id,omitempty"`
	EntryID          string    `json:"entry_id"`
	EmployeeID       string    `json:"employee_id"`
	EmployeeName     string    `json:"employee_name"`
	StoreID          string    `json:"store_id"`
	ClockInTime      time.Time `json:"clock_in_time"`
	ClockOutTime     time.Time `json:"clock_out_time"`
	HoursWorked      float64   `json:"hours_worked"`
	AutoClockoutTime string    `json:"auto_clockout_time,omitempty"`
}

// SweepResponse reports a sweep. Message is set only when nothing was closed.
type SweepResponse struct {
	Success             bool            `json:"success"`
	AutoClockedOutCount int             `json:"auto_clocked_out_count"`
	AutoClockedOut      []EntryResponse `json:"auto_clocked_out,omitempty"`
	Message             string          `json:"message,omitempty"`
}

func toResponse(res *reconciler.Result) SweepResponse {
	resp := SweepResponse{Success: true, AutoClockedOutCount: res.Count()}
	if res.Count() == 0 {
		resp.Message = noneMessage
		return resp
	}
	resp.AutoClockedOut = make([]EntryResponse, 0, res.Count())
	for _, e := range res.Closed {
		entry := EntryResponse{
			EntryID:      e.SessionID.String(),
			EmployeeID:   e.EmployeeID.String(),
			EmployeeName: e.EmployeeName,
			StoreID:      e.StoreID.String(),
			ClockInTime:  e.ClockIn,
			ClockOutTime: e.ClockOut,
			HoursWorked:  e.HoursWorked,
		}
		if res.Mode == reconciler.ModeAllTenants {
			entry.TenantID = e.TenantID.String()
		} else {
			entry.AutoClockoutTime = e.Deadline.Format("15:04")
		}
		resp.AutoClockedOut = append(resp.AutoClockedOut, entry)
	}
	return resp
}

// HandleSweepTenant handles POST /timeclock/auto-clockout.
func (h *Handler) HandleSweepTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := requestcontext.TenantID(ctx)
	if tenantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	res, err := h.service.SweepTenant(ctx, tenantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "auto clock-out failed",
			"tenant_id", tenantID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "auto clock-out requested",
		"tenant_id", tenantID.String(),
		"actor", requestcontext.Actor(ctx),
		"auto_clocked_out_count", res.Count(),
	)
	httputil.WriteJSON(w, http.StatusOK, toResponse(res))
}

// HandleSweepAllTenants handles POST /timeclock/auto-clockout/all-tenants.
func (h *Handler) HandleSweepAllTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.SweepAllTenants(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "all-tenants auto clock-out failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(res))
}
