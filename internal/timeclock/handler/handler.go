package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"storeops/internal/timeclock/service"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/httputil"
	"storeops/pkg/requestcontext"
)

// Service defines the clock operations exposed over HTTP.
type Service interface {
	ClockIn(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, storeID id.StoreID) (*service.ClockInResult, error)
	ClockOut(ctx context.Context, tenantID id.TenantID, sessionID id.SessionID) (*service.ClockOutResult, error)
	ClockInFace(ctx context.Context, req service.FaceClockRequest) (*service.ClockInResult, error)
	ClockOutFace(ctx context.Context, req service.FaceClockRequest) (*service.ClockOutResult, error)
	Today(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*service.TodayResult, error)
	StoreHistory(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, days int) (*service.HistoryResult, error)
	EmployeeHistory(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, days int) (*service.HistoryResult, error)
}

// Handler wires the timeclock endpoints to the clock service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the timeclock endpoints. Routes expect the tenant
// middleware to have run.
func (h *Handler) Register(r chi.Router) {
	r.Post("/timeclock/clock-in", h.HandleClockIn)
	r.Post("/timeclock/clock-out", h.HandleClockOut)
	r.Post("/timeclock/clock-in-face", h.HandleClockInFace)
	r.Post("/timeclock/clock-out-face", h.HandleClockOutFace)
	r.Get("/timeclock/today", h.HandleToday)
	r.Get("/timeclock/history", h.HandleStoreHistory)
	r.Get("/timeclock/employees/{employee_id}/history", h.HandleEmployeeHistory)
}

func tenantFrom(w http.ResponseWriter, r *http.Request) (id.TenantID, bool) {
	tenantID := requestcontext.TenantID(r.Context())
	if tenantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.TenantID{}, false
	}
	return tenantID, true
}

// HandleClockIn handles POST /timeclock/clock-in.
func (h *Handler) HandleClockIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndValidate[ClockInRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.ClockIn(ctx, tenantID, req.employeeID, req.storeID)
	if err != nil {
		h.logFailure(ctx, "clock in failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ClockInResponse{EntryID: res.Session.ID.String()})
}

// HandleClockOut handles POST /timeclock/clock-out.
func (h *Handler) HandleClockOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndValidate[ClockOutRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.ClockOut(ctx, tenantID, req.entryID)
	if err != nil {
		h.logFailure(ctx, "clock out failed", err)
		httputil.WriteError(w, err)
		return
	}
	resp := ClockOutResponse{OK: true}
	if res.Auto {
		resp.AutoClockout = true
		resp.ClockOutTime = res.Session.ClockOut
		resp.Message = res.Message
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleClockInFace handles POST /timeclock/clock-in-face.
func (h *Handler) HandleClockInFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndValidate[FaceClockRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.ClockInFace(ctx, service.FaceClockRequest{
		TenantID:   tenantID,
		Descriptor: req.FaceDescriptor,
		StoreID:    req.storeID,
	})
	if err != nil {
		h.logFailure(ctx, "face clock in failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromClockIn(res))
}

// HandleClockOutFace handles POST /timeclock/clock-out-face.
func (h *Handler) HandleClockOutFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndValidate[FaceClockRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.service.ClockOutFace(ctx, service.FaceClockRequest{
		TenantID:   tenantID,
		Descriptor: req.FaceDescriptor,
		StoreID:    req.storeID,
	})
	if err != nil {
		h.logFailure(ctx, "face clock out failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromClockOut(res))
}

// HandleToday handles GET /timeclock/today?store_id=.
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	storeID, ok := requiredStore(w, r)
	if !ok {
		return
	}

	res, err := h.service.Today(ctx, tenantID, storeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries := toEntries(res.Sessions)
	httputil.WriteJSON(w, http.StatusOK, TodayResponse{
		Date:       res.Date.String(),
		StoreID:    res.StoreID.String(),
		Employees:  entries,
		TotalCount: len(entries),
	})
}

// HandleStoreHistory handles GET /timeclock/history?store_id=&days=.
func (h *Handler) HandleStoreHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	storeID, ok := requiredStore(w, r)
	if !ok {
		return
	}
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.StoreHistory(ctx, tenantID, storeID, days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries := toEntries(res.Sessions)
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{
		StoreID:    res.StoreID.String(),
		Entries:    entries,
		TotalCount: len(entries),
		Days:       res.Days,
	})
}

// HandleEmployeeHistory handles GET /timeclock/employees/{employee_id}/history.
func (h *Handler) HandleEmployeeHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	employeeID, err := id.ParseEmployeeID(chi.URLParam(r, "employee_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.EmployeeHistory(ctx, tenantID, employeeID, days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries := toEntries(res.Sessions)
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{
		EmployeeID: employeeID.String(),
		Entries:    entries,
		TotalCount: len(entries),
		Days:       res.Days,
	})
}

func requiredStore(w http.ResponseWriter, r *http.Request) (id.StoreID, bool) {
	storeID, err := id.ParseStoreID(r.URL.Query().Get("store_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return storeID, true
}

// daysParam returns 0 when the parameter is absent so the service default applies.
func daysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "days must be a positive integer"))
		return 0, false
	}
	return days, true
}

// logFailure logs unexpected failures; expected domain outcomes stay quiet.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
