// Package handler exposes face enrollment over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storeops/internal/face"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/httputil"
	"storeops/pkg/requestcontext"
)

// Service enrolls employee faces.
type Service interface {
	Enroll(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, descriptors []face.Descriptor, image string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/face/employees/{employee_id}/enroll", h.HandleEnroll)
}

// EnrollRequest carries one to five descriptors captured at registration.
type EnrollRequest struct {
	FaceDescriptors []face.Descriptor `json:"face_descriptors"`
	FaceImage       string            `json:"face_image,omitempty"`
}

func (r *EnrollRequest) Validate() error {
	if len(r.FaceDescriptors) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "face_descriptors is required")
	}
	return nil
}

type EnrollResponse struct {
	Success     bool   `json:"success"`
	EmployeeID  string `json:"employee_id"`
	Descriptors int    `json:"descriptors"`
}

// HandleEnroll handles POST /face/employees/{employee_id}/enroll.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := requestcontext.TenantID(ctx)
	if tenantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	employeeID, err := id.ParseEmployeeID(chi.URLParam(r, "employee_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndValidate[EnrollRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Enroll(ctx, tenantID, employeeID, req.FaceDescriptors, req.FaceImage); err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "face enrollment failed",
				"request_id", requestcontext.RequestID(ctx),
				"employee_id", employeeID.String(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EnrollResponse{
		Success:     true,
		EmployeeID:  employeeID.String(),
		Descriptors: len(req.FaceDescriptors),
	})
}
