package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"storeops/internal/face"
	"storeops/internal/face/handler/mocks"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r, svc
}

func TestHandleEnroll(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	employeeID := id.EmployeeID(uuid.New())
	path := "/face/employees/" + employeeID.String() + "/enroll"
	descriptors := []face.Descriptor{make(face.Descriptor, face.DefaultDescriptorLength)}

	t.Run("enrolls descriptors", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Enroll(gomock.Any(), tenantID, employeeID, gomock.Len(1), "img").Return(nil)

		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]any{
			"face_descriptors": descriptors,
			"face_image":       "img",
		})
		rr := testutil.DoRequest(router, testutil.WithTenant(req, tenantID))

		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[EnrollResponse](t, rr)
		assert.True(t, body.Success)
		assert.Equal(t, 1, body.Descriptors)
	})

	t.Run("requires descriptors", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]any{})
		rr := testutil.DoRequest(router, testutil.WithTenant(req, tenantID))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("unknown employee is 404", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Enroll(gomock.Any(), tenantID, employeeID, gomock.Any(), "").
			Return(dErrors.New(dErrors.CodeNotFound, "Employee not found"))

		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]any{"face_descriptors": descriptors})
		rr := testutil.DoRequest(router, testutil.WithTenant(req, tenantID))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("requires a tenant", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]any{"face_descriptors": descriptors})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}
