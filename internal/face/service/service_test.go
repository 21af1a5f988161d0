package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ProfileStore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storeops/internal/face"
	"storeops/internal/face/service/mocks"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/sentinel"
)

// =============================================================================
// Face Service Test Suite
// =============================================================================
// Identification rules: no registered faces, distance and confidence floors,
// and adaptive learning side effects on the profile store.

type FaceServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	store    *mocks.MockProfileStore
	service  *Service
	tenantID id.TenantID
	ana      face.Profile
}

func TestFaceServiceSuite(t *testing.T) {
	suite.Run(t, new(FaceServiceSuite))
}

func point(offset float64) face.Descriptor {
	d := make(face.Descriptor, face.DefaultDescriptorLength)
	d[0] = offset
	return d
}

func (s *FaceServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockProfileStore(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := New(s.store, WithLogger(logger))
	s.Require().NoError(err)
	s.service = svc
	s.tenantID = id.TenantID(uuid.New())
	s.ana = face.Profile{
		EmployeeID:   id.EmployeeID(uuid.New()),
		EmployeeName: "Ana",
		Descriptors:  []face.Descriptor{point(0)},
	}
}

func (s *FaceServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *FaceServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "face profile store is required")
	})
}

// =============================================================================
// Identify
// =============================================================================

func (s *FaceServiceSuite) TestIdentify() {
	ctx := context.Background()

	s.Run("invalid descriptor is rejected before any lookup", func() {
		_, err := s.service.Identify(ctx, s.tenantID, face.Descriptor{1, 2})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing descriptor is a bad request", func() {
		_, err := s.service.Identify(ctx, s.tenantID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("no registered faces", func() {
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return(nil, nil)
		_, err := s.service.Identify(ctx, s.tenantID, point(0))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return(nil, errors.New("db down"))
		_, err := s.service.Identify(ctx, s.tenantID, point(0))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("probe beyond accept distance is not recognized", func() {
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return([]face.Profile{s.ana}, nil)
		_, err := s.service.Identify(ctx, s.tenantID, point(0.9))
		s.True(dErrors.HasCode(err, dErrors.CodeFaceNotRecognized))
	})

	s.Run("exact match does not learn", func() {
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return([]face.Profile{s.ana}, nil)
		match, err := s.service.Identify(ctx, s.tenantID, point(0))
		s.Require().NoError(err)
		s.Equal(s.ana.EmployeeID, match.EmployeeID)
		s.Equal(1.0, match.Confidence)
	})

	s.Run("confident novel probe is learned", func() {
		probe := point(0.33)
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return([]face.Profile{s.ana}, nil)
		s.store.EXPECT().
			AppendDescriptor(gomock.Any(), s.tenantID, s.ana.EmployeeID, probe, face.DefaultMaxDescriptors).
			Return(nil)
		match, err := s.service.Identify(ctx, s.tenantID, probe)
		s.Require().NoError(err)
		s.Equal("Ana", match.EmployeeName)
	})

	s.Run("learning failure does not fail identification", func() {
		probe := point(0.33)
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return([]face.Profile{s.ana}, nil)
		s.store.EXPECT().AppendDescriptor(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("write failed"))
		_, err := s.service.Identify(ctx, s.tenantID, probe)
		s.NoError(err)
	})

	s.Run("confidence below caller floor is rejected with the score", func() {
		strict, err := New(s.store, WithMatcher(face.NewMatcher(face.WithMinConfidence(0.9))))
		s.Require().NoError(err)
		s.store.EXPECT().ListRegistered(gomock.Any(), s.tenantID).Return([]face.Profile{s.ana}, nil)
		_, err = strict.Identify(ctx, s.tenantID, point(0.3))
		s.True(dErrors.HasCode(err, dErrors.CodeFaceNotRecognized))
		s.Contains(err.Error(), "Confidence too low (75.0%)")
	})
}

// =============================================================================
// Enroll
// =============================================================================

func (s *FaceServiceSuite) TestEnroll() {
	ctx := context.Background()
	employeeID := id.EmployeeID(uuid.New())

	s.Run("requires at least one descriptor", func() {
		err := s.service.Enroll(ctx, s.tenantID, employeeID, nil, "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects more than the cap", func() {
		many := []face.Descriptor{point(0), point(1), point(2), point(3), point(4), point(5)}
		err := s.service.Enroll(ctx, s.tenantID, employeeID, many, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects malformed descriptor", func() {
		err := s.service.Enroll(ctx, s.tenantID, employeeID, []face.Descriptor{point(0), {1}}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown employee", func() {
		s.store.EXPECT().Enroll(gomock.Any(), s.tenantID, employeeID, gomock.Any(), "", gomock.Any()).
			Return(sentinel.ErrNotFound)
		err := s.service.Enroll(ctx, s.tenantID, employeeID, []face.Descriptor{point(0)}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("stores descriptors", func() {
		descriptors := []face.Descriptor{point(0), point(0.2)}
		s.store.EXPECT().Enroll(gomock.Any(), s.tenantID, employeeID, descriptors, "img", gomock.Any()).Return(nil)
		s.NoError(s.service.Enroll(ctx, s.tenantID, employeeID, descriptors, "img"))
	})
}
