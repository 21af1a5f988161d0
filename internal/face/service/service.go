// Package service identifies employees from face probes and manages their
// registered descriptors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storeops/internal/face"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/sentinel"
	"storeops/pkg/requestcontext"
)

// ProfileStore reads and writes employee face profiles.
type ProfileStore interface {
	// ListRegistered returns the profiles of face-registered employees of a tenant.
	ListRegistered(ctx context.Context, tenantID id.TenantID) ([]face.Profile, error)
	// AppendDescriptor atomically appends probe to the employee's descriptors,
	// keeping at most limit entries (oldest evicted).
	AppendDescriptor(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, probe face.Descriptor, limit int) error
	// Enroll replaces the employee's descriptors and marks the face registered.
	Enroll(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, descriptors []face.Descriptor, image string, at time.Time) error
}

// Service resolves probes to employees with adaptive learning.
type Service struct {
	store   ProfileStore
	matcher *face.Matcher
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMatcher(m *face.Matcher) Option {
	return func(s *Service) {
		s.matcher = m
	}
}

func New(store ProfileStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("face profile store is required")
	}
	svc := &Service{
		store:   store,
		matcher: face.NewMatcher(),
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.Tracer("storeops/face"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Validate checks a probe's shape.
func (s *Service) Validate(probe face.Descriptor) error {
	if len(probe) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "face_descriptor is required")
	}
	if !s.matcher.Validate(probe) {
		return dErrors.New(dErrors.CodeInvalidInput, "Invalid face descriptor format")
	}
	return nil
}

// Identify resolves probe to the best-matching employee of the tenant.
// Confident matches that differ from every stored reference are learned.
func (s *Service) Identify(ctx context.Context, tenantID id.TenantID, probe face.Descriptor) (*face.Match, error) {
	ctx, span := s.tracer.Start(ctx, "face.Identify")
	defer span.End()

	if err := s.Validate(probe); err != nil {
		return nil, err
	}

	profiles, err := s.store.ListRegistered(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load face profiles")
	}
	if len(profiles) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "No employees with registered faces found. Please register your face first.")
	}

	match, ok := s.matcher.BestMatch(probe, profiles)
	if !ok {
		return nil, dErrors.New(dErrors.CodeFaceNotRecognized,
			"Face not recognized. Please contact your manager to register or update your face.")
	}
	if match.Confidence < s.matcher.MinConfidence() {
		return nil, dErrors.New(dErrors.CodeFaceNotRecognized, fmt.Sprintf(
			"Face not recognized. Confidence too low (%.1f%%). Please contact your manager to register or update your face.",
			match.Confidence*100))
	}
	span.SetAttributes(
		attribute.String("employee_id", match.EmployeeID.String()),
		attribute.Float64("confidence", match.Confidence),
	)

	if s.matcher.ShouldLearn(match) {
		s.learn(ctx, tenantID, match, probe)
	}
	return &match, nil
}

// learn failures are logged; they never fail the identification.
func (s *Service) learn(ctx context.Context, tenantID id.TenantID, match face.Match, probe face.Descriptor) {
	err := s.store.AppendDescriptor(ctx, tenantID, match.EmployeeID, probe, s.matcher.MaxDescriptors())
	if err != nil {
		s.logger.WarnContext(ctx, "failed to learn face descriptor",
			"employee_id", match.EmployeeID.String(),
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "learned face descriptor",
		"employee_id", match.EmployeeID.String(),
		"distance", match.Distance,
		"confidence", match.Confidence,
	)
}

// Enroll registers between one and MaxDescriptors descriptors for an employee.
func (s *Service) Enroll(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, descriptors []face.Descriptor, image string) error {
	if len(descriptors) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "at least one face descriptor is required")
	}
	if len(descriptors) > s.matcher.MaxDescriptors() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "at most %d face descriptors may be registered", s.matcher.MaxDescriptors())
	}
	for i, d := range descriptors {
		if !s.matcher.Validate(d) {
			return dErrors.Newf(dErrors.CodeInvalidInput, "face descriptor %d has an invalid format", i)
		}
	}
	err := s.store.Enroll(ctx, tenantID, employeeID, descriptors, image, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Employee not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enroll face")
	}
	s.logger.InfoContext(ctx, "face enrolled",
		"employee_id", employeeID.String(),
		"descriptors", len(descriptors),
	)
	return nil
}
