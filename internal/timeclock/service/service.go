// Package service runs the clock session state machine: opening and closing
// an employee's session for a business day under the store-hours policy.
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

	"storeops/internal/alert"
	dirmodels "storeops/internal/directory/models"
	"storeops/internal/face"
	"storeops/internal/storehours"
	"storeops/internal/timeclock/metrics"
	"storeops/internal/timeclock/models"
	"storeops/internal/timeclock/ports"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/sentinel"
	"storeops/pkg/requestcontext"
)

const (
	DefaultStoreHistoryDays    = 30
	DefaultEmployeeHistoryDays = 90
	maxHistoryDays             = 366
)

// Service is the clock session state machine.
type Service struct {
	sessions   ports.SessionStore
	stores     ports.StoreDirectory
	employees  ports.EmployeeDirectory
	policy     *storehours.Policy
	identifier ports.Identifier
	alerts     ports.AlertPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIdentifier enables the face clock flows.
func WithIdentifier(identifier ports.Identifier) Option {
	return func(s *Service) {
		s.identifier = identifier
	}
}

// WithAlertPublisher enables late clock-in alerts.
func WithAlertPublisher(p ports.AlertPublisher) Option {
	return func(s *Service) {
		s.alerts = p
	}
}

func New(sessions ports.SessionStore, stores ports.StoreDirectory, employees ports.EmployeeDirectory, policy *storehours.Policy, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if stores == nil {
		return nil, errors.New("store directory is required")
	}
	if employees == nil {
		return nil, errors.New("employee directory is required")
	}
	if policy == nil {
		return nil, errors.New("store hours policy is required")
	}
	svc := &Service{
		sessions:  sessions,
		stores:    stores,
		employees: employees,
		policy:    policy,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer("storeops/timeclock"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// FaceClockRequest is a face-identified clock action at a store.
type FaceClockRequest struct {
	TenantID   id.TenantID
	Descriptor face.Descriptor
	StoreID    id.StoreID
}

// ClockInResult is an opened session and, for face clock-ins, the match.
type ClockInResult struct {
	Session *models.Session
	Match   *face.Match
}

// ClockOutResult is a closed session. Auto is set when the clock-out arrived
// after the auto clock-out instant and the session was closed at that instant.
type ClockOutResult struct {
	Session *models.Session
	Match   *face.Match
	Auto    bool
	Message string
}

// =============================================================================
// Clock in
// =============================================================================

// ClockIn opens a session for an employee identified by id. storeID may be
// empty, in which case the employee's home store is used.
func (s *Service) ClockIn(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, storeID id.StoreID) (*ClockInResult, error) {
	ctx, span := s.tracer.Start(ctx, "timeclock.ClockIn")
	defer span.End()
	defer s.metrics.ObserveOperation("clock_in", time.Now())

	employee, err := s.employee(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	session, err := s.StartSession(ctx, employee, firstStore(storeID, employee.StoreID), nil)
	if err != nil {
		return nil, err
	}
	return &ClockInResult{Session: session}, nil
}

// ClockInFace identifies the employee from a face probe and opens a session.
func (s *Service) ClockInFace(ctx context.Context, req FaceClockRequest) (*ClockInResult, error) {
	ctx, span := s.tracer.Start(ctx, "timeclock.ClockInFace")
	defer span.End()
	defer s.metrics.ObserveOperation("clock_in_face", time.Now())

	match, employee, err := s.identify(ctx, req)
	if err != nil {
		return nil, err
	}
	confidence := match.Confidence
	session, err := s.StartSession(ctx, employee, firstStore(req.StoreID, employee.StoreID), &confidence)
	if err != nil {
		return nil, err
	}
	return &ClockInResult{Session: session, Match: match}, nil
}

// StartSession moves an employee from NoSession to Open for the current
// business date. It fails when a session is already open for that date or the
// store's clock window is closed.
func (s *Service) StartSession(ctx context.Context, employee *dirmodels.Employee, storeID id.StoreID, confidence *float64) (*models.Session, error) {
	now := requestcontext.Now(ctx)
	store, err := s.store(ctx, employee.TenantID, storeID)
	if err != nil {
		return nil, err
	}
	hours := hoursOf(store)
	date := s.policy.BusinessDate(hours, now)

	existing, err := s.sessions.FindOpen(ctx, employee.TenantID, employee.ID, date)
	switch {
	case err == nil:
		return nil, alreadyClockedIn(employee.Name, existing)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up open session")
	}

	if decision := s.policy.CanClockAction(hours, now); !decision.Allowed {
		s.metrics.IncrementWindowDenial("clock_in")
		s.logger.InfoContext(ctx, "clock in outside store window",
			"employee_id", employee.ID.String(),
			"store_id", storeID.String(),
			"reason", decision.Reason,
		)
		return nil, decision.Err()
	}

	session := models.NewSession(employee.TenantID, employee.ID, employee.Name, storeID, date, now, confidence)
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent clock-in for the same day.
			return nil, alreadyClockedIn(employee.Name, nil)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.metrics.IncrementClockIn()
	s.logger.InfoContext(ctx, "clocked in",
		"tenant_id", employee.TenantID.String(),
		"employee_id", employee.ID.String(),
		"store_id", storeID.String(),
		"entry_id", session.ID.String(),
		"business_date", date.String(),
	)
	s.alertIfLate(ctx, store, session)
	return session, nil
}

// =============================================================================
// Clock out
// =============================================================================

// ClockOut closes a session identified by its entry id.
func (s *Service) ClockOut(ctx context.Context, tenantID id.TenantID, sessionID id.SessionID) (*ClockOutResult, error) {
	ctx, span := s.tracer.Start(ctx, "timeclock.ClockOut")
	defer span.End()
	defer s.metrics.ObserveOperation("clock_out", time.Now())

	session, err := s.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if !session.IsOpen() {
		return nil, dErrors.New(dErrors.CodeAlreadyClockedOut, "Entry already clocked out")
	}
	return s.EndSession(ctx, session, session.StoreID, nil)
}

// ClockOutFace identifies the employee from a face probe and closes their
// open session for the current business date.
func (s *Service) ClockOutFace(ctx context.Context, req FaceClockRequest) (*ClockOutResult, error) {
	ctx, span := s.tracer.Start(ctx, "timeclock.ClockOutFace")
	defer span.End()
	defer s.metrics.ObserveOperation("clock_out_face", time.Now())

	match, employee, err := s.identify(ctx, req)
	if err != nil {
		return nil, err
	}
	storeID := firstStore(req.StoreID, employee.StoreID)
	store, err := s.store(ctx, employee.TenantID, storeID)
	if err != nil {
		return nil, err
	}
	date := s.policy.BusinessDate(hoursOf(store), requestcontext.Now(ctx))

	session, err := s.sessions.FindOpen(ctx, employee.TenantID, employee.ID, date)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notClockedIn(employee.Name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up open session")
	}
	if req.StoreID == "" {
		storeID = session.StoreID
	}
	confidence := match.Confidence
	result, err := s.EndSession(ctx, session, storeID, &confidence)
	if err != nil {
		return nil, err
	}
	result.Match = match
	return result, nil
}

// EndSession moves an Open session to ClosedManual. Outside the clock window,
// a request at or after the session's auto clock-out instant closes it as
// ClosedAuto at that instant instead; earlier requests are denied.
func (s *Service) EndSession(ctx context.Context, session *models.Session, storeID id.StoreID, confidence *float64) (*ClockOutResult, error) {
	now := requestcontext.Now(ctx)
	store, err := s.store(ctx, session.TenantID, storeID)
	if err != nil {
		return nil, err
	}
	hours := hoursOf(store)

	if decision := s.policy.CanClockAction(hours, now); !decision.Allowed {
		deadline, ok := s.policy.AutoClockoutAt(hours, session.BusinessDate)
		if ok && !now.Before(deadline) {
			return s.endLate(ctx, session, hours, deadline)
		}
		s.metrics.IncrementWindowDenial("clock_out")
		s.logger.InfoContext(ctx, "clock out outside store window",
			"employee_id", session.EmployeeID.String(),
			"store_id", storeID.String(),
			"reason", decision.Reason,
		)
		return nil, decision.Err()
	}

	cmd, err := session.Close(now, models.ClockOutManual, confidence)
	if err != nil {
		return nil, err
	}
	if err := s.applyClose(ctx, session, cmd); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "clocked out",
		"tenant_id", session.TenantID.String(),
		"employee_id", session.EmployeeID.String(),
		"entry_id", session.ID.String(),
		"hours_worked", cmd.HoursWorked,
	)
	return &ClockOutResult{Session: session}, nil
}

// endLate closes a forgotten session on behalf of a late clock-out request.
func (s *Service) endLate(ctx context.Context, session *models.Session, hours storehours.Hours, deadline time.Time) (*ClockOutResult, error) {
	cmd, err := session.Close(deadline, models.ClockOutAuto, nil)
	if err != nil {
		return nil, err
	}
	if err := s.applyClose(ctx, session, cmd); err != nil {
		return nil, err
	}
	loc, zone := s.policy.Location(hours.Timezone)
	message := fmt.Sprintf("Auto clocked out at %s %s (%d minutes after closing time %s %s)",
		deadline.In(loc).Format("15:04"), zone,
		int(s.policy.AutoClockoutDelay().Minutes()), hours.Closing, zone)

	s.logger.InfoContext(ctx, "late clock out closed at auto clock-out instant",
		"tenant_id", session.TenantID.String(),
		"employee_id", session.EmployeeID.String(),
		"entry_id", session.ID.String(),
		"clock_out", cmd.ClockOut,
	)
	return &ClockOutResult{Session: session, Auto: true, Message: message}, nil
}

// EndSessionAuto closes an Open session at the auto clock-out instant. It
// reports false without error when the session is no longer open, whether
// already closed in memory or closed by a concurrent writer.
func (s *Service) EndSessionAuto(ctx context.Context, session *models.Session, deadline time.Time) (bool, error) {
	cmd, err := session.Close(deadline, models.ClockOutAuto, nil)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyClockedOut) {
			return false, nil
		}
		return false, err
	}
	applied, err := s.sessions.CloseIfOpen(ctx, cmd)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close session")
	}
	if !applied {
		return false, nil
	}
	session.Apply(cmd)
	s.metrics.IncrementClockOut(models.ClockOutAuto)
	return true, nil
}

func (s *Service) applyClose(ctx context.Context, session *models.Session, cmd models.CloseCommand) error {
	applied, err := s.sessions.CloseIfOpen(ctx, cmd)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close session")
	}
	if !applied {
		return dErrors.Newf(dErrors.CodeAlreadyClockedOut, "%s is already clocked out.", session.EmployeeName)
	}
	session.Apply(cmd)
	s.metrics.IncrementClockOut(cmd.Type)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// identify resolves a probe to an active employee of the tenant.
func (s *Service) identify(ctx context.Context, req FaceClockRequest) (*face.Match, *dirmodels.Employee, error) {
	if s.identifier == nil {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "face identification is not configured")
	}
	match, err := s.identifier.Identify(ctx, req.TenantID, req.Descriptor)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeFaceNotRecognized) {
			s.metrics.IncrementFaceRejection()
		}
		return nil, nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("employee_id", match.EmployeeID.String()),
		attribute.Float64("confidence", match.Confidence),
	)
	employee, err := s.employees.GetEmployee(ctx, req.TenantID, match.EmployeeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "Employee not found or does not belong to this tenant")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load employee")
	}
	return match, employee, nil
}

func (s *Service) employee(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID) (*dirmodels.Employee, error) {
	employee, err := s.employees.GetEmployee(ctx, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Employee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load employee")
	}
	return employee, nil
}

// store returns nil for an empty or unknown store id; the policy then fails
// open.
func (s *Service) store(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*dirmodels.Store, error) {
	if storeID == "" {
		return nil, nil
	}
	store, err := s.stores.GetStore(ctx, tenantID, storeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load store")
	}
	return store, nil
}

// alertIfLate notifies the store manager of a clock-in at least a minute past
// opening. Publishing failures are logged and never fail the clock-in.
func (s *Service) alertIfLate(ctx context.Context, store *dirmodels.Store, session *models.Session) {
	if s.alerts == nil || store == nil || store.ManagerUsername == "" {
		return
	}
	openAt, ok := s.policy.OpeningAt(store.Hours, session.BusinessDate)
	if !ok {
		return
	}
	minutesLate := int(session.ClockIn.Sub(openAt).Minutes())
	if minutesLate < 1 {
		return
	}
	s.metrics.IncrementLateClockIn()

	loc, zone := s.policy.Location(store.Hours.Timezone)
	a := alert.NewLateClockIn(alert.LateClockIn{
		TenantID:        session.TenantID,
		StoreID:         session.StoreID,
		ManagerUsername: store.ManagerUsername,
		EmployeeID:      session.EmployeeID,
		EmployeeName:    session.EmployeeName,
		ClockIn:         session.ClockIn.In(loc),
		Opening:         store.Hours.Opening,
		Timezone:        zone,
		MinutesLate:     minutesLate,
	})
	if err := s.alerts.Publish(ctx, a); err != nil {
		s.metrics.IncrementAlertFailure()
		s.logger.WarnContext(ctx, "failed to publish late clock-in alert",
			"employee_id", session.EmployeeID.String(),
			"store_id", session.StoreID.String(),
			"error", err,
		)
	}
}

func hoursOf(store *dirmodels.Store) storehours.Hours {
	if store == nil {
		return storehours.Hours{}
	}
	return store.Hours
}

func firstStore(ids ...id.StoreID) id.StoreID {
	for _, sid := range ids {
		if sid != "" {
			return sid
		}
	}
	return ""
}
