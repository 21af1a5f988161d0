// Package reconciler closes sessions employees forgot to clock out of, at the
// store's auto clock-out instant.
package reconciler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"storeops/internal/alert"
	dirmodels "storeops/internal/directory/models"
	"storeops/internal/reconciler/metrics"
	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/requestcontext"
)

// Mode selects how strictly a sweep matches the auto clock-out instant.
type Mode string

const (
	// ModeTenant closes every due session regardless of how long ago the
	// deadline passed.
	ModeTenant Mode = "tenant"
	// ModeAllTenants only acts within the grace period after the deadline,
	// matching a scheduler that fires every few minutes.
	ModeAllTenants Mode = "all-tenants"
)

const (
	DefaultGrace       = 5 * time.Minute
	DefaultConcurrency = 4
	DefaultBacklogDays = 7
)

// TenantDirectory lists the tenants the all-tenants sweep visits.
type TenantDirectory interface {
	ListActiveTenants(ctx context.Context) ([]dirmodels.Tenant, error)
}

// StoreLister lists a tenant's stores with their hours.
type StoreLister interface {
	ListStores(ctx context.Context, tenantID id.TenantID) ([]dirmodels.Store, error)
}

// SessionLister finds open sessions of a store.
type SessionLister interface {
	ListOpenByStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, through storehours.Date) ([]models.Session, error)
}

// SessionCloser applies the automatic close. closed is false when the session
// was closed by someone else first.
type SessionCloser interface {
	EndSessionAuto(ctx context.Context, session *models.Session, deadline time.Time) (closed bool, err error)
}

// AlertPublisher delivers auto clock-out alerts to store managers.
type AlertPublisher interface {
	Publish(ctx context.Context, a alert.Alert) error
}

// ClosedEntry describes one session the sweep closed.
type ClosedEntry struct {
	TenantID     id.TenantID     `json:"tenant_id"`
	SessionID    id.SessionID    `json:"entry_id"`
	EmployeeID   id.EmployeeID   `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	StoreID      id.StoreID      `json:"store_id"`
	BusinessDate storehours.Date `json:"business_date"`
	ClockIn      time.Time       `json:"clock_in_time"`
	ClockOut     time.Time       `json:"clock_out_time"`
	HoursWorked  float64         `json:"hours_worked"`
	// Deadline is the auto clock-out instant in the store's zone.
	Deadline time.Time `json:"auto_clockout_at"`
}

// Result summarizes a sweep.
type Result struct {
	Mode   Mode          `json:"mode"`
	Closed []ClosedEntry `json:"closed"`
	// FailedStores counts stores skipped because of an error.
	FailedStores int `json:"failed_stores"`
}

// Count is the number of sessions closed.
func (r *Result) Count() int {
	return len(r.Closed)
}

type Service struct {
	tenants     TenantDirectory
	stores      StoreLister
	sessions    SessionLister
	closer      SessionCloser
	policy      *storehours.Policy
	alerts      AlertPublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	grace       time.Duration
	concurrency int
	backlog     bool
	backlogDays int
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

func WithAlertPublisher(p AlertPublisher) Option {
	return func(s *Service) {
		s.alerts = p
	}
}

// WithGrace bounds how long after the deadline an all-tenants sweep still acts.
func WithGrace(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.grace = d
		}
	}
}

// WithConcurrency caps how many tenants are swept at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBacklog also closes open sessions of up to days earlier business days,
// each at its own day's auto clock-out instant.
func WithBacklog(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.backlog = true
			s.backlogDays = days
		}
	}
}

func New(tenants TenantDirectory, stores StoreLister, sessions SessionLister, closer SessionCloser, policy *storehours.Policy, opts ...Option) (*Service, error) {
	if tenants == nil {
		return nil, errors.New("tenant directory is required")
	}
	if stores == nil {
		return nil, errors.New("store lister is required")
	}
	if sessions == nil {
		return nil, errors.New("session lister is required")
	}
	if closer == nil {
		return nil, errors.New("session closer is required")
	}
	if policy == nil {
		return nil, errors.New("store hours policy is required")
	}
	svc := &Service{
		tenants:     tenants,
		stores:      stores,
		sessions:    sessions,
		closer:      closer,
		policy:      policy,
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("storeops/reconciler"),
		grace:       DefaultGrace,
		concurrency: DefaultConcurrency,
		backlogDays: DefaultBacklogDays,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SweepTenant closes every session of the tenant whose store's auto
// clock-out instant has passed.
func (s *Service) SweepTenant(ctx context.Context, tenantID id.TenantID) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "reconciler.SweepTenant",
		trace.WithAttributes(attribute.String("tenant_id", tenantID.String())))
	defer span.End()
	defer s.metrics.ObserveSweep(time.Now())
	s.metrics.IncrementSweep(string(ModeTenant))

	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))
	res := &Result{Mode: ModeTenant}
	closed, failed, err := s.sweepTenant(ctx, tenantID, ModeTenant)
	if err != nil {
		return nil, err
	}
	res.Closed, res.FailedStores = closed, failed
	s.finish(ctx, res)
	return res, nil
}

// SweepAllTenants sweeps every active tenant, acting only on stores whose
// deadline passed within the grace period.
func (s *Service) SweepAllTenants(ctx context.Context) (*Result, error) {
	return s.SweepActive(ctx, ModeAllTenants)
}

// SweepActive sweeps every active tenant in the given mode. A failing tenant
// is logged and does not stop the others.
func (s *Service) SweepActive(ctx context.Context, mode Mode) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "reconciler.SweepActive",
		trace.WithAttributes(attribute.String("mode", string(mode))))
	defer span.End()
	defer s.metrics.ObserveSweep(time.Now())
	s.metrics.IncrementSweep(string(mode))

	// one "now" for the whole sweep
	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

	tenants, err := s.tenants.ListActiveTenants(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}

	res := &Result{Mode: mode}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, tenant := range tenants {
		g.Go(func() error {
			closed, failed, err := s.sweepTenant(ctx, tenant.ID, mode)
			if err != nil {
				s.logger.ErrorContext(ctx, "tenant sweep failed",
					"tenant_id", tenant.ID.String(),
					"error", err,
				)
				failed = 1
			}
			mu.Lock()
			defer mu.Unlock()
			res.Closed = append(res.Closed, closed...)
			res.FailedStores += failed
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(res.Closed, func(a, b ClosedEntry) int {
		return cmp.Or(
			cmp.Compare(a.TenantID.String(), b.TenantID.String()),
			cmp.Compare(a.StoreID, b.StoreID),
			a.ClockIn.Compare(b.ClockIn),
		)
	})
	s.finish(ctx, res)
	return res, nil
}

func (s *Service) finish(ctx context.Context, res *Result) {
	s.metrics.AddAutoClockouts(res.Count())
	s.logger.InfoContext(ctx, "auto clock-out sweep finished",
		"mode", string(res.Mode),
		"auto_clocked_out_count", res.Count(),
		"failed_stores", res.FailedStores,
	)
}

func (s *Service) sweepTenant(ctx context.Context, tenantID id.TenantID, mode Mode) ([]ClosedEntry, int, error) {
	stores, err := s.stores.ListStores(ctx, tenantID)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list stores")
	}
	var closed []ClosedEntry
	failed := 0
	for _, store := range stores {
		if err := ctx.Err(); err != nil {
			return closed, failed, err
		}
		entries, err := s.sweepStore(ctx, store, mode)
		closed = append(closed, entries...)
		if err != nil {
			failed++
			s.metrics.IncrementStoreFailure()
			s.logger.ErrorContext(ctx, "store sweep failed",
				"tenant_id", tenantID.String(),
				"store_id", store.ID.String(),
				"error", err,
			)
		}
	}
	return closed, failed, nil
}

// sweepStore closes the store's due sessions. Sessions closed before an error
// are still returned.
func (s *Service) sweepStore(ctx context.Context, store dirmodels.Store, mode Mode) ([]ClosedEntry, error) {
	if store.Hours.Closing == "" {
		return nil, nil
	}
	now := requestcontext.Now(ctx)
	deadline, today, ok := s.policy.AutoClockoutFor(store.Hours, now)
	if !ok {
		s.metrics.IncrementSkippedStore()
		s.logger.WarnContext(ctx, "skipping auto clock-out for store with malformed hours",
			"tenant_id", store.TenantID.String(),
			"store_id", store.ID.String(),
			"closing_time", store.Hours.Closing,
		)
		return nil, nil
	}
	due := s.due(now, deadline, mode)
	if !due && !s.backlog {
		return nil, nil
	}

	sessions, err := s.sessions.ListOpenByStore(ctx, store.TenantID, store.ID, today)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}

	var closed []ClosedEntry
	for i := range sessions {
		session := &sessions[i]
		at, ok := s.closeAt(store.Hours, session.BusinessDate, today, deadline, due, now)
		if !ok {
			continue
		}
		applied, err := s.closer.EndSessionAuto(ctx, session, at)
		if err != nil {
			return closed, fmt.Errorf("close session %s: %w", session.ID, err)
		}
		if !applied {
			continue
		}
		entry := s.entry(store, session, at)
		closed = append(closed, entry)
		s.logger.InfoContext(ctx, "session auto clocked out",
			"tenant_id", store.TenantID.String(),
			"store_id", store.ID.String(),
			"entry_id", session.ID.String(),
			"employee_id", session.EmployeeID.String(),
			"business_date", session.BusinessDate.String(),
			"clock_out", at,
		)
		s.alert(ctx, store, entry)
	}
	return closed, nil
}

func (s *Service) due(now, deadline time.Time, mode Mode) bool {
	late := now.Sub(deadline)
	if mode == ModeAllTenants {
		return late >= 0 && late <= s.grace
	}
	return late >= 0
}

// closeAt picks the close instant for a session of business date d, or false
// when the session is not due yet.
func (s *Service) closeAt(h storehours.Hours, d, today storehours.Date, deadline time.Time, due bool, now time.Time) (time.Time, bool) {
	if d == today {
		return deadline, due
	}
	if !s.backlog || d.Before(today.AddDays(-s.backlogDays)) {
		return time.Time{}, false
	}
	at, ok := s.policy.AutoClockoutAt(h, d)
	if !ok || now.Before(at) {
		return time.Time{}, false
	}
	return at, true
}

func (s *Service) entry(store dirmodels.Store, session *models.Session, at time.Time) ClosedEntry {
	loc, _ := s.policy.Location(store.Hours.Timezone)
	entry := ClosedEntry{
		TenantID:     store.TenantID,
		SessionID:    session.ID,
		EmployeeID:   session.EmployeeID,
		EmployeeName: session.EmployeeName,
		StoreID:      store.ID,
		BusinessDate: session.BusinessDate,
		ClockIn:      session.ClockIn,
		ClockOut:     at.UTC(),
		Deadline:     at.In(loc),
	}
	if session.HoursWorked != nil {
		entry.HoursWorked = *session.HoursWorked
	}
	return entry
}

// alert notifies the store manager. Failures are logged only.
func (s *Service) alert(ctx context.Context, store dirmodels.Store, entry ClosedEntry) {
	if s.alerts == nil || store.ManagerUsername == "" {
		return
	}
	_, zone := s.policy.Location(store.Hours.Timezone)
	a := alert.NewAutoClockout(alert.AutoClockout{
		TenantID:        store.TenantID,
		StoreID:         store.ID,
		ManagerUsername: store.ManagerUsername,
		EmployeeID:      entry.EmployeeID,
		EmployeeName:    entry.EmployeeName,
		ClockOut:        entry.Deadline,
		Closing:         store.Hours.Closing,
		Timezone:        zone,
		HoursWorked:     entry.HoursWorked,
	})
	if err := s.alerts.Publish(ctx, a); err != nil {
		s.logger.WarnContext(ctx, "failed to publish auto clock-out alert",
			"tenant_id", store.TenantID.String(),
			"store_id", store.ID.String(),
			"error", err,
		)
	}
}
