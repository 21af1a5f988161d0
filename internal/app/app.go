// Package app assembles the storeops runtime from configuration: storage,
// the policy, services, alert publishing and the reconciler.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"storeops/internal/alert"
	dirmodels "storeops/internal/directory/models"
	dirstore "storeops/internal/directory/store"
	"storeops/internal/face"
	faceservice "storeops/internal/face/service"
	"storeops/internal/platform/config"
	"storeops/internal/platform/kafka"
	"storeops/internal/platform/postgres"
	redisclient "storeops/internal/platform/redis"
	"storeops/internal/reconciler"
	rcmetrics "storeops/internal/reconciler/metrics"
	"storeops/internal/storehours"
	tcmetrics "storeops/internal/timeclock/metrics"
	"storeops/internal/timeclock/ports"
	clockservice "storeops/internal/timeclock/service"
	sessionstore "storeops/internal/timeclock/store"
	id "storeops/pkg/domain"
)

// Directory is everything the runtime reads from and writes to the tenant,
// store and employee directory.
type Directory interface {
	dirstore.Writer
	ListActiveTenants(ctx context.Context) ([]dirmodels.Tenant, error)
	GetStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*dirmodels.Store, error)
	ListStores(ctx context.Context, tenantID id.TenantID) ([]dirmodels.Store, error)
	GetEmployee(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID) (*dirmodels.Employee, error)
	faceservice.ProfileStore
}

// App holds the wired runtime.
type App struct {
	Config     config.Server
	Logger     *slog.Logger
	Policy     *storehours.Policy
	Directory  Directory
	Sessions   ports.SessionStore
	Faces      *faceservice.Service
	Clock      *clockservice.Service
	Reconciler *reconciler.Service
	Alerts     alert.Publisher

	DB    *sql.DB
	Redis *redisclient.Client
	Kafka *kgo.Client

	ReconcilerMetrics *rcmetrics.Metrics
}

// Option adjusts how the runtime is built.
type Option func(*options)

type options struct {
	metrics bool
}

// WithMetrics registers Prometheus collectors. One-shot commands leave it off.
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}

// Build connects to the configured backends. Without DATABASE_URL the
// directory and sessions live in memory, seeded from SEED_FILE when set.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{Config: cfg, Logger: logger}

	policy, err := NewPolicy(cfg)
	if err != nil {
		return nil, err
	}
	a.Policy = policy

	if err := a.openStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openAlerts(ctx); err != nil {
		a.Close()
		return nil, err
	}
	redis, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Redis = redis

	var clockMetrics *tcmetrics.Metrics
	if o.metrics {
		clockMetrics = tcmetrics.New()
		a.ReconcilerMetrics = rcmetrics.New()
	}

	a.Faces, err = faceservice.New(a.Directory,
		faceservice.WithLogger(logger),
		faceservice.WithMatcher(NewMatcher(cfg.Face)),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Clock, err = clockservice.New(a.Sessions, a.Directory, a.Directory, policy,
		clockservice.WithLogger(logger),
		clockservice.WithMetrics(clockMetrics),
		clockservice.WithIdentifier(a.Faces),
		clockservice.WithAlertPublisher(a.Alerts),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	rcOpts := []reconciler.Option{
		reconciler.WithLogger(logger),
		reconciler.WithMetrics(a.ReconcilerMetrics),
		reconciler.WithAlertPublisher(a.Alerts),
		reconciler.WithGrace(cfg.Reconciler.Grace),
		reconciler.WithConcurrency(cfg.Reconciler.Concurrency),
	}
	if cfg.Reconciler.Backlog {
		rcOpts = append(rcOpts, reconciler.WithBacklog(cfg.Reconciler.BacklogDays))
	}
	a.Reconciler, err = reconciler.New(a.Directory, a.Directory, a.Sessions, a.Clock, policy, rcOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewPolicy builds the store-hours policy from the configured buffers.
func NewPolicy(cfg config.Server) (*storehours.Policy, error) {
	p := cfg.Policy
	policy, err := storehours.New(cfg.AppTimezone,
		storehours.WithLoginBuffers(minutes(p.LoginEarlyMinutes), minutes(p.LoginLateMinutes)),
		storehours.WithClockBuffers(minutes(p.ClockEarlyMinutes), minutes(p.ClockLateMinutes)),
		storehours.WithAutoClockoutDelay(minutes(p.AutoClockoutMinute)),
	)
	if err != nil {
		return nil, fmt.Errorf("store hours policy: %w", err)
	}
	return policy, nil
}

// NewMatcher builds the face matcher from the configured thresholds.
func NewMatcher(cfg config.FaceConfig) *face.Matcher {
	return face.NewMatcher(
		face.WithAcceptDistance(cfg.AcceptDistance),
		face.WithMinConfidence(cfg.MinConfidence),
		face.WithLearning(cfg.LearnConfidence, cfg.LearnNoveltyDist),
		face.WithMaxDescriptors(cfg.MaxDescriptors),
		face.WithDescriptorLength(cfg.DescriptorLength),
	)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func (a *App) openStorage(ctx context.Context) error {
	if a.Config.DatabaseURL == "" {
		dir := dirstore.NewInMemory()
		if a.Config.SeedFile != "" {
			seed, err := dirstore.LoadSeedFile(a.Config.SeedFile)
			if err != nil {
				return err
			}
			if err := seed.Apply(ctx, dir); err != nil {
				return fmt.Errorf("apply seed: %w", err)
			}
			a.Logger.InfoContext(ctx, "directory seeded", "file", a.Config.SeedFile, "tenants", len(seed.Tenants))
		}
		a.Directory = dir
		a.Sessions = sessionstore.NewInMemory()
		a.Logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory storage")
		return nil
	}

	db, err := postgres.Open(ctx, a.Config.DatabaseURL)
	if err != nil {
		return err
	}
	a.DB = db
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.Directory = dirstore.NewPostgres(db)
	a.Sessions = sessionstore.NewPostgres(db)
	return nil
}

func (a *App) openAlerts(ctx context.Context) error {
	client, err := kafka.New(ctx, a.Config.Kafka)
	if err != nil {
		return err
	}
	if client == nil {
		a.Alerts = alert.NewMemoryPublisher(a.Logger)
		return nil
	}
	a.Kafka = client
	if err := kafka.EnsureTopic(ctx, client, a.Config.Kafka.AlertsTopic, 3); err != nil {
		return err
	}
	publisher, err := alert.NewKafkaPublisher(client, a.Config.Kafka.AlertsTopic)
	if err != nil {
		return err
	}
	a.Alerts = publisher
	return nil
}

// Lease returns the Redis lease for the reconciler worker, or nil when Redis
// is not configured and every replica sweeps.
func (a *App) Lease() (reconciler.Lease, error) {
	if a.Redis == nil {
		return nil, nil
	}
	lease, err := reconciler.NewRedisLease(a.Redis.Client, a.Config.Reconciler.LeaseTTL)
	if err != nil {
		return nil, err
	}
	return lease, nil
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	if a.Kafka != nil {
		a.Kafka.Close()
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
