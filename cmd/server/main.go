package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"storeops/internal/app"
	facehandler "storeops/internal/face/handler"
	jwttoken "storeops/internal/jwt_token"
	"storeops/internal/platform/config"
	"storeops/internal/platform/httpserver"
	"storeops/internal/platform/logger"
	"storeops/internal/platform/metrics"
	"storeops/internal/platform/otel"
	"storeops/internal/reconciler"
	rchandler "storeops/internal/reconciler/handler"
	storehandler "storeops/internal/storehours/handler"
	tchandler "storeops/internal/timeclock/handler"
	httptransport "storeops/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and runs the
// auto clock-out worker. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("info", "json").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("storeops stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server) error {
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	shutdownTracing, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	a, err := app.Build(ctx, cfg, log, app.WithMetrics())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("closing backends failed", "error", err)
		}
	}()

	checks := map[string]httptransport.HealthCheck{}
	if a.DB != nil {
		checks["postgres"] = a.DB.PingContext
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Health
	}
	if a.Kafka != nil {
		checks["kafka"] = a.Kafka.Ping
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:       log,
		Tokens:       jwttoken.NewJWTServiceAdapter(tokens),
		SystemAPIKey: cfg.SystemAPIKey,
		Metrics:      metrics.New(),
		Access:       storehandler.New(a.Directory, a.Policy, log),
		Clock:        tchandler.New(a.Clock, log),
		Face:         facehandler.New(a.Faces, log),
		Sweep:        rchandler.New(a.Reconciler, log),
		Checks:       checks,
	})

	var worker *reconciler.Worker
	if cfg.Reconciler.Enabled {
		lease, err := a.Lease()
		if err != nil {
			return err
		}
		worker, err = reconciler.NewWorker(a.Reconciler, reconciler.Mode(cfg.Reconciler.Mode), cfg.Reconciler.Interval,
			reconciler.WithWorkerLogger(log),
			reconciler.WithWorkerMetrics(a.ReconcilerMetrics),
			reconciler.WithLease(lease),
		)
		if err != nil {
			return err
		}
		worker.Start(ctx)
	}

	opts := []httpserver.Option{httpserver.WithLogger(log)}
	if worker != nil {
		opts = append(opts, httpserver.OnShutdown(worker.Stop))
	}
	log.Info("starting storeops", "addr", cfg.Addr, "env", cfg.Environment)
	if err := httpserver.New(cfg.Addr, router, opts...).Run(ctx); err != nil {
		return err
	}
	log.Info("storeops stopped")
	return nil
}
