package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"storeops/internal/reconciler/metrics"
)

// Sweeper runs one sweep over all active tenants.
type Sweeper interface {
	SweepActive(ctx context.Context, mode Mode) (*Result, error)
}

// Lease elects a single replica to run a sweep tick.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Worker runs the sweep on a fixed interval. With a lease, only the replica
// holding it sweeps on a given tick.
type Worker struct {
	sweeper  Sweeper
	lease    Lease
	mode     Mode
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithLease makes the worker skip ticks while another replica holds the lease.
func WithLease(l Lease) WorkerOption {
	return func(w *Worker) {
		w.lease = l
	}
}

func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func NewWorker(sweeper Sweeper, mode Mode, interval time.Duration, opts ...WorkerOption) (*Worker, error) {
	if sweeper == nil {
		return nil, errors.New("sweeper is required")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if mode != ModeTenant && mode != ModeAllTenants {
		return nil, errors.New("unknown sweep mode: " + string(mode))
	}
	w := &Worker{
		sweeper:  sweeper,
		mode:     mode,
		interval: interval,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start launches the loop in the background. Calling Start twice is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		_ = w.Run(ctx)
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish or ctx to
// expire.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.InfoContext(ctx, "auto clock-out worker started",
		"mode", string(w.mode),
		"interval", w.interval.String(),
	)
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(context.WithoutCancel(ctx), "auto clock-out worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick performs a single sweep if this replica wins the lease.
func (w *Worker) Tick(ctx context.Context) {
	if w.lease != nil {
		ok, err := w.lease.Acquire(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "auto clock-out lease failed", "error", err)
			return
		}
		if !ok {
			w.metrics.IncrementLeaseContended()
			w.logger.DebugContext(ctx, "auto clock-out lease held elsewhere")
			return
		}
		defer func() {
			if err := w.lease.Release(context.WithoutCancel(ctx)); err != nil {
				w.logger.WarnContext(ctx, "auto clock-out lease release failed", "error", err)
			}
		}()
	}

	if _, err := w.sweeper.SweepActive(ctx, w.mode); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.ErrorContext(ctx, "auto clock-out sweep failed", "error", err)
	}
}
