package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks auto clock-out sweeps.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	Sweeps         *prometheus.CounterVec
	SweepDuration  prometheus.Histogram
	AutoClockouts  prometheus.Counter
	StoreFailures  prometheus.Counter
	SkippedStores  prometheus.Counter
	LeaseContended prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Sweeps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storeops_reconciler_sweeps_total",
			Help: "Auto clock-out sweeps, by mode",
		}, []string{"mode"}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeops_reconciler_sweep_duration_seconds",
			Help:    "Duration of auto clock-out sweeps",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AutoClockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_reconciler_auto_clockouts_total",
			Help: "Sessions closed by the reconciler",
		}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_reconciler_store_failures_total",
			Help: "Stores whose sweep failed and was skipped",
		}),
		SkippedStores: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_reconciler_malformed_hours_total",
			Help: "Stores skipped because their hours could not be parsed",
		}),
		LeaseContended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_reconciler_lease_contended_total",
			Help: "Worker ticks skipped because another replica held the lease",
		}),
	}
}

func (m *Metrics) IncrementSweep(mode string) {
	if m == nil {
		return
	}
	m.Sweeps.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveSweep(start time.Time) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddAutoClockouts(n int) {
	if m == nil || n == 0 {
		return
	}
	m.AutoClockouts.Add(float64(n))
}

func (m *Metrics) IncrementStoreFailure() {
	if m == nil {
		return
	}
	m.StoreFailures.Inc()
}

func (m *Metrics) IncrementSkippedStore() {
	if m == nil {
		return
	}
	m.SkippedStores.Inc()
}

func (m *Metrics) IncrementLeaseContended() {
	if m == nil {
		return
	}
	m.LeaseContended.Inc()
}
