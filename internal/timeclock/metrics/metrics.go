package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storeops/internal/timeclock/models"
)

// Metrics tracks clock session transitions.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	ClockIns          prometheus.Counter
	ClockOuts         *prometheus.CounterVec
	WindowDenials     *prometheus.CounterVec
	FaceRejections    prometheus.Counter
	LateClockIns      prometheus.Counter
	ClockOpDuration   *prometheus.HistogramVec
	AlertPublishFails prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ClockIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_clock_ins_total",
			Help: "Total number of sessions opened",
		}),
		ClockOuts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storeops_clock_outs_total",
			Help: "Total number of sessions closed, by clock out type",
		}, []string{"type"}),
		WindowDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storeops_clock_window_denials_total",
			Help: "Clock actions rejected by the store-hours window",
		}, []string{"action"}),
		FaceRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_face_rejections_total",
			Help: "Face clock attempts that did not resolve to an employee",
		}),
		LateClockIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_late_clock_ins_total",
			Help: "Clock-ins recorded after store opening",
		}),
		ClockOpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storeops_clock_operation_duration_seconds",
			Help:    "Duration of clock operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		AlertPublishFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeops_alert_publish_failures_total",
			Help: "Manager alerts that could not be published",
		}),
	}
}

func (m *Metrics) IncrementClockIn() {
	if m == nil {
		return
	}
	m.ClockIns.Inc()
}

func (m *Metrics) IncrementClockOut(t models.ClockOutType) {
	if m == nil {
		return
	}
	m.ClockOuts.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) IncrementWindowDenial(action string) {
	if m == nil {
		return
	}
	m.WindowDenials.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementFaceRejection() {
	if m == nil {
		return
	}
	m.FaceRejections.Inc()
}

func (m *Metrics) IncrementLateClockIn() {
	if m == nil {
		return
	}
	m.LateClockIns.Inc()
}

func (m *Metrics) IncrementAlertFailure() {
	if m == nil {
		return
	}
	m.AlertPublishFails.Inc()
}

// ObserveOperation records the duration of a clock operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	if m == nil {
		return
	}
	m.ClockOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
