package scanapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan outcomes used as the "outcome" label.
const (
	OutcomeExited       = "exited"
	OutcomeFallback     = "fallback"
	OutcomeNoResult     = "no_result"
	OutcomeNoTransition = "no_transition"
	OutcomeStepLimit    = "step_limit"
	OutcomeError        = "error"
)

// Metrics holds the scan service collectors.
type Metrics struct {
	scans      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	steps      *prometheus.HistogramVec
	inputBytes *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scankit",
			Name:      "scans_total",
			Help:      "Total number of scans by machine and outcome.",
		}, []string{"machine", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scankit",
			Name:      "scan_duration_seconds",
			Help:      "Time spent running a machine over one input.",
			// 10us to ~2.6s
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"machine"}),
		steps: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scankit",
			Name:      "scan_steps",
			Help:      "Transitions taken per scan.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"machine"}),
		inputBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scankit",
			Name:      "scan_input_bytes",
			Help:      "Size of decoded scan input.",
			// 64B to 64MB
			Buckets: prometheus.ExponentialBuckets(64, 4, 11),
		}, []string{"machine"}),
	}
}

func (m *Metrics) observe(machine, outcome string, steps, size int, d time.Duration) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(machine, outcome).Inc()
	m.duration.WithLabelValues(machine).Observe(d.Seconds())
	m.steps.WithLabelValues(machine).Observe(float64(steps))
	m.inputBytes.WithLabelValues(machine).Observe(float64(size))
}
