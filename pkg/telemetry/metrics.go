package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes live Monte-Carlo run counters to a Prometheus scrape
// target, repurposing the teacher's client_golang dependency: the teacher
// uses it to *query* a running chain's Prometheus, this framework uses it
// to *publish* its own simulation counters while a long system-evaluation
// run is in flight.
type Metrics struct {
	TrialsTotal  prometheus.Counter
	OutcomeTotal *prometheus.CounterVec
	DecodeLatency prometheus.Histogram
}

// NewMetrics registers the run's counters against reg (typically
// prometheus.NewRegistry() so multiple concurrent runs don't collide).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TrialsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eccsim",
			Name:      "trials_total",
			Help:      "Total number of Monte-Carlo trials executed.",
		}),
		OutcomeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eccsim",
			Name:      "outcome_total",
			Help:      "Count of decode outcomes by kind (NE, CE, DUE, SDC).",
		}, []string{"outcome"}),
		DecodeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eccsim",
			Name:      "decode_latency_seconds",
			Help:      "Wall-clock time spent per ECC decode call.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}

	reg.MustRegister(m.TrialsTotal, m.OutcomeTotal, m.DecodeLatency)
	return m
}

// ObserveOutcome records one trial's final severity.
func (m *Metrics) ObserveOutcome(outcome string) {
	m.TrialsTotal.Inc()
	m.OutcomeTotal.WithLabelValues(outcome).Inc()
}
