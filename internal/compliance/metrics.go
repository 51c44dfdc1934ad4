package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts gate outcomes by rejection reason and tracks evaluation
// latency.
type Metrics struct {
	evaluations *prometheus.CounterVec
	duration    prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nilclear",
			Subsystem: "compliance",
			Name:      "evaluations_total",
			Help:      "Compliance gate evaluations by outcome reason.",
		}, []string{"reason"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nilclear",
			Subsystem: "compliance",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating a deal, evidence gathering included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(reason string, seconds float64) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(reason).Inc()
	m.duration.Observe(seconds)
}
