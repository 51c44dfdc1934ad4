package deal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks lifecycle transitions.
type Metrics struct {
	transitions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "nilclear",
			Subsystem: "deals",
			Name:      "transitions_total",
			Help:      "Deal state transitions by resulting state.",
		}, []string{"state"}),
	}
}

func (m *Metrics) transition(state State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(state)).Inc()
}
