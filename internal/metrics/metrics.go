package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LinkMetrics counts object store existence probes made while resolving
// link keys. It satisfies service.ProbeObserver.
type LinkMetrics struct {
	probes *prometheus.CounterVec
}

// NewLinkMetrics registers the link collectors on reg.
func NewLinkMetrics(reg prometheus.Registerer) (*LinkMetrics, error) {
	m := &LinkMetrics{
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mediaapi",
				Name:      "link_probes_total",
				Help:      "Object existence probes by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.probes); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveProbe increments the counter for outcome.
func (m *LinkMetrics) ObserveProbe(outcome string) {
	m.probes.WithLabelValues(outcome).Inc()
}
