package fusion

import (
	"github.com/born-ml/fusion/internal/subgraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts classification outcomes and detected groups.
// A nil *Metrics records nothing.
type Metrics struct {
	nodesEvaluated *prometheus.CounterVec
	groupsDetected prometheus.Counter
	groupSize      prometheus.Histogram
}

// NewMetrics creates the detector metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		nodesEvaluated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusion_elementwise_nodes_evaluated_total",
				Help: "Number of operators classified by the elementwise detector, by verdict.",
			},
			[]string{"verdict"},
		),
		groupsDetected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fusion_elementwise_groups_detected_total",
				Help: "Number of elementwise fusion groups reported.",
			},
		),
		groupSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fusion_elementwise_group_size",
				Help:    "Number of operators per reported elementwise fusion group.",
				Buckets: prometheus.LinearBuckets(2, 2, 8),
			},
		),
	}
}

func (m *Metrics) observeVerdict(v Verdict) {
	if m == nil {
		return
	}
	label := string(v.Reason)
	if v.Accepted() {
		label = "accepted"
	}
	m.nodesEvaluated.WithLabelValues(label).Inc()
}

func (m *Metrics) observeGroups(groups []subgraph.Group) {
	if m == nil {
		return
	}
	m.groupsDetected.Add(float64(len(groups)))
	for _, g := range groups {
		m.groupSize.Observe(float64(len(g)))
	}
}
