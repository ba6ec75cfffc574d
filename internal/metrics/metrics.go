package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hive",
			Name:      "requests",
			Help:      "Time taken to process requests",
			Buckets:   []float64{.005, .01, .025, .05, .075, .1, .15, .2, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"client", "method", "error"},
	)

	ProposalTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hive",
			Name:      "proposal_transitions",
			Help:      "Number of proposal lifecycle transitions",
		},
		[]string{"event", "post_type"},
	)

	CreditMovedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hive",
			Name:      "credit_hours_moved",
			Help:      "Time-credit hours moved between accounts by entry type",
		},
		[]string{"entry_type"},
	)
)

func CollectRequestsMetric(client, method string, err error, start time.Time) {
	RequestsHistogram.
		WithLabelValues(client, method, errLabelValue(err)).
		Observe(time.Since(start).Seconds())
}

func CollectProposalTransition(event, postType string) {
	ProposalTransitionsCounter.WithLabelValues(event, postType).Inc()
}

func CollectCreditMoved(entryType string, hours float64) {
	CreditMovedCounter.WithLabelValues(entryType).Add(hours)
}

// errLabelValue returns string representation of error label value
func errLabelValue(err error) string {
	if err != nil {
		return "true"
	}
	return "false"
}
