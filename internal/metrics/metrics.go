package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decision_engine",
			Name:      "decisions_total",
			Help:      "Total decisions produced, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "decision_engine",
			Name:      "rate_limited_total",
			Help:      "Decisions downgraded to scheduled maintenance by the hourly cap.",
		},
	)

	batchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "decision_engine",
			Name:      "batch_seconds",
			Help:      "Batch evaluation latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	payloadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "decision_engine",
			Name:      "payload_errors_total",
			Help:      "Analysis documents rejected as malformed.",
		},
	)
)

// Register attaches decision-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		decisionsTotal,
		rateLimitedTotal,
		batchDurationSeconds,
		payloadErrorsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveDecision counts one finalized decision by outcome.
func ObserveDecision(outcome string) {
	decisionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRateLimited counts decisions downgraded by the arbiter.
func ObserveRateLimited(count int) {
	rateLimitedTotal.Add(float64(count))
}

// ObserveBatch records the latency of one batch evaluation.
func ObserveBatch(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	batchDurationSeconds.Observe(duration.Seconds())
}

// ObservePayloadError counts one rejected analysis document.
func ObservePayloadError() {
	payloadErrorsTotal.Inc()
}
