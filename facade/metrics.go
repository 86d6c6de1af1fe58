package facade

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposed by the facade, namespaced under idlecore_facade_*.
var (
	stepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "idlecore",
		Subsystem: "facade",
		Name:      "steps_total",
		Help:      "Total number of simulation steps processed.",
	})

	rulesFiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "idlecore",
		Subsystem: "facade",
		Name:      "rules_fired_total",
		Help:      "Total number of rule firings across all steps.",
	})

	stepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "idlecore",
		Subsystem: "facade",
		Name:      "step_duration_seconds",
		Help:      "Wall-clock duration of a single Step call.",
		Buckets:   prometheus.DefBuckets,
	})

	pendingEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "idlecore",
		Subsystem: "facade",
		Name:      "pending_events",
		Help:      "Number of events currently queued on the timeline.",
	})
)

func init() {
	prometheus.MustRegister(stepsTotal, rulesFiredTotal, stepDuration, pendingEvents)
}
