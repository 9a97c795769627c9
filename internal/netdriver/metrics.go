package netdriver

import "github.com/prometheus/client_golang/prometheus"

// metricsSet is the private per-Driver metrics collection. It is registered
// against a private *prometheus.Registry (never promauto's package-global
// default) so that constructing many Drivers in one process, as every test
// in this repository does, never panics on duplicate registration.
type metricsSet struct {
	eventsProcessed prometheus.Counter
	eventsEnqueued  prometheus.Counter
	queueDepth      prometheus.Gauge
	convergenceRuns *prometheus.CounterVec
	decisionErrors  *prometheus.CounterVec
	sessionsDropped prometheus.Counter
}

func newMetricsSet(reg *prometheus.Registry) *metricsSet {
	m := &metricsSet{
		eventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgpconverge_driver_events_processed_total",
			Help: "Total events popped from the queue and dispatched to a router.",
		}),
		eventsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgpconverge_driver_events_enqueued_total",
			Help: "Total events pushed onto the queue.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bgpconverge_driver_queue_depth",
			Help: "Current number of events waiting in the queue.",
		}),
		convergenceRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bgpconverge_driver_convergence_runs_total",
			Help: "Total DoQueue invocations, labeled by outcome.",
		}, []string{"result"}),
		decisionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bgpconverge_driver_decision_errors_total",
			Help: "Total errors returned by a router's decision process, labeled by kind.",
		}, []string{"kind"}),
		sessionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgpconverge_driver_stale_sessions_dropped_total",
			Help: "Total NoBgpSession errors recovered locally during event delivery.",
		}),
	}
	reg.MustRegister(
		m.eventsProcessed,
		m.eventsEnqueued,
		m.queueDepth,
		m.convergenceRuns,
		m.decisionErrors,
		m.sessionsDropped,
	)
	return m
}
