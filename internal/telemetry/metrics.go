package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the process-wide collectors a server binary registers
// once at startup; cmd/region-server's timer dispatch is the call site
// that updates them. The set mirrors the counters/gauges table named in
// SPEC_FULL.md §C's domain stack row for prometheus/client_golang.
type Metrics struct {
	ReducerInvocations *prometheus.CounterVec
	ReducerErrors      *prometheus.CounterVec
	TimerFires         *prometheus.CounterVec
	QueueDepth         *prometheus.GaugeVec
	AgentTickDuration  *prometheus.HistogramVec
}

// NewMetrics constructs and registers every collector against reg. Pass
// prometheus.NewRegistry() for test isolation, or
// prometheus.DefaultRegisterer for a server binary's real /metrics
// endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReducerInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worldshard_reducer_invocations_total",
			Help: "Count of reducer invocations by name.",
		}, []string{"reducer"}),
		ReducerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worldshard_reducer_errors_total",
			Help: "Count of reducer invocations that returned a non-nil Error, by name and user-facing/internal.",
		}, []string{"reducer", "user_facing"}),
		TimerFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worldshard_timer_fires_total",
			Help: "Count of scheduler timer fires by bound reducer name.",
		}, []string{"reducer"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worldshard_sign_in_queue_depth",
			Help: "Current number of identities waiting in the sign-in queue, by region.",
		}, []string{"region"}),
		AgentTickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worldshard_agent_tick_duration_seconds",
			Help:    "Wall-clock duration of one agent tick, by agent name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"agent"}),
	}
	reg.MustRegister(m.ReducerInvocations, m.ReducerErrors, m.TimerFires, m.QueueDepth, m.AgentTickDuration)
	return m
}

// ObserveReducer records one reducer invocation's outcome.
func (m *Metrics) ObserveReducer(name string, err error, userFacing bool) {
	m.ReducerInvocations.WithLabelValues(name).Inc()
	if err != nil {
		m.ReducerErrors.WithLabelValues(name, boolLabel(userFacing)).Inc()
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
