package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can take it as an optional dependency.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Prompt session metrics
	SessionsActive     prometheus.Gauge
	SessionsSettled    *prometheus.CounterVec
	StaleResults       *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	PreviewFailures    prometheus.Counter
	ValidationRejects  prometheus.Counter

	// WebSocket / stdio transport metrics
	Connections prometheus.Gauge
	Messages    *prometheus.CounterVec

	snapshot Snapshot
	mu       sync.Mutex
}

// Snapshot holds current values for the JSON health endpoint.
type Snapshot struct {
	ActiveSessions    int64            `json:"active_sessions"`
	Settled           map[string]int64 `json:"settled"`
	StaleDiscarded    int64            `json:"stale_discarded"`
	ActiveConnections int64            `json:"active_connections"`
}

// NewMetrics creates a metrics collector registered on reg. Pass
// prometheus.DefaultRegisterer in production and prometheus.NewRegistry() in
// tests so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		snapshot: Snapshot{Settled: map[string]int64{}},

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitprompt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kitprompt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "kitprompt_sessions_active",
				Help: "Number of prompt sessions currently waiting for a value",
			},
		),
		SessionsSettled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitprompt_sessions_settled_total",
				Help: "Prompt sessions settled, by outcome",
			},
			[]string{"outcome"},
		),
		StaleResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitprompt_stale_results_total",
				Help: "Asynchronous results dropped because their context changed",
			},
			[]string{"kind"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kitprompt_generation_duration_seconds",
				Help:    "Time spent in choice generators",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"result"},
		),
		PreviewFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kitprompt_preview_failures_total",
				Help: "Preview callbacks that failed and rendered the fallback",
			},
		),
		ValidationRejects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kitprompt_validation_rejects_total",
				Help: "Submitted values rejected by a validator",
			},
		),

		Connections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "kitprompt_connections",
				Help: "Number of active host connections",
			},
		),
		Messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitprompt_messages_total",
				Help: "Host messages by direction and channel",
			},
			[]string{"direction", "channel"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SessionStarted marks a prompt session as active.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// SessionSettled records the terminal outcome of a session.
func (m *Metrics) SessionSettled(outcome string) {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
	m.SessionsSettled.WithLabelValues(outcome).Inc()
	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.snapshot.Settled[outcome]++
	m.mu.Unlock()
}

// StaleDiscarded counts a dropped generation, preview or validation result.
func (m *Metrics) StaleDiscarded(kind string) {
	if m == nil {
		return
	}
	m.StaleResults.WithLabelValues(kind).Inc()
	m.mu.Lock()
	m.snapshot.StaleDiscarded++
	m.mu.Unlock()
}

// ObserveGeneration records how long a generator took.
func (m *Metrics) ObserveGeneration(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDuration.WithLabelValues(result).Observe(d.Seconds())
}

// IncPreviewFailures counts a preview that rendered the fallback text.
func (m *Metrics) IncPreviewFailures() {
	if m == nil {
		return
	}
	m.PreviewFailures.Inc()
}

// IncValidationRejects counts a rejected submission.
func (m *Metrics) IncValidationRejects() {
	if m == nil {
		return
	}
	m.ValidationRejects.Inc()
}

// RecordMessage records a host message
func (m *Metrics) RecordMessage(direction, channel string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(direction, channel).Inc()
}

// IncConnections increments active host connections
func (m *Metrics) IncConnections() {
	if m == nil {
		return
	}
	m.Connections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecConnections decrements active host connections
func (m *Metrics) DecConnections() {
	if m == nil {
		return
	}
	m.Connections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns a copy of the tracked values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Settled: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.snapshot
	s.Settled = make(map[string]int64, len(m.snapshot.Settled))
	for k, v := range m.snapshot.Settled {
		s.Settled[k] = v
	}
	return s
}
