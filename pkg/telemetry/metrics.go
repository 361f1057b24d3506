// Package telemetry collects Prometheus metrics and OpenTelemetry spans for
// the reconciler, the scheduler and the component runtime.
//
// A nil *Metrics is valid and records nothing, so instrumented code never
// needs to check whether metrics are enabled.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the metrics collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vtree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	patches        prometheus.Counter
	mutations      *prometheus.CounterVec
	hostErrors     *prometheus.CounterVec
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	schedules      *prometheus.CounterVec
	messages       *prometheus.CounterVec
	tasks          prometheus.Gauge
}

// Render outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusPanic = "panic"
)

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - vtree_patches_total: top-level reconciler calls
//   - vtree_host_mutations_total: host mutations by kind
//   - vtree_host_errors_total: failed host operations by op
//   - vtree_renders_total: render cycles by status
//   - vtree_render_duration_seconds: render plus patch duration
//   - vtree_schedules_total: scheduler requests by priority and outcome
//   - vtree_messages_total: component messages by component and outcome
//   - vtree_active_tasks: running component tasks
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		patches: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of top-level reconciler calls",
			ConstLabels: config.ConstLabels,
		}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_mutations_total",
			Help:        "Total host mutations performed by the reconciler",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		hostErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_errors_total",
			Help:        "Total host operations that failed",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total render cycles by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render and patch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		schedules: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "schedules_total",
			Help:        "Render requests by priority and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"priority", "outcome"}),

		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_total",
			Help:        "Component messages by component and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "outcome"}),

		tasks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_tasks",
			Help:        "Number of running component tasks",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObservePatch records the mutation counts of one top-level reconciler call.
func (m *Metrics) ObservePatch(created, destroyed, propsSet, moves, repacks int) {
	if m == nil {
		return
	}
	m.patches.Inc()
	add := func(kind string, n int) {
		if n > 0 {
			m.mutations.WithLabelValues(kind).Add(float64(n))
		}
	}
	add("create", created)
	add("destroy", destroyed)
	add("set", propsSet)
	add("move", moves)
	add("repack", repacks)
}

// ObserveHostError records a failed host operation.
func (m *Metrics) ObserveHostError(op string) {
	if m == nil {
		return
	}
	m.hostErrors.WithLabelValues(op).Inc()
}

// ObserveRender records one render cycle.
func (m *Metrics) ObserveRender(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(status).Inc()
	m.renderDuration.Observe(d.Seconds())
}

// ObserveSchedule records a scheduler request and what became of it.
func (m *Metrics) ObserveSchedule(priority, outcome string) {
	if m == nil {
		return
	}
	m.schedules.WithLabelValues(priority, outcome).Inc()
}

// ObserveMessage records a component message.
func (m *Metrics) ObserveMessage(component, outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(component, outcome).Inc()
}

// TaskStarted increments the active task gauge.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.tasks.Inc()
}

// TaskClosed decrements the active task gauge.
func (m *Metrics) TaskClosed() {
	if m == nil {
		return
	}
	m.tasks.Dec()
}
