package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/plop/pkg/vdom"
)

// Drop reasons reported by events_dropped_total.
const (
	DropDecode    = "decode"
	DropUnhandled = "unhandled"
	DropType      = "type"
)

// MetricsConfig configures the runtime's Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "plop").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures MetricsConfig.
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

// WithBuckets sets the render duration buckets.
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
		Namespace: "plop",
		Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors a Runtime reports to. One Metrics may be
// shared by many runtimes. A nil *Metrics records nothing.
type Metrics struct {
	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	changes        *prometheus.CounterVec
	dispatched     *prometheus.CounterVec
	dropped        *prometheus.CounterVec
	messages       prometheus.Counter
}

// NewMetrics creates and registers the runtime collectors. It panics if
// they are already registered with the chosen registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of view renders",
			ConstLabels: config.ConstLabels,
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Time spent in view, diff and reconcile per render",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		changes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_changes_total",
			Help:        "Changes applied to the surface by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_dispatched_total",
			Help:        "Surface events decoded into messages",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_dropped_total",
			Help:        "Surface events that produced no message by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_total",
			Help:        "Messages passed to the update function",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordRender(d time.Duration, counts map[vdom.ChangeOp]int) {
	if m == nil {
		return
	}
	m.renders.Inc()
	m.renderDuration.Observe(d.Seconds())
	for op, n := range counts {
		m.changes.WithLabelValues(op.String()).Add(float64(n))
	}
}

func (m *Metrics) recordDispatch(event string) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(event).Inc()
}

func (m *Metrics) recordDrop(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordMessage() {
	if m == nil {
		return
	}
	m.messages.Inc()
}
