package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "carbyne").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for teardown duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "carbyne",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records node lifecycle metrics. It is safe for concurrent use.
type Collector struct {
	created   *prometheus.CounterVec
	mounted   *prometheus.CounterVec
	unmounted *prometheus.CounterVec
	destroyed *prometheus.CounterVec
	live      *prometheus.GaugeVec

	teardownDuration *prometheus.HistogramVec
	teardownErrors   *prometheus.CounterVec
	bridgeUpdates    *prometheus.CounterVec
}

// New creates a Collector and registers its metrics. Registering twice on
// the same registry panics, as with any promauto collector.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help, label string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, []string{label})
	}

	return &Collector{
		created:   counter("nodes_created_total", "Total number of nodes whose host representation was created", "kind"),
		mounted:   counter("nodes_mounted_total", "Total number of node mounts", "kind"),
		unmounted: counter("nodes_unmounted_total", "Total number of node unmounts", "kind"),
		destroyed: counter("nodes_destroyed_total", "Total number of destroyed nodes", "kind"),

		live: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_live",
			Help:        "Number of created nodes not yet destroyed",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		teardownDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "teardown_duration_seconds",
			Help:        "Time from the start of an unmount or destroy until its handle resolved",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		teardownErrors: counter("teardown_errors_total", "Total number of failed unmounts and destroys", "op"),
		bridgeUpdates:  counter("bridge_updates_total", "Observer node updates by mode", "mode"),
	}
}

// NodeCreated implements atom.Metrics.
func (c *Collector) NodeCreated(kind string) {
	c.created.WithLabelValues(kind).Inc()
	c.live.WithLabelValues(kind).Inc()
}

// NodeMounted implements atom.Metrics.
func (c *Collector) NodeMounted(kind string) {
	c.mounted.WithLabelValues(kind).Inc()
}

// NodeUnmounted implements atom.Metrics.
func (c *Collector) NodeUnmounted(kind string) {
	c.unmounted.WithLabelValues(kind).Inc()
}

// NodeDestroyed implements atom.Metrics.
func (c *Collector) NodeDestroyed(kind string) {
	c.destroyed.WithLabelValues(kind).Inc()
	c.live.WithLabelValues(kind).Dec()
}

// TeardownObserved implements atom.Metrics.
func (c *Collector) TeardownObserved(op string, d time.Duration, err error) {
	c.teardownDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		c.teardownErrors.WithLabelValues(op).Inc()
	}
}

// BridgeUpdate implements atom.Metrics.
func (c *Collector) BridgeUpdate(mode string) {
	c.bridgeUpdates.WithLabelValues(mode).Inc()
}
