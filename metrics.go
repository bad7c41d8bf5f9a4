package golive

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "golive").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for action duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the action duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics holds the Prometheus collectors for a Manager.
//
// Metrics collected:
//   - golive_mounts_total: Counter of component mounts by component name
//   - golive_actions_total: Counter of actions by component and status
//     (success, error, expired)
//   - golive_action_duration_seconds: Histogram of the locked
//     hydrate -> dispatch -> capture -> render sequence
//   - golive_active_instances: Gauge of cached instances (estimate)
//   - golive_evictions_total: Counter of cache evictions by reason
//     (expired, size)
//
// Example:
//
//	mgr := golive.NewManager(renderer,
//	    golive.WithMetrics(golive.NewMetrics(golive.WithNamespace("myapp"))))
//	http.Handle("/metrics", promhttp.Handler())
type Metrics struct {
	mounts         *prometheus.CounterVec
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec

	config MetricsConfig
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "golive",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		config: config,

		mounts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "mounts_total",
			Help:        "Total number of component mounts",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "actions_total",
			Help:        "Total number of component actions by status",
			ConstLabels: config.ConstLabels,
		}, []string{"name", "status"}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "action_duration_seconds",
			Help:        "Action handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"name"}),
	}
}

// trackCache registers the gauge and eviction counters over the cache.
// Called by NewManager once the cache exists.
func (m *Metrics) trackCache(cache *InstanceCache) {
	if m == nil {
		return
	}

	factory := promauto.With(m.config.Registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Name:        "active_instances",
		Help:        "Estimated number of live component instances",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(cache.Len()) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   m.config.Namespace,
		Name:        "evictions_total",
		Help:        "Total instance cache evictions by reason",
		ConstLabels: withLabel(m.config.ConstLabels, "reason", "expired"),
	}, func() float64 { expired, _ := cache.Evicted(); return float64(expired) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   m.config.Namespace,
		Name:        "evictions_total",
		Help:        "Total instance cache evictions by reason",
		ConstLabels: withLabel(m.config.ConstLabels, "reason", "size"),
	}, func() float64 { _, size := cache.Evicted(); return float64(size) })
}

func (m *Metrics) recordMount(name string) {
	if m == nil {
		return
	}
	m.mounts.WithLabelValues(name).Inc()
}

func (m *Metrics) recordAction(name, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(name, status).Inc()
	if status != "expired" {
		m.actionDuration.WithLabelValues(name).Observe(d.Seconds())
	}
}

func withLabel(base prometheus.Labels, key, value string) prometheus.Labels {
	labels := prometheus.Labels{key: value}
	for k, v := range base {
		labels[k] = v
	}
	return labels
}
