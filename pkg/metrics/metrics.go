// Package metrics exports render engine counters to Prometheus.
//
// A nil *Recorder is valid and records nothing, so containers built
// without metrics pay no cost.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "reconcile").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collectors.
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
		Namespace: "reconcile",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder holds the render engine collectors.
type Recorder struct {
	passesTotal     *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	operationsTotal *prometheus.CounterVec
	nodesTotal      *prometheus.CounterVec
	componentsTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	commitFailures  prometheus.Counter
	batchHosts      prometheus.Histogram
	pendingBranches prometheus.Gauge
}

// New registers the collectors and returns a Recorder.
//
// Collectors are registered with promauto, so creating two recorders on
// the same registry panics; use a fresh prometheus.NewRegistry per
// recorder in tests.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Recorder{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of committed render passes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Render pass duration from start to commit in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total number of committed document operations by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		nodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_total",
			Help:        "Total number of live nodes created, moved or removed",
			ConstLabels: config.ConstLabels,
		}, []string{"action"}),

		componentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_renders_total",
			Help:        "Total number of component render function invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of render, validation and commit errors by code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		commitFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_failures_total",
			Help:        "Total number of operations skipped at commit",
			ConstLabels: config.ConstLabels,
		}),

		batchHosts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_hosts",
			Help:        "Number of dirty hosts per scheduler batch",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),

		pendingBranches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_branches",
			Help:        "Number of async branches currently awaited",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Pass summarizes one committed pass.
type Pass struct {
	Kind     string // "render" or "batch"
	Duration time.Duration
	Created  int
	Moved    int
	Removed  int
}

// ObservePass records a committed pass.
func (r *Recorder) ObservePass(p Pass) {
	if r == nil {
		return
	}
	r.passesTotal.WithLabelValues(p.Kind).Inc()
	r.passDuration.WithLabelValues(p.Kind).Observe(p.Duration.Seconds())
	r.nodesTotal.WithLabelValues("created").Add(float64(p.Created))
	r.nodesTotal.WithLabelValues("moved").Add(float64(p.Moved))
	r.nodesTotal.WithLabelValues("removed").Add(float64(p.Removed))
}

// ObserveOperation counts one committed operation.
func (r *Recorder) ObserveOperation(kind string) {
	if r == nil {
		return
	}
	r.operationsTotal.WithLabelValues(kind).Inc()
}

// ComponentRendered counts one render function invocation.
func (r *Recorder) ComponentRendered(name string) {
	if r == nil {
		return
	}
	r.componentsTotal.WithLabelValues(name).Inc()
}

// Error counts an error by its code.
func (r *Recorder) Error(code string) {
	if r == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	r.errorsTotal.WithLabelValues(code).Inc()
}

// CommitFailed counts an operation skipped at commit.
func (r *Recorder) CommitFailed() {
	if r == nil {
		return
	}
	r.commitFailures.Inc()
}

// ObserveBatch records the number of dirty hosts of a batch.
func (r *Recorder) ObserveBatch(hosts int) {
	if r == nil {
		return
	}
	r.batchHosts.Observe(float64(hosts))
}

// PendingAdded and PendingSettled track awaited branches.
func (r *Recorder) PendingAdded(n int) {
	if r == nil {
		return
	}
	r.pendingBranches.Add(float64(n))
}

func (r *Recorder) PendingSettled(n int) {
	if r == nil {
		return
	}
	r.pendingBranches.Sub(float64(n))
}
