package render

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/pkg/metrics"
)

// Option configures a Container.
type Option func(*Container)

// WithLoader sets the component loader. The default is an empty Registry.
func WithLoader(l Loader) Option {
	return func(c *Container) {
		c.loader = l
	}
}

// WithPropWriter replaces the default Patcher.
func WithPropWriter(w PropWriter) Option {
	return func(c *Container) {
		c.writer = w
	}
}

// WithEventRegistrar sets where the default Patcher installs listeners.
// It has no effect together with WithPropWriter.
func WithEventRegistrar(r EventRegistrar) Option {
	return func(c *Container) {
		c.events = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		c.logger = l
	}
}

// WithMetrics records pass metrics on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithTracer sets the tracer for pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Container) {
		c.tracer = t
	}
}

// WithBatchDelay delays scheduler batches so notifications issued across
// several loop tasks coalesce. The default of zero runs a batch in the
// next loop task.
func WithBatchDelay(d time.Duration) Option {
	return func(c *Container) {
		c.batchDelay = d
	}
}

// WithCommitHook adds a hook called after every pass has committed.
func WithCommitHook(h CommitHook) Option {
	return func(c *Container) {
		c.hooks = append(c.hooks, h)
	}
}

// WithDispatcher runs the container on an existing loop. The container
// does not close a dispatcher it did not create.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Container) {
		c.loop = d
	}
}
