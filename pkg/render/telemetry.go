package render

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for containers.
const defaultTracerName = "reconcile"

// startSpan opens the span covering one pass, from its first walk to its
// commit.
func (p *pass) startSpan(ctx context.Context) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("reconcile.pass_id", p.rc.id),
		attribute.String("reconcile.kind", p.rc.kind),
		attribute.Int("reconcile.roots", len(p.rc.roots)),
	}
	return p.c.tracer.Start(ctx, "reconcile."+p.rc.kind,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// endSpan records the pass counters and ends the span.
func (p *pass) endSpan() {
	perf := p.rc.perf
	p.span.SetAttributes(
		attribute.Int("reconcile.operations", len(p.rc.ops)),
		attribute.Int("reconcile.created", perf.Created),
		attribute.Int("reconcile.moved", perf.Moved),
		attribute.Int("reconcile.removed", perf.Removed),
		attribute.Int("reconcile.components_rendered", perf.ComponentsRendered),
	)
	if n := len(p.rc.errs); n > 0 {
		for _, err := range p.rc.errs {
			p.span.RecordError(err)
		}
		p.span.SetStatus(codes.Error, fmt.Sprintf("%d errors", n))
	} else {
		p.span.SetStatus(codes.Ok, "")
	}
	p.span.End()
}
