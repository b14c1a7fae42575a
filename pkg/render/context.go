package render

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/metrics"
)

// Perf counts the work done by one pass.
type Perf struct {
	Visited            int // View nodes matched or created
	Created            int // Live nodes created
	Moved              int // Live nodes reordered
	Removed            int // Live nodes removed
	Patched            int // Elements whose props changed
	ComponentsRendered int // Render function invocations
	Operations         int // Queued operations
	Duration           time.Duration
}

// RenderContext is the record of one top-level Render call or scheduler
// batch. It is never shared across render roots.
type RenderContext struct {
	id       string
	kind     string
	roots    []dom.Node
	ops      []Operation
	errs     []error
	rendered []dom.Element
	perf     Perf

	pass *pass // nil once committed
}

// ID returns the pass id.
func (rc *RenderContext) ID() string { return rc.id }

// Kind returns "render" for Render calls and "batch" for scheduler batches.
func (rc *RenderContext) Kind() string { return rc.kind }

// Roots returns the render root or the dirty hosts of a batch.
func (rc *RenderContext) Roots() []dom.Node { return rc.roots }

// Operations returns the operations of the pass, in commit order.
func (rc *RenderContext) Operations() []Operation { return rc.ops }

// Errors returns the render, validation and commit errors of the pass.
func (rc *RenderContext) Errors() []error { return rc.errs }

// Rendered returns the hosts whose render function ran.
func (rc *RenderContext) Rendered() []dom.Element { return rc.rendered }

// Perf returns the pass counters.
func (rc *RenderContext) Perf() Perf { return rc.perf }

// Enqueue appends an operation to the log. apply runs at commit.
// Enqueue is meant for PropWriter implementations; it panics once the
// pass has committed.
func (rc *RenderContext) Enqueue(op Operation, apply func() error) {
	if rc.pass == nil {
		panic("render: Enqueue after commit")
	}
	op.apply = apply
	rc.ops = append(rc.ops, op)
	rc.perf.Operations++
}

// OnRollback registers fn to run if the pass fails before it commits.
// PropWriter implementations use it to undo bookkeeping kept outside the
// operation log. Rollbacks run in reverse registration order.
func (rc *RenderContext) OnRollback(fn func()) {
	if rc.pass != nil {
		rc.pass.undo = append(rc.pass.undo, fn)
	}
}

// Report records an error for the pass and logs it.
func (rc *RenderContext) Report(err error) {
	if rc.pass != nil {
		rc.pass.report(err)
		return
	}
	rc.errs = append(rc.errs, err)
}

// pass holds the working state of a RenderContext until it commits.
type pass struct {
	c   *Container
	rc  *RenderContext
	ctx context.Context

	span    trace.Span
	started time.Time
	release func()

	// covered hosts were rendered in this pass; discarded hosts sit in a
	// removed subtree.
	covered   map[dom.Element]bool
	discarded map[dom.Element]bool

	reservations []*reservation
	after        []func() // walk steps deferred behind reservations
	undo         []func()
	records      []*renderRecord
	templates    map[dom.Element]map[string]dom.Element

	onDone func(*RenderContext)
	onFail func(error)
	done   bool
}

func (c *Container) newPass(ctx context.Context, kind string, roots []dom.Node) *pass {
	if ctx == nil {
		ctx = context.Background()
	}
	p := &pass{
		c:         c,
		covered:   make(map[dom.Element]bool),
		discarded: make(map[dom.Element]bool),
		templates: make(map[dom.Element]map[string]dom.Element),
		started:   time.Now(),
	}
	p.rc = &RenderContext{
		id:    uuid.NewString(),
		kind:  kind,
		roots: roots,
		pass:  p,
	}
	// A pass waiting on pending subtrees is cancelled with its container.
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	p.release = func() {
		stop()
		cancel()
	}
	p.ctx, p.span = p.startSpan(ctx)
	return p
}

func (p *pass) enqueue(kind OpKind, target dom.Node, name string, value any, apply func() error) {
	p.rc.Enqueue(Operation{Kind: kind, Target: target, Name: name, Value: value}, apply)
}

// report records err and logs it at a level matching its category.
func (p *pass) report(err error) {
	p.rc.errs = append(p.rc.errs, err)

	var code string
	args := []any{"pass", p.rc.id}
	if e := errors.FromError(err, ""); e != nil {
		code = e.Code
		args = append(args, e.LogArgs()...)
	}
	args = append(args, "error", err)
	p.c.metrics.Error(code)

	switch errors.CategoryOf(err) {
	case errors.CategoryValidation, errors.CategoryCommit:
		p.c.logger.Warn("document write rejected", args...)
	default:
		p.c.logger.Error("render error", args...)
	}
}

// finish applies slot deltas, commits and settles the pass.
func (p *pass) finish() {
	if p.done {
		return
	}
	p.done = true

	p.queueSlotDeltas()
	if len(p.rc.ops) > 0 {
		p.commit()
	}
	p.rc.perf.Duration = time.Since(p.started)
	p.rc.pass = nil
	p.undo = nil
	p.release()

	p.endSpan()
	p.c.metrics.ObservePass(metrics.Pass{
		Kind:     p.rc.kind,
		Duration: p.rc.perf.Duration,
		Created:  p.rc.perf.Created,
		Moved:    p.rc.perf.Moved,
		Removed:  p.rc.perf.Removed,
	})
	if p.c.logger.Enabled(p.ctx, slog.LevelDebug) {
		p.c.logger.Debug("pass committed",
			"pass", p.rc.id,
			"kind", p.rc.kind,
			"operations", len(p.rc.ops),
			"rendered", len(p.rc.rendered),
			"errors", len(p.rc.errs),
			"duration", p.rc.perf.Duration)
	}
	for _, hook := range p.c.hooks {
		hook(p.rc)
	}
	if p.onDone != nil {
		p.onDone(p.rc)
	}
	p.c.passSettled()
}

// fail settles the pass with err without committing.
func (p *pass) fail(err error) {
	if p.done {
		return
	}
	p.done = true
	p.rc.pass = nil
	for i := len(p.undo) - 1; i >= 0; i-- {
		p.undo[i]()
	}
	p.undo = nil
	p.release()
	if e := errors.FromError(err, ""); e != nil {
		p.c.metrics.Error(e.Code)
	}
	p.c.logger.Error("pass failed", "pass", p.rc.id, "kind", p.rc.kind, "error", err)
	p.span.RecordError(err)
	p.span.End()
	if p.onFail != nil {
		p.onFail(err)
	}
	p.c.passSettled()
}

// run executes fn on behalf of the pass; a panic fails the pass instead
// of leaving its promise unsettled.
func (p *pass) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(errors.New("R020").WithDetailf("panic during pass: %v", r))
		}
	}()
	fn()
}
