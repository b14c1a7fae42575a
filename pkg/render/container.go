package render

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/loop"
	"github.com/vango-dev/reconcile/pkg/async"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Dispatcher serializes the document work of a container.
type Dispatcher = loop.Dispatcher

// CommitHook observes every committed pass. It runs on the container loop.
type CommitHook func(*RenderContext)

type containerKey struct{}

// Container owns a render root: its loop, scheduler, loader, prop writer
// and telemetry. All document work of a container runs on its loop.
type Container struct {
	root dom.Node
	doc  dom.Document

	loop      Dispatcher
	ownedLoop *loop.Loop
	sched     *scheduler
	passes    passQueue

	loader Loader
	writer PropWriter
	events EventRegistrar

	logger     *slog.Logger
	metrics    *metrics.Recorder
	tracer     trace.Tracer
	batchDelay time.Duration
	hooks      []CommitHook

	lastID atomic.Int64
	closed atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a container for root, which must be an element or a
// document.
func New(root dom.Node, opts ...Option) (*Container, error) {
	doc, err := rootDocument(root)
	if err != nil {
		return nil, err
	}
	if _, owned := root.UserData(containerKey{}).(*Container); owned {
		return nil, errors.New("R002").WithDetail("the root already has a container")
	}

	c := &Container{
		root:   root,
		doc:    doc,
		events: Listeners{},
		logger: slog.Default().With("component", "render"),
		tracer: otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewRegistry()
	}
	if c.writer == nil {
		c.writer = NewPatcher(c.events)
	}
	if c.loop == nil {
		c.ownedLoop = loop.New(loop.WithLogger(c.logger))
		c.loop = c.ownedLoop
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.sched = newScheduler(c)
	c.lastID.Store(maxHostID(root))

	root.SetUserData(containerKey{}, c)
	return c, nil
}

func rootDocument(root dom.Node) (dom.Document, error) {
	if root == nil {
		return nil, errors.New("R002").WithDetail("nil root")
	}
	switch root.NodeType() {
	case dom.DocumentNode:
		if doc, ok := root.(dom.Document); ok {
			return doc, nil
		}
	case dom.ElementNode:
		if doc := root.OwnerDocument(); doc != nil {
			return doc, nil
		}
	}
	return nil, errors.New("R002").WithDetailf("cannot render into %s", describe(root))
}

// maxHostID returns the largest numeric q:id under root, so ids of a
// hydrated document are never reused.
func maxHostID(root dom.Node) int64 {
	var max int64
	var walk func(n dom.Node)
	walk = func(n dom.Node) {
		if el, ok := dom.AsElement(n); ok {
			if v, ok := el.GetAttribute(attrID); ok {
				if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > max {
					max = id
				}
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(root)
	return max
}

func (c *Container) nextID() string {
	return strconv.FormatInt(c.lastID.Add(1), 10)
}

// ContainerOf returns the container whose root is n or an ancestor of n.
func ContainerOf(n dom.Node) *Container {
	for ; n != nil; n = n.ParentNode() {
		if c, ok := n.UserData(containerKey{}).(*Container); ok {
			return c
		}
	}
	return nil
}

// Root returns the render root.
func (c *Container) Root() dom.Node { return c.root }

// Render reconciles tree into the root. Rendering the same tree again
// produces no operations. Passes run one at a time in call order; a pass
// waiting on pending subtrees delays the ones queued after it.
func (c *Container) Render(ctx context.Context, tree *vdom.Node) *async.Promise[*RenderContext] {
	if c.closed.Load() {
		return async.Rejected[*RenderContext](errors.New("R006"))
	}
	promise, resolve, reject := async.New[*RenderContext]()
	err := c.loop.Post(func() {
		c.enqueuePass(func() {
			p := c.newPass(ctx, "render", []dom.Node{c.root})
			p.onDone, p.onFail = resolve, reject
			p.run(func() {
				ws := walkState{svg: isSVG(c.root)}
				p.reconcileChildren(ws, c.root, rootMode(c.root), []*vdom.Node{tree})
				p.drain()
			})
		}, reject)
	})
	if err != nil {
		reject(errors.New("R006").Wrap(err))
	}
	return promise
}

func isSVG(n dom.Node) bool {
	el, ok := dom.AsElement(n)
	return ok && el.NamespaceURI() == dom.NamespaceSVG && el.LocalName() != "foreignObject"
}

func rootMode(n dom.Node) childMode {
	if el, ok := dom.AsElement(n); ok {
		return modeFor(el)
	}
	return modeDefault
}

// NotifyRender marks the component hosted by host dirty. The promise
// settles once the batch that re-renders it has committed.
func (c *Container) NotifyRender(host dom.Element) (*async.Promise[*RenderContext], error) {
	if c.closed.Load() {
		return nil, errors.New("R006")
	}
	inst := instanceOf(host)
	if inst == nil || inst.c != c {
		e := errors.New("R003")
		if host != nil {
			e = e.With("element", describe(host))
		}
		return nil, e
	}
	return c.sched.notify(inst), nil
}

// Do runs fn on the container loop and waits for it to return.
func (c *Container) Do(ctx context.Context, fn func()) error {
	err := c.loop.Do(ctx, fn)
	if err == loop.ErrTerminated {
		return errors.New("R006").Wrap(err)
	}
	return err
}

// Close stops the container. Queued tasks still run; passes waiting on
// pending subtrees are cancelled.
func (c *Container) Close(ctx context.Context) error {
	if c.closed.Swap(true) {
		return errors.New("R006")
	}
	c.cancel()
	c.root.SetUserData(containerKey{}, nil)
	if c.ownedLoop != nil {
		return c.ownedLoop.Close(ctx)
	}
	return nil
}

// Render reconciles tree into parent with the container that owns it,
// creating one if needed, and waits for the commit.
func Render(ctx context.Context, parent dom.Node, tree *vdom.Node, opts ...Option) (*RenderContext, error) {
	var c *Container
	if parent != nil {
		c, _ = parent.UserData(containerKey{}).(*Container)
	}
	if c == nil {
		var err error
		if c, err = New(parent, opts...); err != nil {
			return nil, err
		}
	}
	return c.Render(ctx, tree).Await(ctx)
}
