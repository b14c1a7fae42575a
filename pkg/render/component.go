package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/async"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// RenderFn renders a component. It may return a vdom.Await node for an
// async output, nil for no output, or a vdom.Host node whose props are
// applied to the host element.
type RenderFn func(s *Scope, props vdom.Props) (*vdom.Node, error)

// Loader resolves component references to render functions.
type Loader interface {
	Resolve(ref *vdom.ComponentRef) *async.Promise[RenderFn]
}

// Registry is a Loader backed by a name table. Lazy entries load on a
// goroutine the first time they are resolved.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	load    func() (RenderFn, error)
	once    sync.Once
	promise *async.Promise[RenderFn]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Register adds a component and returns a reference to it.
func (r *Registry) Register(name string, fn RenderFn) *vdom.ComponentRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &registryEntry{promise: async.Resolved(fn)}
	return &vdom.ComponentRef{Name: name}
}

// RegisterLazy adds a component whose render function is loaded on
// first use.
func (r *Registry) RegisterLazy(name string, load func() (RenderFn, error)) *vdom.ComponentRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &registryEntry{load: load}
	return &vdom.ComponentRef{Name: name}
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve implements Loader.
func (r *Registry) Resolve(ref *vdom.ComponentRef) *async.Promise[RenderFn] {
	r.mu.Lock()
	e, ok := r.entries[ref.Name]
	r.mu.Unlock()
	if !ok {
		return async.Rejected[RenderFn](errors.New("R004").With("component", ref.Name))
	}
	e.once.Do(func() {
		if e.promise == nil {
			e.promise = async.Go(e.load)
		}
	})
	return e.promise
}

// instance is the state of one mounted component, stored on its host.
type instance struct {
	id   string
	host dom.Element
	ref  *vdom.ComponentRef
	svg  bool
	c    *Container

	props      vdom.Props // component props
	parentHost vdom.Props // host props passed by the parent
	ownHost    vdom.Props // host props from the component's own output
	projected  map[string]bool
	state      map[string]any
	fn         *async.Promise[RenderFn]

	record *renderRecord // set while rendered by the current pass
}

type instanceKey struct{}

func instanceOf(n dom.Node) *instance {
	if n == nil {
		return nil
	}
	inst, _ := n.UserData(instanceKey{}).(*instance)
	return inst
}

func (inst *instance) declareSlot(name string, el dom.Element) {
	if inst.record != nil {
		inst.record.declared[name] = el
	}
}

// mount attaches a new instance to host. A host hydrated from markup
// keeps its q:id.
func (p *pass) mount(host dom.Element, ref *vdom.ComponentRef, svg bool) *instance {
	inst := &instance{
		host:      host,
		ref:       ref,
		svg:       svg,
		c:         p.c,
		projected: make(map[string]bool),
		state:     make(map[string]any),
	}
	if id, ok := host.GetAttribute(attrID); ok && id != "" {
		inst.id = id
	} else {
		inst.id = p.c.nextID()
		id := inst.id
		p.enqueue(OpSetAttribute, host, attrID, id, func() error {
			return host.SetAttribute(attrID, id)
		})
	}
	if !host.HasAttribute(attrHost) {
		p.enqueue(OpSetAttribute, host, attrHost, "", func() error {
			return host.SetAttribute(attrHost, "")
		})
	}
	prev := host.UserData(instanceKey{})
	host.SetUserData(instanceKey{}, inst)
	p.rc.OnRollback(func() { host.SetUserData(instanceKey{}, prev) })
	return inst
}

// splitProps separates host: props from component props.
func splitProps(props vdom.Props) (host, comp vdom.Props) {
	host, comp = make(vdom.Props), make(vdom.Props)
	for k, v := range props {
		if name, ok := strings.CutPrefix(k, vdom.HostPrefix); ok {
			host[name] = v
			continue
		}
		comp[k] = v
	}
	return host, comp
}

// visitComponent patches a component node into its host element.
func (p *pass) visitComponent(ws walkState, host dom.Element, n *vdom.Node, created bool) {
	inst := instanceOf(host)
	if inst == nil {
		inst = p.mount(host, n.Comp, ws.svg)
		created = true
	}
	oldRef, oldProps, oldHost := inst.ref, inst.props, inst.parentHost
	p.rc.OnRollback(func() {
		inst.ref, inst.props, inst.parentHost = oldRef, oldProps, oldHost
	})
	inst.ref = n.Comp

	parentHost, props := splitProps(n.Props)
	changed := created || !sameProps(inst.props, props)
	inst.props = props
	inst.parentHost = parentHost
	p.writeHost(inst)

	p.project(ws, inst, n.Children)
	if changed && !p.covered[host] {
		p.renderComponent(inst)
	}
}

// writeHost applies the merged host props: the parent's, then the
// component's own, plus the scoped host class.
func (p *pass) writeHost(inst *instance) {
	props := make(vdom.Props, len(inst.parentHost)+len(inst.ownHost)+1)
	for k, v := range inst.parentHost {
		props[k] = v
	}
	for k, v := range inst.ownHost {
		props[k] = v
	}
	classes := []any{inst.parentHost["class"], inst.ownHost["class"]}
	if inst.ref.StyleID != "" {
		classes = append(classes, hostClassPrefix+inst.ref.StyleID)
	}
	props["class"] = vdom.NormalizeClass(classes)
	if p.c.writer.ApplyProps(p.rc, inst.host, props, inst.svg) {
		p.rc.perf.Patched++
	}
}

// renderComponent runs the component's render function and reconciles
// its output into the host.
func (p *pass) renderComponent(inst *instance) {
	p.covered[inst.host] = true
	rec := &renderRecord{
		inst:     inst,
		before:   liveSlots(inst),
		declared: make(map[string]dom.Element),
	}
	inst.record = rec
	p.records = append(p.records, rec)
	p.rc.rendered = append(p.rc.rendered, inst.host)

	if inst.fn == nil {
		inst.fn = p.c.loader.Resolve(inst.ref)
	}
	p.withRenderFn(inst)
}

func (p *pass) withRenderFn(inst *instance) {
	if !inst.fn.Settled() {
		p.reserve([]async.Awaitable{inst.fn}, func() { p.withRenderFn(inst) })
		return
	}
	fn, err := inst.fn.Result()
	if err != nil {
		inst.fn = nil
		code := "R021"
		if errors.Is(err, "R004") {
			code = "R004"
		}
		p.renderFailed(inst, code, err)
		return
	}
	out, err := p.invoke(inst, fn)
	if err != nil {
		p.renderFailed(inst, "R020", err)
		return
	}
	p.applyOutput(inst, out)
}

func (p *pass) invoke(inst *instance, fn RenderFn) (out *vdom.Node, err error) {
	p.rc.perf.ComponentsRendered++
	p.c.metrics.ComponentRendered(inst.ref.Name)
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	if fn == nil {
		return nil, fmt.Errorf("nil render function")
	}
	return fn(&Scope{inst: inst}, inst.props)
}

// applyOutput reconciles a render result into the host.
func (p *pass) applyOutput(inst *instance, out *vdom.Node) {
	if out != nil && out.Kind == vdom.KindPending {
		if out.Pending == nil {
			p.applyOutput(inst, nil)
			return
		}
		if !out.Pending.Settled() {
			p.reserve([]async.Awaitable{out.Pending}, func() { p.applyOutput(inst, out) })
			return
		}
		v, err := out.Pending.Result()
		if err != nil {
			p.renderFailed(inst, "R021", err)
			return
		}
		p.applyOutput(inst, v)
		return
	}

	children := []*vdom.Node{out}
	if out != nil && out.Kind == vdom.KindHost {
		inst.ownHost = out.Props.Clone()
		p.writeHost(inst)
		children = out.Children
	} else if inst.ownHost != nil {
		inst.ownHost = nil
		p.writeHost(inst)
	}

	ws := walkState{inst: inst, svg: inst.svg && inst.host.LocalName() != "foreignObject"}
	if inst.ref.StyleID != "" {
		ws.scope = contentClassPrefix + inst.ref.StyleID
	}
	p.reconcileChildren(ws, inst.host, modeRoot, children)
}

func (p *pass) renderFailed(inst *instance, code string, err error) {
	var e *errors.Error
	if re, ok := err.(*errors.Error); ok && re.Code == code {
		// Copied: a rejected loader promise hands out the same error on
		// every resolve.
		cp := *re
		cp.Fields = append([]errors.Field(nil), re.Fields...)
		e = &cp
	} else {
		e = errors.New(code).Wrap(err)
	}
	p.report(e.With("component", inst.ref.Name).With("host", inst.id))
}

// renderHost re-renders a dirty host for a scheduler batch. A panic is
// contained to the host.
func (p *pass) renderHost(inst *instance) {
	defer func() {
		if r := recover(); r != nil {
			p.renderFailed(inst, "R020", fmt.Errorf("panic: %v", r))
		}
	}()
	p.renderComponent(inst)
}

// Scope is the view of a component instance given to its render function.
type Scope struct {
	inst *instance
}

// ID returns the container-unique host id.
func (s *Scope) ID() string { return s.inst.id }

// Host returns the host element.
func (s *Scope) Host() dom.Element { return s.inst.host }

// Props returns the current component props.
func (s *Scope) Props() vdom.Props { return s.inst.props }

// State returns the per-instance state map. It survives re-renders.
func (s *Scope) State() map[string]any { return s.inst.state }

// NotifyRender schedules a re-render of the component.
func (s *Scope) NotifyRender() *async.Promise[*RenderContext] {
	return s.inst.c.sched.notify(s.inst)
}
