package render

import (
	"sort"
	"sync"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/async"
	"github.com/vango-dev/reconcile/pkg/dom"
)

// hostSet is an insertion-ordered set of dirty instances.
type hostSet struct {
	list []*instance
	seen map[*instance]bool
}

func (h *hostSet) add(inst *instance) {
	if h.seen == nil {
		h.seen = make(map[*instance]bool)
	}
	if h.seen[inst] {
		return
	}
	h.seen[inst] = true
	h.list = append(h.list, inst)
}

func (h *hostSet) len() int { return len(h.list) }

func (h *hostSet) take() []*instance {
	list := h.list
	h.list, h.seen = nil, nil
	return list
}

// batch is the promise handed out for one scheduler batch.
type batch struct {
	promise *async.Promise[*RenderContext]
	resolve func(*RenderContext)
	reject  func(error)
}

func newBatch() *batch {
	p, resolve, reject := async.New[*RenderContext]()
	return &batch{promise: p, resolve: resolve, reject: reject}
}

// scheduler coalesces render notifications into batches. Hosts notified
// while a batch runs are staged for the batch after it.
type scheduler struct {
	c *Container

	mu        sync.Mutex
	next      hostSet
	staging   hostSet
	rendering map[*instance]bool // hosts of the running batch; nil when idle
	pending   *batch             // promise of the next batch, once scheduled
	current   *batch // promise of the running batch
}

func newScheduler(c *Container) *scheduler {
	return &scheduler{c: c}
}

func (s *scheduler) notify(inst *instance) *async.Promise[*RenderContext] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rendering != nil {
		delete(s.rendering, inst)
		s.staging.add(inst)
		return s.current.promise
	}
	s.next.add(inst)
	if s.pending == nil {
		return s.schedule().promise
	}
	return s.pending.promise
}

// schedule posts the next batch; s.mu is held.
func (s *scheduler) schedule() *batch {
	b := newBatch()
	s.pending = b
	start := func() { s.c.enqueuePass(s.run, s.abort) }
	if s.c.batchDelay > 0 {
		s.c.loop.PostAfter(s.c.batchDelay, start)
		return b
	}
	if err := s.c.loop.Post(start); err != nil {
		s.pending = nil
		s.next.take()
		b.reject(errors.New("R006").Wrap(err))
	}
	return b
}

// abort rejects a scheduled batch that never got to run.
func (s *scheduler) abort(err error) {
	s.mu.Lock()
	b := s.pending
	s.pending = nil
	s.next.take()
	s.mu.Unlock()
	if b != nil {
		b.reject(err)
	}
}

// run executes one batch on the loop.
func (s *scheduler) run() {
	s.mu.Lock()
	hosts := s.next.take()
	s.current, s.pending = s.pending, nil
	s.rendering = make(map[*instance]bool, len(hosts))
	for _, inst := range hosts {
		s.rendering[inst] = true
	}
	s.mu.Unlock()

	s.c.metrics.ObserveBatch(len(hosts))
	// Parents first: a parent render may discard or cover a descendant.
	sort.SliceStable(hosts, func(i, j int) bool {
		return dom.DocumentOrder(hosts[i].host, hosts[j].host)
	})
	roots := make([]dom.Node, len(hosts))
	for i, inst := range hosts {
		roots[i] = inst.host
	}

	p := s.c.newPass(s.c.ctx, "batch", roots)
	p.onDone = func(rc *RenderContext) { s.finish(rc, nil) }
	p.onFail = func(err error) { s.finish(nil, err) }
	// A host whose render left pending subtrees may still discard or cover
	// the hosts after it, so those wait until its reservations resolve.
	var step func(i int)
	step = func(i int) {
		for ; i < len(hosts); i++ {
			inst := hosts[i]
			if p.covered[inst.host] || p.discarded[inst.host] || !dom.Contains(s.c.root, inst.host) {
				continue
			}
			p.renderHost(inst)
			if len(p.reservations) > 0 && containsLater(inst, hosts[i+1:]) {
				next := i + 1
				p.after = append(p.after, func() { step(next) })
				return
			}
		}
	}
	p.run(func() {
		step(0)
		p.drain()
	})
}

func containsLater(inst *instance, later []*instance) bool {
	for _, l := range later {
		if dom.Contains(inst.host, l.host) {
			return true
		}
	}
	return false
}

// finish settles the running batch and promotes the staged hosts.
func (s *scheduler) finish(rc *RenderContext, err error) {
	s.mu.Lock()
	b := s.current
	s.current = nil
	s.rendering = nil
	if s.staging.len() > 0 {
		for _, inst := range s.staging.take() {
			s.next.add(inst)
		}
		if s.pending == nil {
			s.schedule()
		}
	}
	s.mu.Unlock()

	if b == nil {
		return
	}
	if err != nil {
		b.reject(err)
		return
	}
	b.resolve(rc)
}
