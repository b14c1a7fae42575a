package render

import "github.com/vango-dev/reconcile/internal/errors"

// passQueue runs one pass at a time. A pass parked on pending subtrees
// keeps the queue until it commits or fails. Only the loop touches it.
type passQueue struct {
	active  bool
	waiting []queuedPass
}

type queuedPass struct {
	start func()
	abort func(error)
}

// enqueuePass starts a pass now or once the running one settles. It runs
// on the loop.
func (c *Container) enqueuePass(start func(), abort func(error)) {
	if c.passes.active {
		c.passes.waiting = append(c.passes.waiting, queuedPass{start: start, abort: abort})
		return
	}
	c.passes.active = true
	start()
}

// passSettled hands the queue to the next waiting pass.
func (c *Container) passSettled() {
	q := &c.passes
	if len(q.waiting) == 0 {
		q.active = false
		return
	}
	next := q.waiting[0]
	q.waiting = q.waiting[1:]
	if err := c.loop.Post(next.start); err != nil {
		rest := append([]queuedPass{next}, q.waiting...)
		q.waiting = nil
		q.active = false
		for _, w := range rest {
			w.abort(errors.New("R006").Wrap(err))
		}
	}
}
