package render

import (
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/async"
)

// reservation is a branch of the walk blocked on unsettled promises. The
// parent keeps its place; resume re-enters the walk with the state the
// branch was reserved with.
type reservation struct {
	waits  []async.Awaitable
	resume func()
}

func (p *pass) reserve(waits []async.Awaitable, resume func()) {
	p.reservations = append(p.reservations, &reservation{waits: waits, resume: resume})
	p.c.metrics.PendingAdded(1)
}

// drain runs reservations until none remain, then the deferred steps in
// order, then finishes the pass. Unsettled promises are awaited together
// on a helper goroutine; the walk always resumes on the container loop.
func (p *pass) drain() {
	for {
		if len(p.reservations) > 0 {
			batch := p.reservations
			var waits []async.Awaitable
			for _, r := range batch {
				waits = append(waits, r.waits...)
			}
			if !async.AllSettled(waits...) {
				go p.await(waits)
				return
			}
			p.resume(batch)
			continue
		}
		if len(p.after) == 0 {
			break
		}
		next := p.after[0]
		p.after = p.after[1:]
		next()
	}
	p.finish()
}

func (p *pass) await(waits []async.Awaitable) {
	err := async.WaitAll(p.ctx, waits...)
	posted := p.c.loop.Post(func() {
		p.run(func() {
			if err != nil {
				p.c.metrics.PendingSettled(len(p.reservations))
				p.reservations = nil
				p.after = nil
				p.fail(errors.New("R022").Wrap(err))
				return
			}
			p.drain()
		})
	})
	if posted != nil {
		p.fail(errors.New("R006").Wrap(posted))
	}
}

// resume clears the current reservations and re-enters them in
// registration order. Nested reservations queue for the next round.
func (p *pass) resume(batch []*reservation) {
	p.reservations = nil
	p.c.metrics.PendingSettled(len(batch))
	for _, r := range batch {
		r.resume()
	}
}
