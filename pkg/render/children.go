package render

import (
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// updateChildren is the four-pointer keyed diff. It walks the old live
// children and the new view nodes from both ends, matching heads and
// tails, then crossed ends, then keys; matched nodes are patched and moved,
// the rest are created or removed.
//
// Insertion references are resolved when the operations run, so each
// operation sees the tree left by the ones queued before it.
func (p *pass) updateChildren(ws walkState, parent dom.Node, oldCh []dom.Node, newCh []*vdom.Node) {
	oldStart, oldEnd := 0, len(oldCh)-1
	newStart, newEnd := 0, len(newCh)-1
	newElms := make([]dom.Node, len(newCh))

	var keyToIdx map[string]int
	for oldStart <= oldEnd && newStart <= newEnd {
		switch {
		case oldCh[oldStart] == nil:
			oldStart++
		case oldCh[oldEnd] == nil:
			oldEnd--
		case sameNode(oldCh[oldStart], newCh[newStart]):
			p.patch(ws, oldCh[oldStart], newCh[newStart])
			newElms[newStart] = oldCh[oldStart]
			oldStart++
			newStart++
		case sameNode(oldCh[oldEnd], newCh[newEnd]):
			p.patch(ws, oldCh[oldEnd], newCh[newEnd])
			newElms[newEnd] = oldCh[oldEnd]
			oldEnd--
			newEnd--
		case sameNode(oldCh[oldStart], newCh[newEnd]):
			// Old head moves after the old tail.
			moved, anchor := oldCh[oldStart], oldCh[oldEnd]
			p.patch(ws, moved, newCh[newEnd])
			p.insert(parent, moved, anchor.NextSibling)
			p.rc.perf.Moved++
			newElms[newEnd] = moved
			oldStart++
			newEnd--
		case sameNode(oldCh[oldEnd], newCh[newStart]):
			// Old tail moves before the old head.
			moved, anchor := oldCh[oldEnd], oldCh[oldStart]
			p.patch(ws, moved, newCh[newStart])
			p.insert(parent, moved, func() dom.Node { return anchor })
			p.rc.perf.Moved++
			newElms[newStart] = moved
			oldEnd--
			newStart++
		default:
			if keyToIdx == nil {
				keyToIdx = make(map[string]int)
				for i := oldStart; i <= oldEnd; i++ {
					if oldCh[i] == nil {
						continue
					}
					if k := liveKey(oldCh[i]); k != "" {
						keyToIdx[k] = i
					}
				}
			}
			anchor := oldCh[oldStart]
			n := newCh[newStart]
			idx, found := -1, false
			if n.Key != "" {
				idx, found = keyToIdx[n.Key]
			}
			if found && oldCh[idx] != nil && sameNode(oldCh[idx], n) {
				moved := oldCh[idx]
				p.patch(ws, moved, n)
				oldCh[idx] = nil
				p.insert(parent, moved, func() dom.Node { return anchor })
				p.rc.perf.Moved++
				newElms[newStart] = moved
			} else {
				// New key, or same key with a different tag.
				created := p.create(ws, n)
				p.insert(parent, created, func() dom.Node { return anchor })
				newElms[newStart] = created
			}
			newStart++
		}
	}

	if oldStart > oldEnd {
		var before dom.Node
		if newEnd+1 < len(newElms) {
			before = newElms[newEnd+1]
		}
		for i := newStart; i <= newEnd; i++ {
			created := p.create(ws, newCh[i])
			newElms[i] = created
			p.insert(parent, created, refTo(before))
		}
		return
	}
	for i := oldStart; i <= oldEnd; i++ {
		if oldCh[i] != nil {
			p.remove(parent, oldCh[i])
		}
	}
}

func refTo(n dom.Node) func() dom.Node {
	if n == nil {
		return nil
	}
	return func() dom.Node { return n }
}
