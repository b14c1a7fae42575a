package vdom

import "github.com/vango-dev/reconcile/pkg/async"

// Flatten returns the nodes a children list contributes to its parent:
// nil entries are dropped, fragments are inlined recursively and settled
// pending nodes are replaced by their result.
//
// waits lists the unsettled promises blocking the list; while it is
// non-empty the returned nodes are incomplete. errs holds the rejections
// of settled pending nodes, which contribute nothing.
func Flatten(children []*Node) (nodes []*Node, waits []async.Awaitable, errs []error) {
	var walk func([]*Node)
	walk = func(list []*Node) {
		for _, c := range list {
			if c == nil {
				continue
			}
			switch c.Kind {
			case KindFragment:
				walk(c.Children)
			case KindPending:
				if c.Pending == nil {
					continue
				}
				if !c.Pending.Settled() {
					waits = append(waits, c.Pending)
					continue
				}
				v, err := c.Pending.Result()
				if err != nil {
					errs = append(errs, err)
					continue
				}
				walk([]*Node{v})
			default:
				nodes = append(nodes, c)
			}
		}
	}
	walk(children)
	return nodes, waits, errs
}

// Walk calls fn for every node in the tree rooted at n, parents first.
// Pending nodes are not resolved.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
