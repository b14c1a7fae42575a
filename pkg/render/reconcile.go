package render

import (
	"strings"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Marker attributes on live elements.
const (
	attrHost    = "q:host"
	attrID      = "q:id"
	attrKey     = "q:key"
	attrStatic  = "q:static"
	attrSlotRef = "q:sref"
	attrSlot    = "q:slot"
)

// Scoped style class prefixes.
const (
	hostClassPrefix    = "💎"
	contentClassPrefix = "⭐️"
)

// childMode selects which live children of a parent the diff manages.
type childMode uint8

const (
	modeDefault  childMode = iota // elements and text
	modeRoot                      // host content: everything but holding elements
	modeSlot                      // projected content: everything but the fallback
	modeFallback                  // inside a slot element: only the fallback
)

func (m childMode) String() string {
	switch m {
	case modeRoot:
		return "root"
	case modeSlot:
		return "slot"
	case modeFallback:
		return "fallback"
	default:
		return "default"
	}
}

// accepts reports whether a child named tag ("#text" for text) belongs to
// the mode.
func (m childMode) accepts(tag string) bool {
	switch m {
	case modeRoot:
		return tag != vdom.TemplateTag
	case modeSlot:
		return tag != vdom.FallbackTag
	case modeFallback:
		return tag == vdom.FallbackTag
	default:
		return true
	}
}

// modeFor returns the mode for the children of a live element.
func modeFor(el dom.Element) childMode {
	switch {
	case el.HasAttribute(attrHost):
		return modeRoot
	case el.LocalName() == vdom.SlotTag:
		return modeFallback
	case el.LocalName() == vdom.TemplateTag:
		return modeSlot
	default:
		return modeDefault
	}
}

// walkState is the immutable context of the walk below a node.
type walkState struct {
	inst  *instance // component whose output is being walked
	svg   bool
	scope string // content scoped-style class
}

// managedChildren returns the live children of parent the mode manages.
func managedChildren(parent dom.Node, mode childMode) []dom.Node {
	var out []dom.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.NodeType() {
		case dom.ElementNode, dom.TextNode:
			if mode.accepts(liveTag(c)) {
				out = append(out, c)
			}
		}
	}
	return out
}

func liveTag(n dom.Node) string {
	if el, ok := dom.AsElement(n); ok {
		return el.LocalName()
	}
	return vdom.TextTag
}

func liveKey(n dom.Node) string {
	if el, ok := dom.AsElement(n); ok {
		k, _ := el.GetAttribute(attrKey)
		return k
	}
	return ""
}

// sameNode reports whether the live node can be patched into n.
func sameNode(old dom.Node, n *vdom.Node) bool {
	if !strings.EqualFold(liveTag(old), n.MatchTag()) || liveKey(old) != n.Key {
		return false
	}
	el, isEl := dom.AsElement(old)
	if !isEl {
		return n.Kind == vdom.KindText
	}
	if n.Kind == vdom.KindComponent {
		if inst := instanceOf(el); inst != nil {
			return inst.ref.Name == n.Comp.Name
		}
		return el.HasAttribute(attrHost)
	}
	return n.Kind == vdom.KindElement && !el.HasAttribute(attrHost)
}

// reconcileChildren makes the managed children of parent match children.
// A list blocked on unsettled promises is reserved and retried once they
// settle; until then parent keeps its current children.
func (p *pass) reconcileChildren(ws walkState, parent dom.Node, mode childMode, children []*vdom.Node) {
	nodes, waits, errs := vdom.Flatten(children)
	if len(waits) > 0 {
		p.reserve(waits, func() { p.reconcileChildren(ws, parent, mode, children) })
		return
	}
	for _, err := range errs {
		p.asyncFailed(ws, parent, err)
	}

	if len(nodes) == 1 && nodes[0].Kind == vdom.KindSkip {
		if len(managedChildren(parent, mode)) > 0 {
			return
		}
		p.reconcileChildren(ws, parent, mode, nodes[0].Children)
		return
	}

	wanted := make([]*vdom.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case vdom.KindSkip:
			continue
		case vdom.KindHost:
			p.report(errors.New("R005").
				WithDetailf("host node under %s; it is only valid as a component's output", describe(parent)))
			continue
		}
		if mode.accepts(n.MatchTag()) {
			wanted = append(wanted, n)
		}
	}
	p.updateChildren(ws, parent, managedChildren(parent, mode), wanted)
}

func (p *pass) asyncFailed(ws walkState, parent dom.Node, err error) {
	e := errors.New("R021").With("parent", describe(parent))
	if ws.inst != nil {
		e = e.With("component", ws.inst.ref.Name).With("host", ws.inst.id)
	}
	p.report(e.Wrap(err))
}

// patch updates the live node old to match n; sameNode(old, n) holds.
func (p *pass) patch(ws walkState, old dom.Node, n *vdom.Node) {
	p.rc.perf.Visited++
	switch n.Kind {
	case vdom.KindText:
		t, ok := old.(dom.CharacterData)
		if !ok || t.Data() == n.Text {
			return
		}
		text := n.Text
		p.enqueue(OpSetText, t, "", text, func() error {
			t.SetData(text)
			return nil
		})
	case vdom.KindComponent:
		el, _ := dom.AsElement(old)
		p.visitComponent(ws, el, n, false)
	case vdom.KindElement:
		el, _ := dom.AsElement(old)
		p.patchElement(ws, el, n)
	}
}

// create builds the live node for n. Node creation is immediate; the
// node's attributes and children are queued.
func (p *pass) create(ws walkState, n *vdom.Node) dom.Node {
	p.rc.perf.Visited++
	p.rc.perf.Created++
	doc := p.c.doc
	switch n.Kind {
	case vdom.KindText:
		return doc.CreateTextNode(n.Text)
	case vdom.KindComponent:
		el := p.newElement(ws, n.MatchTag())
		p.setKey(el, n.Key)
		p.visitComponent(ws, el, n, true)
		return el
	default:
		el := p.newElement(ws, n.Tag)
		p.setKey(el, n.Key)
		p.patchElement(ws, el, n)
		return el
	}
}

func (p *pass) newElement(ws walkState, tag string) dom.Element {
	if ws.svg || tag == "svg" {
		return p.c.doc.CreateElementNS(dom.NamespaceSVG, tag)
	}
	return p.c.doc.CreateElement(tag)
}

func (p *pass) setKey(el dom.Element, key string) {
	if key == "" {
		return
	}
	p.enqueue(OpSetAttribute, el, attrKey, key, func() error {
		return el.SetAttribute(attrKey, key)
	})
}

// patchElement writes n's props on el and reconciles its children.
func (p *pass) patchElement(ws walkState, el dom.Element, n *vdom.Node) {
	props := n.Props
	if n.Tag == vdom.SlotTag && ws.inst != nil {
		props = props.Clone()
		props[attrSlotRef] = ws.inst.id
		ws.inst.declareSlot(slotName(n), el)
	}
	if ws.scope != "" {
		props = props.Clone()
		props["class"] = vdom.NormalizeClass([]any{n.Props["class"], ws.scope})
	}

	isSVG := ws.svg || n.Tag == "svg"
	if p.c.writer.ApplyProps(p.rc, el, props, isSVG) {
		p.rc.perf.Patched++
	}
	if _, static := n.Props["innerHTML"]; static {
		return
	}

	child := ws
	child.svg = isSVG && n.Tag != "foreignObject"
	mode := modeDefault
	if n.Tag == vdom.SlotTag {
		mode = modeFallback
	}
	p.reconcileChildren(child, el, mode, n.Children)
}

// remove queues the removal of a live child and discards the component
// hosts inside it.
func (p *pass) remove(parent, child dom.Node) {
	p.rc.perf.Removed++
	p.discardSubtree(child)
	p.enqueue(OpRemove, parent, "", child, func() error {
		cur := child.ParentNode()
		if cur == nil {
			return nil
		}
		return cur.RemoveChild(child)
	})
}

// insert queues an insertion; ref is resolved when the operation runs.
func (p *pass) insert(parent, child dom.Node, ref func() dom.Node) {
	p.enqueue(OpInsertBefore, parent, "", child, func() error {
		var r dom.Node
		if ref != nil {
			r = ref()
		}
		return parent.InsertBefore(child, r)
	})
}

func (p *pass) discardSubtree(n dom.Node) {
	if el, ok := dom.AsElement(n); ok && instanceOf(el) != nil {
		p.discarded[el] = true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.discardSubtree(c)
	}
}

func slotName(n *vdom.Node) string {
	name, _ := n.Props["name"].(string)
	return name
}
