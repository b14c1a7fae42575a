package render

import (
	"sort"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// renderRecord tracks the slots of one component render in a pass.
type renderRecord struct {
	inst     *instance
	before   map[string]dom.Element // live slots when the render started
	declared map[string]dom.Element // slots the new output declared
}

// liveSlots returns the slot elements in the host subtree that belong to
// inst, by name.
func liveSlots(inst *instance) map[string]dom.Element {
	slots := make(map[string]dom.Element)
	var walk func(n dom.Node)
	walk = func(n dom.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			el, ok := dom.AsElement(c)
			if !ok {
				continue
			}
			if el.LocalName() == vdom.SlotTag {
				if ref, _ := el.GetAttribute(attrSlotRef); ref == inst.id {
					name, _ := el.GetAttribute("name")
					if _, seen := slots[name]; !seen {
						slots[name] = el
					}
				}
			}
			walk(el)
		}
	}
	walk(inst.host)
	return slots
}

// holdingElements returns the holding elements directly under host.
func holdingElements(host dom.Element) map[string]dom.Element {
	out := make(map[string]dom.Element)
	for c := host.FirstChild(); c != nil; c = c.NextSibling() {
		el, ok := dom.AsElement(c)
		if !ok || el.LocalName() != vdom.TemplateTag {
			continue
		}
		name, _ := el.GetAttribute(attrSlot)
		if _, seen := out[name]; !seen {
			out[name] = el
		}
	}
	return out
}

// project reconciles the children of a component node into the slots of
// its instance, or into holding elements for slots not declared yet.
func (p *pass) project(ws walkState, inst *instance, children []*vdom.Node) {
	nodes, waits, errs := vdom.Flatten(children)
	if len(waits) > 0 {
		p.reserve(waits, func() { p.project(ws, inst, children) })
		return
	}
	for _, err := range errs {
		p.asyncFailed(ws, inst.host, err)
	}
	if len(nodes) == 1 && nodes[0].Kind == vdom.KindSkip {
		return
	}

	groups := make(map[string][]*vdom.Node)
	names := make(map[string]bool, len(inst.projected))
	for _, n := range nodes {
		switch n.Kind {
		case vdom.KindSkip:
			continue
		case vdom.KindHost:
			p.report(errors.New("R005").
				WithDetailf("host node projected into %s", describe(inst.host)))
			continue
		}
		name, _ := n.Props[attrSlot].(string)
		groups[name] = append(groups[name], n)
		names[name] = true
	}
	for name := range inst.projected {
		names[name] = true
	}

	projected := make(map[string]bool, len(groups))
	slots := liveSlots(inst)
	for _, name := range sortedNames(names) {
		group := groups[name]
		if len(group) > 0 {
			projected[name] = true
		}
		target := p.slotTarget(inst, slots, name, len(group) > 0)
		if target == nil {
			continue
		}
		p.reconcileChildren(ws, target, modeSlot, group)
		if len(group) == 0 && target.LocalName() == vdom.TemplateTag {
			p.dropHolding(inst.host, name, target)
		}
	}
	inst.projected = projected
}

// slotTarget returns where content for the named slot goes: the live
// slot element, else a holding element. A holding element is created
// only when create is set.
func (p *pass) slotTarget(inst *instance, slots map[string]dom.Element, name string, create bool) dom.Element {
	if el, ok := slots[name]; ok {
		return el
	}
	if el, ok := p.templates[inst.host][name]; ok {
		return el
	}
	if el, ok := holdingElements(inst.host)[name]; ok {
		return el
	}
	if !create {
		return nil
	}
	el := p.c.doc.CreateElement(vdom.TemplateTag)
	p.rc.perf.Created++
	for _, a := range [][2]string{{attrSlot, name}, {"hidden", ""}, {"aria-hidden", "true"}} {
		k, v := a[0], a[1]
		p.enqueue(OpSetAttribute, el, k, v, func() error { return el.SetAttribute(k, v) })
	}
	host := inst.host
	p.insert(host, el, host.FirstChild)
	if p.templates[host] == nil {
		p.templates[host] = make(map[string]dom.Element)
	}
	p.templates[host][name] = el
	return el
}

func (p *pass) dropHolding(host dom.Element, name string, el dom.Element) {
	delete(p.templates[host], name)
	p.remove(host, el)
}

// queueSlotDeltas queues one content move per component render whose
// slot declarations may have changed.
func (p *pass) queueSlotDeltas() {
	for _, rec := range p.records {
		rec.inst.record = nil
		if p.discarded[rec.inst.host] || !p.needsDelta(rec) {
			continue
		}
		rec := rec
		p.enqueue(OpMoveContent, rec.inst.host, "", nil, func() error {
			return p.applySlotDelta(rec)
		})
	}
}

func (p *pass) needsDelta(rec *renderRecord) bool {
	if len(rec.before) != len(rec.declared) {
		return true
	}
	for name, el := range rec.before {
		if rec.declared[name] != el {
			return true
		}
	}
	holding := holdingElements(rec.inst.host)
	for name, el := range p.templates[rec.inst.host] {
		holding[name] = el
	}
	for name := range holding {
		if _, ok := rec.declared[name]; ok || !rec.inst.projected[name] {
			return true
		}
	}
	return false
}

// applySlotDelta moves projected content between slot and holding
// elements after the component's output has been committed.
func (p *pass) applySlotDelta(rec *renderRecord) error {
	inst := rec.inst
	after := liveSlots(inst)
	holding := holdingElements(inst.host)

	names := make(map[string]bool)
	for name := range rec.before {
		names[name] = true
	}
	for name := range after {
		names[name] = true
	}
	for name := range holding {
		names[name] = true
	}

	var errs []error
	for _, name := range sortedNames(names) {
		old, hadOld := rec.before[name]
		cur, hasCur := after[name]
		tmpl, hasTmpl := holding[name]
		switch {
		case hadOld && !hasCur && inst.projected[name]:
			if !hasTmpl {
				tmpl = p.c.doc.CreateElement(vdom.TemplateTag)
				errs = append(errs, tmpl.SetAttribute(attrSlot, name),
					tmpl.SetAttribute("hidden", ""),
					tmpl.SetAttribute("aria-hidden", "true"),
					inst.host.InsertBefore(tmpl, inst.host.FirstChild()))
				holding[name] = tmpl
			}
			errs = append(errs, moveContent(old, tmpl))
		case hadOld && hasCur && old != cur:
			errs = append(errs, moveContent(old, cur))
		}
		if hasCur && hasTmpl {
			errs = append(errs, moveContent(tmpl, cur), inst.host.RemoveChild(tmpl))
			delete(holding, name)
		}
	}
	for name, tmpl := range holding {
		if !inst.projected[name] {
			errs = append(errs, inst.host.RemoveChild(tmpl))
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// moveContent moves the projected children of from to the end of to.
// The fallback of a slot element stays where it is.
func moveContent(from, to dom.Element) error {
	var move []dom.Node
	for c := from.FirstChild(); c != nil; c = c.NextSibling() {
		if modeSlot.accepts(liveTag(c)) {
			move = append(move, c)
		}
	}
	for _, c := range move {
		if err := to.InsertBefore(c, nil); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
