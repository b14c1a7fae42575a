package render

import (
	"fmt"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
)

// OpKind identifies the kind of a queued document operation.
type OpKind uint8

const (
	OpInsertBefore OpKind = iota
	OpRemove
	OpSetAttribute
	OpRemoveAttribute
	OpSetProperty
	OpSetStyle
	OpRemoveStyle
	OpSetText
	OpSetInnerHTML
	OpSetListener
	OpMoveContent
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemove:
		return "Remove"
	case OpSetAttribute:
		return "SetAttribute"
	case OpRemoveAttribute:
		return "RemoveAttribute"
	case OpSetProperty:
		return "SetProperty"
	case OpSetStyle:
		return "SetStyle"
	case OpRemoveStyle:
		return "RemoveStyle"
	case OpSetText:
		return "SetText"
	case OpSetInnerHTML:
		return "SetInnerHTML"
	case OpSetListener:
		return "SetListener"
	case OpMoveContent:
		return "MoveContent"
	default:
		return "Unknown"
	}
}

// Operation is one deferred document mutation.
type Operation struct {
	Kind   OpKind
	Target dom.Node // Node the operation mutates
	Name   string   // Attribute, property, style or listener name
	Value  any      // New value; the inserted or removed node for tree operations

	apply func() error
}

func (o Operation) String() string {
	target := describe(o.Target)
	switch o.Kind {
	case OpInsertBefore, OpRemove:
		return fmt.Sprintf("%s %s %s", o.Kind, target, describeValue(o.Value))
	case OpMoveContent, OpSetInnerHTML, OpSetText:
		return fmt.Sprintf("%s %s", o.Kind, target)
	default:
		return fmt.Sprintf("%s %s %s=%v", o.Kind, target, o.Name, o.Value)
	}
}

func describeValue(v any) string {
	if n, ok := v.(dom.Node); ok {
		return describe(n)
	}
	return fmt.Sprint(v)
}

// describe returns a short label for a live node, used in logs.
func describe(n dom.Node) string {
	if n == nil {
		return "<nil>"
	}
	el, ok := dom.AsElement(n)
	if !ok {
		return n.NodeName()
	}
	label := "<" + el.LocalName()
	if id, ok := el.GetAttribute(attrID); ok {
		label += " q:id=" + id
	}
	if key, ok := el.GetAttribute(attrKey); ok {
		label += " q:key=" + key
	}
	return label + ">"
}

// commit runs the queued operations in order, exactly once. A failing
// operation is reported and skipped.
func (p *pass) commit() {
	for i := range p.rc.ops {
		op := &p.rc.ops[i]
		if err := runOp(op); err != nil {
			p.commitFailed(op, err)
			continue
		}
		p.c.metrics.ObserveOperation(op.Kind.String())
	}
	for i := range p.rc.ops {
		p.rc.ops[i].apply = nil
	}
}

func runOp(op *Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if op.apply == nil {
		return nil
	}
	return op.apply()
}

func (p *pass) commitFailed(op *Operation, err error) {
	p.c.metrics.CommitFailed()
	if errors.CategoryOf(err) == errors.CategoryValidation {
		p.report(err)
		return
	}
	p.report(errors.New("R060").
		With("op", op.Kind.String()).
		With("target", describe(op.Target)).
		Wrap(err))
}
