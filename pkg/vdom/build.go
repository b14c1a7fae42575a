package vdom

import (
	"fmt"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/async"
)

// New creates a view node. typ is a tag name, FragmentType, HostType or a
// *ComponentRef; any other type is a structural error. A "key" prop is
// used when key is nil.
func New(typ any, props Props, key any, children ...any) (*Node, error) {
	n := &Node{Props: make(Props, len(props))}
	switch t := typ.(type) {
	case string:
		if t == "" {
			return nil, errors.New("R001").WithDetail("empty tag name")
		}
		n.Kind, n.Tag = KindElement, t
	case Marker:
		switch t {
		case FragmentType:
			n.Kind = KindFragment
		case HostType:
			n.Kind = KindHost
		default:
			return nil, errors.New("R001").WithDetailf("unknown marker %d", t)
		}
	case *ComponentRef:
		if t == nil || t.Name == "" {
			return nil, errors.New("R001").WithDetail("component reference without a name")
		}
		n.Kind, n.Comp, n.Tag = KindComponent, t, t.Tag()
	default:
		return nil, errors.New("R001").WithDetailf("unsupported type %T", typ)
	}

	for k, v := range props {
		if k == "key" {
			if key == nil {
				key = v
			}
			continue
		}
		n.Props[k] = v
	}
	n.Key = KeyString(key)
	if err := n.appendArgs(children); err != nil {
		return nil, err
	}
	return n, nil
}

// H is New that panics on structural errors.
func H(typ any, props Props, key any, children ...any) *Node {
	n, err := New(typ, props, key, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// appendArgs applies factory arguments. Arguments can be: nil, Attr,
// []Attr, Props, EventHandler, *Node, []*Node or string.
func (n *Node) appendArgs(args []any) error {
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			n.setAttr(v)
		case []Attr:
			for _, a := range v {
				n.setAttr(a)
			}
		case Props:
			for k, val := range v {
				n.setAttr(Attr{Key: k, Value: val})
			}
		case EventHandler:
			if v.Event != "" {
				n.Props[v.Event] = v.Handler
			}
		case *Node:
			if v != nil {
				n.Children = append(n.Children, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					n.Children = append(n.Children, c)
				}
			}
		case string:
			n.Children = append(n.Children, Text(v))
		default:
			return errors.New("R005").
				WithDetailf("argument %d of %s has type %T", i, n, arg).
				With("type", fmt.Sprintf("%T", arg))
		}
	}
	return nil
}

func (n *Node) setAttr(a Attr) {
	switch a.Key {
	case "":
		return
	case "key":
		n.Key = KeyString(a.Value)
	default:
		n.Props[a.Key] = a.Value
	}
}

// build is the factory constructor; malformed arguments are programmer
// errors and panic.
func build(kind Kind, tag string, args []any) *Node {
	n := &Node{Kind: kind, Tag: tag, Props: make(Props)}
	if err := n.appendArgs(args); err != nil {
		panic(err)
	}
	return n
}

// El creates an element with the given tag.
func El(tag string, args ...any) *Node {
	return build(KindElement, tag, args)
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	return build(KindFragment, "", children)
}

// Host describes the component's own host element: its props are applied
// to the host and its children become the host's content.
func Host(args ...any) *Node {
	return build(KindHost, "", args)
}

// SkipRender leaves the existing children of its parent untouched. When
// the parent is empty the fallback is rendered instead.
func SkipRender(fallback ...any) *Node {
	return build(KindSkip, "", fallback)
}

// Await renders the subtree p resolves to once it settles.
func Await(p *async.Promise[*Node]) *Node {
	return &Node{Kind: KindPending, Pending: p}
}

// Component creates a reference to a component. Attributes become its
// props; child nodes are projected into its slots.
func Component(ref *ComponentRef, args ...any) *Node {
	if ref == nil || ref.Name == "" {
		panic(errors.New("R001").WithDetail("component reference without a name"))
	}
	n := build(KindComponent, ref.Tag(), args)
	n.Comp = ref
	return n
}

// Slot declares a named projection point inside a component's output.
// The fallback is shown while nothing is projected into the slot.
func Slot(name string, fallback ...any) *Node {
	slot := El(SlotTag, Attr{Key: "name", Value: name})
	if len(fallback) > 0 {
		slot.Children = []*Node{El(FallbackTag, fallback...)}
	}
	return slot
}

// Reserved element tags.
const (
	SlotTag     = "q:slot"
	TemplateTag = "q:template"
	FallbackTag = "q:fallback"
)
