package vdom

import (
	"fmt"

	"github.com/vango-dev/reconcile/pkg/async"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindHost                  // Props and children for the enclosing component's host
	KindComponent             // Component reference
	KindSkip                  // Leave existing children untouched
	KindPending               // Subtree behind a promise
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindHost:
		return "Host"
	case KindComponent:
		return "Component"
	case KindSkip:
		return "Skip"
	case KindPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// TextTag is the tag a text node is matched by.
const TextTag = "#text"

// Node is a view node.
type Node struct {
	Kind     Kind
	Tag      string   // Element tag name (e.g., "div"); host tag for components
	Props    Props    // Attributes and event handlers
	Children []*Node  // Child nodes; projected children for components
	Key      string   // Reconciliation key, "" when absent
	Text     string   // For KindText
	Comp     *ComponentRef
	Pending  *async.Promise[*Node]
}

// Props holds attributes and event handlers.
type Props map[string]any

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// MatchTag returns the tag used to match n against live nodes.
func (n *Node) MatchTag() string {
	switch n.Kind {
	case KindText:
		return TextTag
	case KindComponent:
		return n.Comp.Tag()
	default:
		return n.Tag
	}
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindText:
		return fmt.Sprintf("Text(%q)", n.Text)
	case KindComponent:
		return fmt.Sprintf("Component(%s)", n.Comp.Name)
	case KindElement:
		if n.Key != "" {
			return fmt.Sprintf("<%s key=%q>", n.Tag, n.Key)
		}
		return "<" + n.Tag + ">"
	default:
		return n.Kind.String()
	}
}

// Marker identifies the fragment and host node types passed to New.
type Marker uint8

const (
	FragmentType Marker = iota + 1
	HostType
)

// ComponentRef names a component. The loader resolves it to a render
// function.
type ComponentRef struct {
	Name string
	// HostTag is the tag of the host element, "div" when empty.
	HostTag string
	// StyleID scopes the component's styles; hosts get the class
	// "💎<StyleID>" and content elements "⭐️<StyleID>".
	StyleID string
}

// Tag returns the host element tag.
func (r *ComponentRef) Tag() string {
	if r.HostTag == "" {
		return "div"
	}
	return r.HostTag
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "on:click", "on-window:resize", etc.
	Handler any    // Function to call
}

// KeyString formats a key; nil is the absent key.
func KeyString(key any) string {
	switch k := key.(type) {
	case nil:
		return ""
	case string:
		return k
	default:
		return fmt.Sprint(k)
	}
}
