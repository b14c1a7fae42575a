package htmldom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// Element is an element node.
type Element struct {
	base
	// live holds property values that diverge from their attribute,
	// such as the current value of an input.
	live map[string]any
}

var _ dom.Element = (*Element)(nil)

func (e *Element) LocalName() string {
	return e.n.Data
}

func (e *Element) NamespaceURI() string {
	switch e.n.Namespace {
	case "svg":
		return dom.NamespaceSVG
	case "math":
		return dom.NamespaceMath
	default:
		return dom.NamespaceHTML
	}
}

func (e *Element) attrIndex(name string) int {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return i
		}
	}
	return -1
}

func (e *Element) GetAttribute(name string) (string, bool) {
	if i := e.attrIndex(name); i >= 0 {
		return e.n.Attr[i].Val, true
	}
	return "", false
}

func (e *Element) HasAttribute(name string) bool {
	return e.attrIndex(name) >= 0
}

// SetAttribute sets an attribute, rejecting names that cannot be
// serialized.
func (e *Element) SetAttribute(name, value string) error {
	if err := validAttrName(name); err != nil {
		return err
	}
	if i := e.attrIndex(name); i >= 0 {
		e.n.Attr[i].Val = value
		return nil
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (e *Element) RemoveAttribute(name string) {
	if i := e.attrIndex(name); i >= 0 {
		e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
	}
}

func (e *Element) Attributes() []dom.Attr {
	out := make([]dom.Attr, 0, len(e.n.Attr))
	for _, a := range e.n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		out = append(out, dom.Attr{Name: name, Value: a.Val})
	}
	return out
}

func validAttrName(name string) error {
	if name == "" {
		return fmt.Errorf("htmldom: empty attribute name")
	}
	for _, r := range name {
		switch {
		case r <= ' ', r == 0x7f:
			return fmt.Errorf("htmldom: invalid attribute name %q", name)
		case strings.ContainsRune("\"'<>/=`", r):
			return fmt.Errorf("htmldom: invalid attribute name %q", name)
		}
	}
	return nil
}

// TextContent returns the concatenated text of all descendants.
func (e *Element) TextContent() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(e.n)
	return sb.String()
}

// SetInnerHTML replaces the children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.fragmentContext())
	if err != nil {
		return fmt.Errorf("htmldom: innerHTML: %w", err)
	}
	e.clearChildren()
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
	return nil
}

// fragmentContext returns a detached copy of the element usable as a
// parsing context; ParseFragment only reads its tag and namespace.
func (e *Element) fragmentContext() *html.Node {
	return &html.Node{
		Type:      html.ElementNode,
		Data:      e.n.Data,
		DataAtom:  e.n.DataAtom,
		Namespace: e.n.Namespace,
	}
}

func (e *Element) clearChildren() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

func (e *Element) setTextContent(s string) {
	e.clearChildren()
	if s != "" {
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
}

// SimulateInput changes the live value of a form control without touching
// its value attribute, the way a user typing into it would.
func SimulateInput(el dom.Element, value string) {
	if e, ok := el.(*Element); ok {
		e.setLive("value", value)
	}
}

// SimulateCheck toggles the live checked state of a control.
func SimulateCheck(el dom.Element, checked bool) {
	if e, ok := el.(*Element); ok {
		e.setLive("checked", checked)
	}
}

func (e *Element) setLive(name string, v any) {
	if e.live == nil {
		e.live = make(map[string]any)
	}
	e.live[name] = v
}
