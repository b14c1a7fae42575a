// Package htmldom is an in-memory implementation of the dom contract backed
// by golang.org/x/net/html nodes.
//
// It plays the role of a polyfilled browser document: tree mutation,
// attributes, a table of live properties (value, checked, className, ...),
// inline style declarations and innerHTML. Documents can be created empty
// or parsed from server-rendered HTML, and serialized back with OuterHTML.
//
// A Document is not safe for concurrent use; the render container confines
// it to its loop goroutine.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/reconcile/pkg/dom"
)

// Document is an in-memory document.
type Document struct {
	base
	wrappers map[*html.Node]dom.Node
}

var _ dom.Document = (*Document)(nil)

// NewDocument returns a document with empty head and body.
func NewDocument() *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	head := &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	root.AppendChild(htmlEl)
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)
	return newDocument(root)
}

// Parse builds a document from HTML markup.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	return newDocument(root), nil
}

// ParseString is Parse for a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func newDocument(root *html.Node) *Document {
	d := &Document{wrappers: make(map[*html.Node]dom.Node)}
	d.base = base{doc: d, n: root}
	d.wrappers[root] = d
	return d
}

// wrap returns the unique dom.Node for n, or a nil interface.
func (d *Document) wrap(n *html.Node) dom.Node {
	if n == nil {
		return nil
	}
	if w, ok := d.wrappers[n]; ok {
		return w
	}
	var w dom.Node
	switch n.Type {
	case html.ElementNode:
		w = &Element{base: base{doc: d, n: n}}
	case html.TextNode:
		w = &Text{base: base{doc: d, n: n}}
	default:
		w = &Other{base: base{doc: d, n: n}}
	}
	d.wrappers[n] = w
	return w
}

// CreateElement creates an HTML element; the tag is lower-cased.
func (d *Document) CreateElement(tag string) dom.Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n).(*Element)
}

// CreateElementNS creates an element in the given namespace, keeping the
// tag's case.
func (d *Document) CreateElementNS(namespace, tag string) dom.Element {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	switch namespace {
	case dom.NamespaceSVG:
		n.Namespace = "svg"
	case dom.NamespaceMath:
		n.Namespace = "math"
	default:
		n.Data = strings.ToLower(tag)
		n.DataAtom = atom.Lookup([]byte(n.Data))
	}
	return d.wrap(n).(*Element)
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(data string) dom.CharacterData {
	return d.wrap(&html.Node{Type: html.TextNode, Data: data}).(*Text)
}

// DocumentElement returns the root <html> element.
func (d *Document) DocumentElement() dom.Element {
	for c := d.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c).(*Element)
		}
	}
	return nil
}

// Body returns the <body> element.
func (d *Document) Body() dom.Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for c := root.(*Element).n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "body" {
			return d.wrap(c).(*Element)
		}
	}
	return nil
}

// Wrap returns the dom.Node for a node of this document's tree.
func (d *Document) Wrap(n *html.Node) dom.Node {
	return d.wrap(n)
}

// base carries the tree behaviour shared by every node kind.
type base struct {
	doc  *Document
	n    *html.Node
	data map[any]any
}

// HTMLNode exposes the underlying html.Node.
func (b *base) HTMLNode() *html.Node {
	return b.n
}

func (b *base) NodeType() dom.NodeType {
	switch b.n.Type {
	case html.ElementNode:
		return dom.ElementNode
	case html.TextNode:
		return dom.TextNode
	case html.CommentNode:
		return dom.CommentNode
	case html.DocumentNode:
		return dom.DocumentNode
	case html.DoctypeNode:
		return dom.DoctypeNode
	default:
		return 0
	}
}

func (b *base) NodeName() string {
	switch b.n.Type {
	case html.ElementNode:
		return b.n.Data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	default:
		return "#" + strings.ToLower(b.NodeType().String())
	}
}

func (b *base) ParentNode() dom.Node      { return b.doc.wrap(b.n.Parent) }
func (b *base) FirstChild() dom.Node      { return b.doc.wrap(b.n.FirstChild) }
func (b *base) LastChild() dom.Node       { return b.doc.wrap(b.n.LastChild) }
func (b *base) NextSibling() dom.Node     { return b.doc.wrap(b.n.NextSibling) }
func (b *base) PreviousSibling() dom.Node { return b.doc.wrap(b.n.PrevSibling) }
func (b *base) OwnerDocument() dom.Document {
	return b.doc
}

func (b *base) UserData(key any) any {
	return b.data[key]
}

func (b *base) SetUserData(key, value any) {
	if value == nil {
		delete(b.data, key)
		return
	}
	if b.data == nil {
		b.data = make(map[any]any)
	}
	b.data[key] = value
}

type htmlNoder interface {
	HTMLNode() *html.Node
}

func (b *base) unwrap(n dom.Node) (*html.Node, error) {
	hn, ok := n.(htmlNoder)
	if !ok || hn.HTMLNode() == nil {
		return nil, fmt.Errorf("htmldom: node %T does not belong to an htmldom document", n)
	}
	return hn.HTMLNode(), nil
}

// InsertBefore inserts child before ref, detaching it first if needed.
func (b *base) InsertBefore(child, ref dom.Node) error {
	if child == nil {
		return fmt.Errorf("htmldom: InsertBefore: nil child")
	}
	c, err := b.unwrap(child)
	if err != nil {
		return err
	}
	if b.n.Type != html.ElementNode && b.n.Type != html.DocumentNode {
		return fmt.Errorf("htmldom: %s cannot have children", b.NodeName())
	}
	for p := b.n; p != nil; p = p.Parent {
		if p == c {
			return fmt.Errorf("htmldom: InsertBefore: hierarchy error, <%s> contains its new parent", c.Data)
		}
	}
	var r *html.Node
	if ref != nil {
		if r, err = b.unwrap(ref); err != nil {
			return err
		}
		if r.Parent != b.n {
			return fmt.Errorf("htmldom: InsertBefore: reference node is not a child of <%s>", b.n.Data)
		}
		if r == c {
			return nil
		}
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	if r == nil {
		b.n.AppendChild(c)
	} else {
		b.n.InsertBefore(c, r)
	}
	return nil
}

func (b *base) AppendChild(child dom.Node) error {
	return b.InsertBefore(child, nil)
}

func (b *base) RemoveChild(child dom.Node) error {
	c, err := b.unwrap(child)
	if err != nil {
		return err
	}
	if c.Parent != b.n {
		return fmt.Errorf("htmldom: RemoveChild: node is not a child of <%s>", b.n.Data)
	}
	b.n.RemoveChild(c)
	return nil
}

// Text is a text node.
type Text struct {
	base
}

var _ dom.CharacterData = (*Text)(nil)

func (t *Text) Data() string        { return t.n.Data }
func (t *Text) SetData(data string) { t.n.Data = data }

// Other wraps comments, doctypes and other node kinds the engine does
// not manage.
type Other struct {
	base
}

// OuterHTML serializes n and its subtree.
func OuterHTML(n dom.Node) string {
	hn, ok := n.(htmlNoder)
	if !ok {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, hn.HTMLNode()); err != nil {
		return ""
	}
	return sb.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n dom.Node) string {
	hn, ok := n.(htmlNoder)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for c := hn.HTMLNode().FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}
