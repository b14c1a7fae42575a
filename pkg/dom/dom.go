// Package dom defines the document environment the reconciler mutates.
//
// The engine only relies on the small contract below: element and text
// creation, tree mutation, attributes, live properties and inline style
// declarations. Any implementation that satisfies it (a native bridge or
// the in-memory htmldom package) can host a render container.
package dom

// Namespace URIs.
const (
	NamespaceHTML = "http://www.w3.org/1999/xhtml"
	NamespaceSVG  = "http://www.w3.org/2000/svg"
	NamespaceMath = "http://www.w3.org/1998/Math/MathML"
)

// NodeType identifies the kind of a Node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	DoctypeNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	case DoctypeNode:
		return "Doctype"
	default:
		return "Unknown"
	}
}

// Node is a live document node.
//
// Tree accessors return a nil interface (never a typed nil) when there is
// no such node. Two Node values refer to the same live node iff they
// compare equal.
type Node interface {
	NodeType() NodeType
	// NodeName is the lower-case tag name for elements, "#text" for text.
	NodeName() string

	ParentNode() Node
	FirstChild() Node
	LastChild() Node
	NextSibling() Node
	PreviousSibling() Node
	OwnerDocument() Document

	// InsertBefore inserts child before ref; a nil ref appends. An attached
	// child is detached from its current parent first. The node is moved,
	// never cloned.
	InsertBefore(child, ref Node) error
	AppendChild(child Node) error
	RemoveChild(child Node) error

	// UserData stores engine bookkeeping on the node for its lifetime.
	UserData(key any) any
	SetUserData(key, value any)
}

// Element is a live element.
type Element interface {
	Node

	LocalName() string
	NamespaceURI() string

	GetAttribute(name string) (string, bool)
	HasAttribute(name string) bool
	SetAttribute(name, value string) error
	RemoveAttribute(name string)
	Attributes() []Attr

	// HasProperty reports whether the element exposes a live property with
	// exactly this name.
	HasProperty(name string) bool
	Property(name string) (any, bool)
	SetProperty(name string, value any) error

	StyleProperty(name string) (string, bool)
	SetStyleProperty(name, value string) error
	RemoveStyleProperty(name string)

	SetInnerHTML(markup string) error
	TextContent() string
}

// CharacterData is a text node.
type CharacterData interface {
	Node
	Data() string
	SetData(data string)
}

// Document creates nodes and owns the tree.
type Document interface {
	Node
	CreateElement(tag string) Element
	CreateElementNS(namespace, tag string) Element
	CreateTextNode(data string) CharacterData
	DocumentElement() Element
	Body() Element
}

// Attr is one attribute of an element.
type Attr struct {
	Name  string
	Value string
}
