package dom

// Position is a bit set describing the relation of two nodes, with the
// same values as the DOM's compareDocumentPosition.
type Position uint8

const (
	PositionDisconnected Position = 1 << iota
	PositionPreceding
	PositionFollowing
	PositionContains
	PositionContainedBy
)

// Children returns the child nodes of n in order.
func Children(n Node) []Node {
	var out []Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

// Ancestors returns the ancestors of n, nearest first.
func Ancestors(n Node) []Node {
	var out []Node
	for p := n.ParentNode(); p != nil; p = p.ParentNode() {
		out = append(out, p)
	}
	return out
}

// Contains reports whether other is a inclusive descendant of n.
func Contains(n, other Node) bool {
	for c := other; c != nil; c = c.ParentNode() {
		if c == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether n is attached to a document.
func IsConnected(n Node) bool {
	root := n
	for p := n.ParentNode(); p != nil; p = p.ParentNode() {
		root = p
	}
	return root.NodeType() == DocumentNode
}

// AsElement returns n as an Element if it is one.
func AsElement(n Node) (Element, bool) {
	if n == nil || n.NodeType() != ElementNode {
		return nil, false
	}
	el, ok := n.(Element)
	return el, ok
}

// CompareDocumentPosition reports the position of other relative to a.
//
// If other is an ancestor of a the result is Contains|Preceding; if it is
// a descendant, ContainedBy|Following. Disconnected nodes report
// Disconnected only.
func CompareDocumentPosition(a, other Node) Position {
	if a == other {
		return 0
	}
	pathA := append([]Node{a}, Ancestors(a)...)
	pathB := append([]Node{other}, Ancestors(other)...)
	if pathA[len(pathA)-1] != pathB[len(pathB)-1] {
		return PositionDisconnected
	}

	// Walk both paths from the root until they diverge.
	i, j := len(pathA)-1, len(pathB)-1
	for i >= 0 && j >= 0 && pathA[i] == pathB[j] {
		i--
		j--
	}
	switch {
	case i < 0:
		// a is an ancestor of other
		return PositionContainedBy | PositionFollowing
	case j < 0:
		return PositionContains | PositionPreceding
	}

	// pathA[i] and pathB[j] are siblings under the common ancestor.
	for s := pathA[i].NextSibling(); s != nil; s = s.NextSibling() {
		if s == pathB[j] {
			return PositionFollowing
		}
	}
	return PositionPreceding
}

// DocumentOrder reports whether a comes before b in tree order, ancestors
// before descendants.
func DocumentOrder(a, b Node) bool {
	pos := CompareDocumentPosition(a, b)
	return pos&PositionFollowing != 0
}
