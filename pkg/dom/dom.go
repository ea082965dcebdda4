// Package dom defines the boundary between the node lifecycle and the host
// document. Element, text, comment and fragment creation, attribute access
// and child insertion and removal are the only operations the core performs
// against the host.
package dom

import "errors"

// NodeType identifies the kind of a host node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	FragmentNode
	DocumentNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case FragmentNode:
		return "fragment"
	case DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}

var (
	// ErrNotChild is returned when a reference or removed node is not a
	// child of the node operated on.
	ErrNotChild = errors.New("dom: node is not a child of this node")

	// ErrHierarchy is returned when an insertion would create a cycle or
	// target a node that cannot have children.
	ErrHierarchy = errors.New("dom: hierarchy request error")

	// ErrForeignNode is returned when a node from another host is used.
	ErrForeignNode = errors.New("dom: node belongs to another host")
)

// Node is a host node.
type Node interface {
	Type() NodeType
	NodeName() string
	Parent() Node
	ChildNodes() []Node

	// InsertBefore inserts child before ref, or appends it when ref is nil.
	// A child that already has a parent is moved. Inserting a fragment moves
	// its children and leaves it empty.
	InsertBefore(child, ref Node) error
	RemoveChild(child Node) error

	SetAttribute(name, value string)
	RemoveAttribute(name string)
	Attribute(name string) (string, bool)

	// Data is the character data of text and comment nodes.
	Data() string
	SetData(data string)
	TextContent() string
}

// Host creates nodes.
type Host interface {
	CreateElement(tag string) Node
	CreateText(data string) Node
	CreateComment(data string) Node
	CreateFragment() Node
}

// Detach removes n from its parent, if any.
func Detach(n Node) error {
	if n == nil {
		return nil
	}
	p := n.Parent()
	if p == nil {
		return nil
	}
	return p.RemoveChild(n)
}

// NextSibling returns the node following n in its parent, or nil.
func NextSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	kids := p.ChildNodes()
	for i, k := range kids {
		if k == n && i+1 < len(kids) {
			return kids[i+1]
		}
	}
	return nil
}
