package atom

import (
	"github.com/carbyne-dev/carbyne/pkg/dom"
	"github.com/carbyne-dev/carbyne/pkg/observable"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// Kind selects how a node is represented in the host document.
type Kind uint8

const (
	KindElement Kind = iota
	KindVirtual
	KindObserver
	KindRepeater
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindVirtual:
		return "virtual"
	case KindObserver:
		return "observer"
	case KindRepeater:
		return "repeater"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a node.
type State uint8

const (
	StateUninitialized State = iota
	StateUnmounted
	StateMounted
	StateDestroyed
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateUnmounted:
		return "unmounted"
	case StateMounted:
		return "mounted"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Attrs is an attribute bag. Values may be plain values or observables.
type Attrs map[string]any

// Child is an entry of a node's child list: either a Node or a host node.
type Child struct {
	Node *Node
	Host dom.Node
}

// IsZero reports whether c holds nothing.
func (c Child) IsZero() bool {
	return c.Node == nil && c.Host == nil
}

// Node is a unit of the UI tree.
type Node struct {
	kind  Kind
	tag   string
	state State
	rt    *Runtime

	parent   *Node
	children []Child
	// initial buffers appended values until the node is created.
	initial []any

	attrs     Attrs
	attrUnsub map[string]observable.Unsubscribe

	// el is the element of KindElement nodes; begin and end delimit the
	// children of the virtual kinds.
	el         dom.Node
	begin, end dom.Node
	created    bool
	fragment   dom.Node

	controllers []Controller
	listeners   map[string][]listener
	listenerSeq uint64

	destroying *sched.Future

	bridge *bridge
	rep    *repeater
}

func newNode(kind Kind, tag string) *Node {
	return &Node{kind: kind, tag: tag}
}

// Element creates an element node for tag with attrs and initial children.
// Unlike New it does not interpret class or id shorthand nor the "$$" key.
func Element(tag string, attrs Attrs, children ...any) *Node {
	n := newNode(KindElement, tag)
	n.attrs = attrs
	n.appendInitial(children)
	return n
}

// Virtual creates a node without an element of its own. Its children are
// rendered between two comment markers named after name.
func Virtual(name string, children ...any) *Node {
	n := newNode(KindVirtual, name)
	n.appendInitial(children)
	return n
}

func (n *Node) appendInitial(children []any) {
	for _, c := range children {
		// Buffering fails only for destroyed nodes, which are skipped.
		_, _ = n.Append(c)
	}
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag, or the marker name of a virtual node.
func (n *Node) Tag() string { return n.tag }

// State returns the lifecycle state.
func (n *Node) State() State { return n.state }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Runtime returns the runtime the node is attached to, or nil.
func (n *Node) Runtime() *Runtime { return n.rt }

// Element returns the host element of an element node once created.
func (n *Node) Element() dom.Node { return n.el }

// Markers returns the begin and end markers of a virtual node once created.
func (n *Node) Markers() (begin, end dom.Node) { return n.begin, n.end }

// Attr returns the declared value of an attribute.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of the declared attributes.
func (n *Node) Attrs() Attrs {
	out := make(Attrs, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// Children returns a copy of the child list. Before the node is created
// only appended nodes are listed.
func (n *Node) Children() []Child {
	if !n.created {
		var out []Child
		for _, v := range n.initial {
			if c, ok := v.(*Node); ok {
				out = append(out, Child{Node: c})
			}
		}
		return out
	}
	out := make([]Child, len(n.children))
	copy(out, n.children)
	return out
}

// NodeChildren returns the child nodes, skipping host nodes.
func (n *Node) NodeChildren() []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.Node != nil {
			out = append(out, c.Node)
		}
	}
	return out
}

// RemoveChild removes child from the child list and clears its parent. The
// host document is not modified.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c.Node == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
	for i, v := range n.initial {
		if v == child {
			n.initial = append(n.initial[:i], n.initial[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// adopt attaches rt to n and to every descendant without a runtime.
func (n *Node) adopt(rt *Runtime) {
	if n.rt != nil || rt == nil {
		return
	}
	n.rt = rt
	for _, c := range n.children {
		if c.Node != nil {
			c.Node.adopt(rt)
		}
	}
	for _, v := range n.initial {
		if c, ok := v.(*Node); ok {
			c.adopt(rt)
		}
	}
}

func (n *Node) metrics() Metrics {
	if n.rt == nil {
		return nopMetrics{}
	}
	return n.rt.metrics
}

// walk calls fn for n and every descendant node, parents first.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		if c.Node != nil {
			c.Node.walk(fn)
		}
	}
}
