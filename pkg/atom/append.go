package atom

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"github.com/carbyne-dev/carbyne/pkg/dom"
	"github.com/carbyne-dev/carbyne/pkg/observable"
)

// appendKind is the variant an appended value is classified into.
type appendKind uint8

const (
	appendEmpty appendKind = iota
	appendNode
	appendHost
	appendObservable
	appendList
	appendThunk
	appendPrimitive
)

// appendable is the tagged result of classify. Exactly the field matching
// kind is set.
type appendable struct {
	kind  appendKind
	node  *Node
	host  dom.Node
	obs   observable.Erased
	list  []any
	thunk func() any
	text  string
}

// classify decides once what an appended value is.
func classify(v any) appendable {
	switch x := v.(type) {
	case nil:
		return appendable{kind: appendEmpty}
	case *Node:
		if x == nil {
			return appendable{kind: appendEmpty}
		}
		return appendable{kind: appendNode, node: x}
	case dom.Node:
		return appendable{kind: appendHost, host: x}
	case observable.Erased:
		return appendable{kind: appendObservable, obs: x}
	case []any:
		return appendable{kind: appendList, list: x}
	case []*Node:
		list := make([]any, len(x))
		for i, c := range x {
			list[i] = c
		}
		return appendable{kind: appendList, list: list}
	case func() any:
		return appendable{kind: appendThunk, thunk: x}
	case func() *Node:
		return appendable{kind: appendThunk, thunk: func() any { return x() }}
	case string:
		return appendable{kind: appendPrimitive, text: x}
	case []byte:
		return appendable{kind: appendPrimitive, text: string(x)}
	case fmt.Stringer:
		return appendable{kind: appendPrimitive, text: x.String()}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return appendable{kind: appendList, list: list}
	}
	return appendable{kind: appendPrimitive, text: observable.FormatValue(v)}
}

// isText reports whether v renders as a single text node.
func isText(v any) bool {
	return classify(v).kind == appendPrimitive
}

// Append adds v to the children of n and returns the normalized child.
//
// v may be a *Node, a host node, an observable (wrapped with Observe), a
// slice (flattened), a thunk (called), or any other value, which is rendered
// as text. Nil appends nothing. Lists and empty values return a zero Child.
// Before the node is created, values are buffered and the text nodes for
// primitives do not exist yet, so their Child is zero too.
//
// A node has at most one parent: appending a node moves it, also when it is
// already a child of n. Appending a destroyed node returns ErrDestroyed.
func (n *Node) Append(v any) (Child, error) {
	if n.state == StateDestroyed {
		return Child{}, ErrDestroyed
	}

	a := classify(v)
	switch a.kind {
	case appendEmpty:
		return Child{}, nil
	case appendThunk:
		return n.Append(a.thunk())
	case appendList:
		for _, item := range a.list {
			if _, err := n.Append(item); err != nil {
				return Child{}, err
			}
		}
		return Child{}, nil
	case appendObservable:
		a = appendable{kind: appendNode, node: Observe(a.obs)}
	}

	if a.kind == appendNode {
		if a.node.state == StateDestroyed || a.node.destroying != nil {
			return Child{}, ErrDestroyed
		}
		if a.node.parent != nil {
			a.node.parent.RemoveChild(a.node)
		}
		a.node.parent = n
		a.node.adopt(n.rt)
	}

	if !n.created {
		switch a.kind {
		case appendNode:
			n.initial = append(n.initial, a.node)
			return Child{Node: a.node}, nil
		case appendHost:
			n.initial = append(n.initial, a.host)
			return Child{Host: a.host}, nil
		default:
			n.initial = append(n.initial, a.text)
			return Child{}, nil
		}
	}

	var c Child
	switch a.kind {
	case appendNode:
		c = Child{Node: a.node}
	case appendHost:
		c = Child{Host: a.host}
	default:
		c = Child{Host: n.rt.host.CreateText(a.text)}
	}
	if err := n.insertChild(c); err != nil {
		return Child{}, err
	}
	return c, nil
}

// insertChild inserts c into the host document through a fragment, so that
// a node appending its own initial children reaches the document once. A
// child that could not be placed is taken out of the child list again.
func (n *Node) insertChild(c Child) error {
	n.children = append(n.children, c)
	if n.kind != KindElement && n.end.Parent() == nil && n.fragment == nil {
		// Unmounted virtual region: the child is inserted on the next mount.
		return nil
	}

	initiated := false
	if n.fragment == nil {
		initiated = true
		n.fragment = n.rt.host.CreateFragment()
	}

	var err error
	if c.Node != nil {
		var placed bool
		if placed, err = c.Node.mountInto(n.fragment, nil); !placed {
			n.RemoveChild(c.Node)
		}
	} else if herr := n.fragment.InsertBefore(c.Host, nil); herr != nil {
		n.removeHost(c.Host)
		err = hostError("append", herr)
	}

	if initiated {
		frag := n.fragment
		n.fragment = nil
		if ferr := ops(n).addFragment(n, frag); ferr != nil {
			err = multierr.Append(err, hostError("append", ferr))
		}
		if n.state == StateMounted {
			n.markChildrenMounted()
		}
	}
	return err
}

// removeHost drops the last entry for h from the child list.
func (n *Node) removeHost(h dom.Node) {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].Host == h {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
