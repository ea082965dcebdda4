package atom

import (
	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// Controller is a behaviour attached to exactly one node.
//
// A controller reacts to the lifecycle of its node by implementing any of
// the hook interfaces below; AddController wires the implemented hooks as
// listeners.
type Controller interface {
	// SetNode is called with the owning node by AddController and with nil
	// when the node is destroyed.
	SetNode(n *Node)
	Node() *Node
}

// ControllerBase implements Controller for embedding.
type ControllerBase struct {
	node *Node
}

// SetNode implements Controller.
func (c *ControllerBase) SetNode(n *Node) { c.node = n }

// Node implements Controller.
func (c *ControllerBase) Node() *Node { return c.node }

// Observe ties the observation of v to the controller's node.
func (c *ControllerBase) Observe(v any, fn func(any)) {
	if c.node != nil {
		c.node.Observe(v, fn)
	}
}

type (
	CreateBeforeHook  interface{ OnCreateBefore(ev *Event) }
	CreateHook        interface{ OnCreate(ev *Event) }
	MountBeforeHook   interface{ OnMountBefore(ev *Event) }
	MountHook         interface{ OnMount(ev *Event) }
	UnmountBeforeHook interface{ OnUnmountBefore(ev *Event) sched.Handle }
	UnmountHook       interface{ OnUnmount(ev *Event) }
	DestroyBeforeHook interface{ OnDestroyBefore(ev *Event) sched.Handle }
	DestroyHook       interface{ OnDestroy(ev *Event) }
)

// AddController attaches c to n and wires its hooks. It panics when c
// already belongs to a node or n is destroyed.
func (n *Node) AddController(c Controller) {
	if n.state == StateDestroyed {
		panic(cerrors.New(cerrors.CodeDestroyed).WithDetailf("add controller %T", c))
	}
	if owner := c.Node(); owner != nil {
		panic(cerrors.New(cerrors.CodeControllerClaimed).WithDetailf("%T already attached to <%s>", c, owner.tag))
	}

	n.controllers = append(n.controllers, c)
	c.SetNode(n)

	if h, ok := c.(CreateBeforeHook); ok {
		n.On(EventCreateBefore, plain(h.OnCreateBefore))
	}
	if h, ok := c.(CreateHook); ok {
		n.On(EventCreate, plain(h.OnCreate))
	}
	if h, ok := c.(MountBeforeHook); ok {
		n.On(EventMountBefore, plain(h.OnMountBefore))
	}
	if h, ok := c.(MountHook); ok {
		n.On(EventMount, plain(h.OnMount))
	}
	if h, ok := c.(UnmountBeforeHook); ok {
		n.On(EventUnmountBefore, h.OnUnmountBefore)
	}
	if h, ok := c.(UnmountHook); ok {
		n.On(EventUnmount, plain(h.OnUnmount))
	}
	if h, ok := c.(DestroyBeforeHook); ok {
		n.On(EventDestroyBefore, h.OnDestroyBefore)
	}
	if h, ok := c.(DestroyHook); ok {
		n.On(EventDestroy, plain(h.OnDestroy))
	}
}

func plain(fn func(*Event)) Listener {
	return func(ev *Event) sched.Handle {
		fn(ev)
		return nil
	}
}

// Controllers returns the controllers attached to n.
func (n *Node) Controllers() []Controller {
	out := make([]Controller, len(n.controllers))
	copy(out, n.controllers)
	return out
}

// FindController returns the first controller of type C on n or, failing
// that, on its closest ancestor.
func FindController[C Controller](n *Node) (C, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if c, ok := OwnController[C](cur); ok {
			return c, true
		}
	}
	var zero C
	return zero, false
}

// OwnController returns the first controller of type C attached to n.
func OwnController[C Controller](n *Node) (C, bool) {
	for _, c := range n.controllers {
		if typed, ok := c.(C); ok {
			return typed, true
		}
	}
	var zero C
	return zero, false
}
