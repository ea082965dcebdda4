package atom

import (
	"go.uber.org/multierr"

	"github.com/carbyne-dev/carbyne/pkg/dom"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// Mount creates the host representation of n on first use and inserts it
// into parent before before, or at the end when before is nil. When parent
// is not a fragment, n and its descendants become mounted.
//
// A child that fails to render does not keep n out of the document: once n
// itself is in place it is mounted and the child error is returned.
func (n *Node) Mount(parent, before dom.Node) error {
	placed, err := n.mountInto(parent, before)
	if placed && parent.Type() != dom.FragmentNode {
		n.setMounted()
	}
	return err
}

// mountInto reports whether the host representation of n was inserted into
// parent, together with any error, including errors of initial children.
func (n *Node) mountInto(parent, before dom.Node) (placed bool, err error) {
	if n.state == StateDestroyed {
		return false, ErrDestroyed
	}
	if n.rt == nil {
		return false, ErrNoRuntime
	}
	if parent == nil {
		return false, hostError("mount", dom.ErrHierarchy)
	}

	n.state = StateUnmounted

	fresh := !n.created
	if fresh {
		n.Trigger(EventCreateBefore)
		ops(n).create(n)
		n.created = true
		n.bindAttributes()
		n.Trigger(EventCreate)
		n.metrics().NodeCreated(n.kind.String())
		n.rt.logger.Debug("node created", "kind", n.kind.String(), "tag", n.tag)

		// An element receives its children before insertion; virtual nodes
		// need their markers in place first.
		if n.kind == KindElement {
			err = n.flushInitial()
		}
	}

	n.Trigger(EventMountBefore)
	if ierr := ops(n).insert(n, parent, before); ierr != nil {
		return false, multierr.Append(err, hostError("mount", ierr))
	}
	if fresh && n.kind != KindElement {
		err = n.flushInitial()
	}
	ops(n).inserted(n)
	return true, err
}

func (n *Node) flushInitial() error {
	initial := n.initial
	n.initial = nil
	var err error
	for _, v := range initial {
		_, aerr := n.Append(v)
		err = multierr.Append(err, aerr)
	}
	return err
}

// setMounted marks n and its unmounted descendants mounted. Descendants
// receive their mount event before n.
func (n *Node) setMounted() {
	n.state = StateMounted
	n.markChildrenMounted()
	n.Trigger(EventMount)
	n.metrics().NodeMounted(n.kind.String())
}

func (n *Node) markChildrenMounted() {
	for _, c := range n.NodeChildren() {
		if c.state == StateUnmounted {
			c.setMounted()
		}
	}
}

// markChildrenUnmounted is the counterpart of markChildrenMounted, run once
// the host representation of an ancestor has left the document.
func (n *Node) markChildrenUnmounted() {
	for _, c := range n.NodeChildren() {
		if c.state == StateMounted {
			c.state = StateUnmounted
			c.markChildrenUnmounted()
			c.Trigger(EventUnmount)
			c.metrics().NodeUnmounted(c.kind.String())
		}
	}
}

// IsMounted reports whether n is mounted.
func (n *Node) IsMounted() bool { return n.state == StateMounted }

// Unmount removes n from the document. It returns nil without doing anything
// when n is not mounted.
//
// n is marked unmounted and detached from its parent's child list at once.
// unmount:before is then broadcast to the subtree; once every handle
// returned by its listeners has resolved, the host representation is
// removed and unmount fires.
func (n *Node) Unmount() sched.Handle {
	if n.state != StateMounted {
		return nil
	}
	n.state = StateUnmounted
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}

	done := n.rt.observe("unmount", n)
	before := n.Broadcast(EventUnmountBefore)

	h := n.then(before, func(berr error) sched.Handle {
		derr := ops(n).detach(n)
		if derr != nil {
			derr = hostError("unmount", derr)
		}
		n.markChildrenUnmounted()
		after := n.Trigger(EventUnmount)
		n.metrics().NodeUnmounted(n.kind.String())
		return sched.Join(fail(multierr.Combine(berr, derr)), after)
	})
	return n.then(h, func(err error) sched.Handle {
		done(err)
		return fail(err)
	})
}

// Destroy unmounts n, broadcasts destroy:before and waits for the returned
// handles, then broadcasts destroy and releases the subtree. Destroying a
// destroyed node returns nil; calls made while a destroy is in flight share
// its handle.
func (n *Node) Destroy() sched.Handle {
	if n.state == StateDestroyed {
		return nil
	}
	if n.destroying != nil {
		return n.destroying
	}

	f := sched.NewFuture()
	n.destroying = f
	done := func(error) {}
	if n.rt != nil {
		done = n.rt.observe("destroy", n)
	}

	h := n.then(n.Unmount(), func(uerr error) sched.Handle {
		before := n.Broadcast(EventDestroyBefore)
		return n.then(before, func(berr error) sched.Handle {
			n.finalize()
			return fail(multierr.Combine(uerr, berr))
		})
	})
	n.then(h, func(err error) sched.Handle {
		done(err)
		f.Resolve(err)
		return nil
	})

	if sched.IsResolved(f) {
		return fail(f.Err())
	}
	return f
}

// finalize broadcasts destroy and releases n and its descendants.
func (n *Node) finalize() {
	n.Broadcast(EventDestroy)

	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	if n.created {
		// A node destroyed while unmounted may still sit inside its
		// detached parent.
		if err := ops(n).detach(n); err != nil && n.rt != nil {
			n.rt.logger.Warn("detach on destroy failed", "kind", n.kind.String(), "tag", n.tag, "error", err)
		}
	}

	var subtree []*Node
	n.walk(func(c *Node) { subtree = append(subtree, c) })
	for i := len(subtree) - 1; i >= 0; i-- {
		subtree[i].release()
	}
}

func (n *Node) release() {
	if n.state == StateDestroyed {
		return
	}
	ops(n).release(n)
	for _, unsub := range n.attrUnsub {
		unsub()
	}
	for _, c := range n.controllers {
		c.SetNode(nil)
	}

	n.children = nil
	n.initial = nil
	n.attrs = nil
	n.attrUnsub = nil
	n.controllers = nil
	n.listeners = nil
	n.fragment = nil
	n.state = StateDestroyed
	if n.created {
		n.metrics().NodeDestroyed(n.kind.String())
	}
}

// Empty destroys every child node and removes every host child. The
// children leave the child list at once; the returned handle resolves when
// their teardown has completed.
func (n *Node) Empty() sched.Handle {
	if n.state == StateDestroyed {
		return sched.Failed(ErrDestroyed)
	}
	var hs []sched.Handle
	if !n.created {
		initial := n.initial
		n.initial = nil
		for _, v := range initial {
			if c, ok := v.(*Node); ok {
				c.parent = nil
				hs = append(hs, c.Destroy())
			}
		}
		return sched.Join(hs...)
	}

	kids := n.children
	n.children = nil

	for _, c := range kids {
		if c.Node != nil {
			hs = append(hs, c.Node.Destroy())
			c.Node.parent = nil
			continue
		}
		if err := dom.Detach(c.Host); err != nil {
			hs = append(hs, sched.Failed(hostError("empty", err)))
		}
	}
	return sched.Join(hs...)
}

// then chains fn after h on the runtime loop. Nodes without a runtime have
// no loop; their continuations run on the goroutine resolving h.
func (n *Node) then(h sched.Handle, fn func(error) sched.Handle) sched.Handle {
	if n.rt != nil {
		return n.rt.loop.Then(h, fn)
	}
	if sched.IsResolved(h) {
		return fn(sched.Err(h))
	}
	out := sched.NewFuture()
	go func() {
		<-h.Done()
		next := fn(h.Err())
		if next != nil {
			<-next.Done()
		}
		out.Resolve(sched.Err(next))
	}()
	return out
}

func fail(err error) sched.Handle {
	if err == nil {
		return nil
	}
	return sched.Failed(err)
}
