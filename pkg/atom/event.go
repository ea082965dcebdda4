package atom

import (
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// Lifecycle event names.
const (
	EventCreateBefore  = "create:before"
	EventCreate        = "create"
	EventMountBefore   = "mount:before"
	EventMount         = "mount"
	EventUnmountBefore = "unmount:before"
	EventUnmount       = "unmount"
	EventDestroyBefore = "destroy:before"
	EventDestroy       = "destroy"
)

// Event is passed to listeners.
type Event struct {
	Type string
	// Target is the node the event was first triggered on.
	Target *Node
	// Current is the node whose listeners are running.
	Current *Node
	Args    []any

	stopped bool
}

// StopPropagation stops an emitted event from bubbling further up.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// Listener handles an event. It may return a Handle the emitter must wait
// for, which is how unmount:before and destroy:before listeners delay
// teardown. Returning nil means done.
type Listener func(ev *Event) sched.Handle

type listener struct {
	id uint64
	fn Listener
}

// On registers fn for the event name and returns a function removing it.
// Listeners run in registration order. Registering on a destroyed node is
// ignored.
func (n *Node) On(name string, fn Listener) (off func()) {
	if n.state == StateDestroyed {
		return func() {}
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]listener)
	}
	n.listenerSeq++
	id := n.listenerSeq
	n.listeners[name] = append(n.listeners[name], listener{id: id, fn: fn})
	return func() { n.off(name, id) }
}

// Once registers fn for a single delivery of name.
func (n *Node) Once(name string, fn Listener) (off func()) {
	var remove func()
	remove = n.On(name, func(ev *Event) sched.Handle {
		remove()
		return fn(ev)
	})
	return remove
}

func (n *Node) off(name string, id uint64) {
	ls := n.listeners[name]
	for i, l := range ls {
		if l.id == id {
			n.listeners[name] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Trigger runs the listeners of n for name and joins the handles they
// return. A panicking listener aborts the remaining listeners.
func (n *Node) Trigger(name string, args ...any) sched.Handle {
	return n.dispatch(&Event{Type: name, Target: n, Args: args})
}

func (n *Node) dispatch(ev *Event) sched.Handle {
	ls := n.listeners[ev.Type]
	if len(ls) == 0 {
		return nil
	}
	snapshot := make([]listener, len(ls))
	copy(snapshot, ls)

	ev.Current = n
	var hs []sched.Handle
	for _, l := range snapshot {
		if h := l.fn(ev); h != nil {
			hs = append(hs, h)
		}
	}
	return sched.Join(hs...)
}

// Emit triggers name on n and then on each ancestor in turn, until a
// listener stops propagation.
func (n *Node) Emit(name string, args ...any) sched.Handle {
	ev := &Event{Type: name, Target: n, Args: args}
	var hs []sched.Handle
	for cur := n; cur != nil; cur = cur.parent {
		hs = append(hs, cur.dispatch(ev))
		if ev.stopped {
			break
		}
	}
	return sched.Join(hs...)
}

// Broadcast triggers name on n and then on every descendant node, parents
// before children, and joins all returned handles.
func (n *Node) Broadcast(name string, args ...any) sched.Handle {
	ev := &Event{Type: name, Target: n, Args: args}
	var hs []sched.Handle
	n.walk(func(c *Node) {
		hs = append(hs, c.dispatch(ev))
	})
	return sched.Join(hs...)
}

// ListenerCount returns the number of listeners registered for name.
func (n *Node) ListenerCount(name string) int {
	return len(n.listeners[name])
}
