package atom

import (
	"reflect"
	"strconv"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/observable"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// repeater is the state of a KindRepeater node.
type repeater struct {
	src    observable.Erased
	render func(i int) (*Node, interface{ Destroy() })
	length int
	unsub  observable.Unsubscribe
	// props holds the item observable of every rendered index.
	props []interface{ Destroy() }
}

// Repeat renders one child per element of src. Each child is built by
// render from a PropObservable watching its index, so a change inside an
// element updates that child in place. Only length changes add or destroy
// children. A removed child stops following src at once, before its
// teardown completes. A nil src panics with an E104 error.
func Repeat[T any](src observable.Readable[[]T], render func(item *observable.PropObservable[T], i int) any) *Node {
	if src == nil {
		panic(cerrors.New(cerrors.CodeNotObservable).WithDetail("atom.Repeat: nil source"))
	}
	n := newNode(KindRepeater, "repeater")
	n.rep = &repeater{
		src: src,
		render: func(i int) (*Node, interface{ Destroy() }) {
			item := observable.Prop[T](src, strconv.Itoa(i))
			out := render(item, i)
			if node, ok := out.(*Node); ok && node != nil {
				return node, item
			}
			return Virtual("item", out), item
		},
	}
	return n
}

func subscribeRepeater(n *Node) {
	r := n.rep
	if r.unsub != nil {
		return
	}
	r.unsub = r.src.ObserveAny(func(v any) { n.resize(v) })
}

func releaseRepeater(n *Node) {
	if n.rep.unsub != nil {
		n.rep.unsub()
		n.rep.unsub = nil
	}
	for _, p := range n.rep.props {
		p.Destroy()
	}
	n.rep.props = nil
	releaseMarkers(n)
}

// resize adds or destroys children so there is one per element of v.
func (n *Node) resize(v any) {
	r := n.rep
	if n.state == StateDestroyed {
		return
	}

	length := 0
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		length = rv.Len()
	}

	switch {
	case length < r.length:
		// Removed items stop following src before their nodes tear down.
		for _, p := range r.props[min(length, len(r.props)):] {
			p.Destroy()
		}
		r.props = r.props[:min(length, len(r.props))]

		items := n.NodeChildren()
		var hs []sched.Handle
		for _, c := range items[min(length, len(items)):] {
			n.RemoveChild(c)
			hs = append(hs, c.Destroy())
		}
		n.then(sched.Join(hs...), func(err error) sched.Handle {
			if err != nil && n.rt != nil {
				n.rt.logger.Warn("repeat item teardown failed", "error", err)
			}
			return nil
		})
	case length > r.length:
		for i := r.length; i < length; i++ {
			child, item := r.render(i)
			r.props = append(r.props, item)
			if _, err := n.Append(child); err != nil && n.rt != nil {
				n.rt.logger.Warn("repeat append failed", "index", i, "error", err)
			}
		}
	}
	r.length = length
}

// Len returns the number of elements a repeater currently renders.
func (n *Node) Len() int {
	if n.rep == nil {
		return 0
	}
	return n.rep.length
}
