package atom

import (
	"slices"

	"github.com/carbyne-dev/carbyne/pkg/observable"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// Observe calls fn with v, or with every value of v when it is an
// observable. The observation ends no later than the destroy event of n.
// Like On, Observe on a destroyed node registers nothing and fn is not
// called.
func (n *Node) Observe(v any, fn func(any)) {
	if n.state == StateDestroyed {
		return
	}
	e, ok := v.(observable.Erased)
	if !ok {
		fn(v)
		return
	}
	unsub := e.ObserveAny(fn)
	n.On(EventDestroy, func(*Event) sched.Handle {
		unsub()
		return nil
	})
}

// SetAttribute declares an attribute. v may be an observable, in which case
// the host attribute follows its value. Nil and false remove the attribute
// and true sets it empty.
func (n *Node) SetAttribute(name string, v any) error {
	if n.state == StateDestroyed {
		return ErrDestroyed
	}
	if n.attrs == nil {
		n.attrs = make(Attrs)
	}
	n.attrs[name] = v
	if n.created && n.kind == KindElement {
		n.bindAttribute(name, v)
	}
	return nil
}

// bindAttributes binds the declared attributes in name order.
func (n *Node) bindAttributes() {
	if n.kind != KindElement {
		return
	}
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		n.bindAttribute(name, n.attrs[name])
	}
}

func (n *Node) bindAttribute(name string, v any) {
	if unsub, ok := n.attrUnsub[name]; ok {
		unsub()
		delete(n.attrUnsub, name)
	}

	apply := func(val any) {
		if n.el == nil {
			return
		}
		switch x := val.(type) {
		case nil:
			n.el.RemoveAttribute(name)
		case bool:
			if x {
				n.el.SetAttribute(name, "")
			} else {
				n.el.RemoveAttribute(name)
			}
		default:
			n.el.SetAttribute(name, observable.FormatValue(val))
		}
	}

	e, ok := v.(observable.Erased)
	if !ok {
		apply(v)
		return
	}
	if n.attrUnsub == nil {
		n.attrUnsub = make(map[string]observable.Unsubscribe)
	}
	n.attrUnsub[name] = e.ObserveAny(apply)
}
