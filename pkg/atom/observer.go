package atom

import (
	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/dom"
	"github.com/carbyne-dev/carbyne/pkg/observable"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

// bridge is the state of a KindObserver node.
type bridge struct {
	src   observable.Erased
	unsub observable.Unsubscribe

	// staged is the latest value waiting for a replace to finish. Values
	// arriving while replacing overwrite it, so only the last one renders.
	staged    any
	replacing bool

	// text is the host text node of the current content when that content
	// is a single text value.
	text dom.Node
}

// Observe returns a node rendering the value of src. Text values update a
// single text node in place; any other value replaces the content, after
// the previous content has been torn down. A nil src panics with an E104
// error.
func Observe(src observable.Erased) *Node {
	if src == nil {
		panic(cerrors.New(cerrors.CodeNotObservable).WithDetail("atom.Observe: nil source"))
	}
	n := newNode(KindObserver, "observer")
	n.bridge = &bridge{src: src}
	return n
}

// Source returns the observable of an observer node, or nil.
func (n *Node) Source() observable.Erased {
	if n.bridge == nil {
		return nil
	}
	return n.bridge.src
}

func subscribeBridge(n *Node) {
	b := n.bridge
	if b.unsub != nil {
		return
	}
	b.unsub = b.src.ObserveAny(func(v any) { n.render(v) })
}

func releaseBridge(n *Node) {
	b := n.bridge
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
	if b.replacing {
		n.metrics().BridgeUpdate(BridgeCancelled)
	}
	b.staged = nil
	b.text = nil
	releaseMarkers(n)
}

// render shows v. It runs for every value of the source.
func (n *Node) render(v any) {
	b := n.bridge
	if n.state == StateDestroyed {
		return
	}

	if !b.replacing && b.text != nil && isText(v) && len(n.children) == 1 && n.children[0].Host == b.text {
		b.text.SetData(observable.FormatValue(v))
		n.metrics().BridgeUpdate(BridgeInPlace)
		return
	}

	b.staged = v
	if b.replacing {
		n.metrics().BridgeUpdate(BridgeCoalesced)
		return
	}
	b.replacing = true
	n.metrics().BridgeUpdate(BridgeReplace)

	n.then(n.Empty(), func(err error) sched.Handle {
		if err != nil && n.rt != nil {
			n.rt.logger.Warn("observer teardown failed", "error", err)
		}
		if n.state == StateDestroyed {
			// Destroyed while the previous content was being torn down.
			return nil
		}
		next := b.staged
		b.staged = nil
		b.replacing = false
		b.text = nil

		c, aerr := n.Append(next)
		if aerr != nil {
			return sched.Failed(aerr)
		}
		if isText(next) {
			b.text = c.Host
		}
		return nil
	})
}
