package atom

import (
	"go.uber.org/multierr"

	"github.com/carbyne-dev/carbyne/pkg/dom"
)

// kindOps are the kind-specific steps of the lifecycle.
type kindOps struct {
	// create builds the host representation.
	create func(n *Node)
	// insert places the host representation into parent before before.
	insert func(n *Node, parent, before dom.Node) error
	// detach removes the host representation from the document.
	detach func(n *Node) error
	// addFragment moves the content of frag into the child region.
	addFragment func(n *Node, frag dom.Node) error
	// inserted runs after the node is placed into a parent.
	inserted func(n *Node)
	// release drops host references on destroy.
	release func(n *Node)
}

// kindTable is filled in init because its functions refer back to it.
var kindTable [KindRepeater + 1]kindOps

func init() {
	kindTable = [...]kindOps{
		KindElement: {
			create:      createElement,
			insert:      insertElement,
			detach:      detachElement,
			addFragment: appendToElement,
			inserted:    func(*Node) {},
			release:     releaseElement,
		},
		KindVirtual: {
			create:      createMarkers,
			insert:      insertMarkers,
			detach:      detachMarkers,
			addFragment: insertBeforeEnd,
			inserted:    func(*Node) {},
			release:     releaseMarkers,
		},
		KindObserver: {
			create:      createMarkers,
			insert:      insertMarkers,
			detach:      detachMarkers,
			addFragment: insertBeforeEnd,
			inserted:    subscribeBridge,
			release:     releaseBridge,
		},
		KindRepeater: {
			create:      createMarkers,
			insert:      insertMarkers,
			detach:      detachMarkers,
			addFragment: insertBeforeEnd,
			inserted:    subscribeRepeater,
			release:     releaseRepeater,
		},
	}
}

func ops(n *Node) *kindOps {
	return &kindTable[n.kind]
}

func createElement(n *Node) {
	n.el = n.rt.host.CreateElement(n.tag)
}

func insertElement(n *Node, parent, before dom.Node) error {
	return parent.InsertBefore(n.el, before)
}

func detachElement(n *Node) error {
	return dom.Detach(n.el)
}

func appendToElement(n *Node, frag dom.Node) error {
	return n.el.InsertBefore(frag, nil)
}

func releaseElement(n *Node) {
	n.el = nil
}

func createMarkers(n *Node) {
	n.begin = n.rt.host.CreateComment("[ " + n.tag)
	n.end = n.rt.host.CreateComment("]")
}

// insertMarkers places both markers and, on a remount, moves the existing
// children back between them.
func insertMarkers(n *Node, parent, before dom.Node) error {
	if err := parent.InsertBefore(n.begin, before); err != nil {
		return err
	}
	if err := parent.InsertBefore(n.end, before); err != nil {
		return err
	}
	if len(n.children) == 0 {
		return nil
	}
	frag := n.rt.host.CreateFragment()
	var err error
	for _, c := range n.children {
		if c.Node != nil {
			_, merr := c.Node.mountInto(frag, nil)
			err = multierr.Append(err, merr)
		} else {
			err = multierr.Append(err, frag.InsertBefore(c.Host, nil))
		}
	}
	return multierr.Append(err, insertBeforeEnd(n, frag))
}

// detachMarkers removes the markers and the host content of every child.
// The child list is kept so the node can be mounted again.
func detachMarkers(n *Node) error {
	err := multierr.Combine(dom.Detach(n.begin), dom.Detach(n.end))
	for _, c := range n.children {
		if c.Node != nil {
			if c.Node.created {
				err = multierr.Append(err, ops(c.Node).detach(c.Node))
			}
		} else {
			err = multierr.Append(err, dom.Detach(c.Host))
		}
	}
	return err
}

func insertBeforeEnd(n *Node, frag dom.Node) error {
	parent := n.end.Parent()
	if parent == nil {
		return dom.ErrNotChild
	}
	return parent.InsertBefore(frag, n.end)
}

func releaseMarkers(n *Node) {
	n.begin, n.end = nil, nil
}
