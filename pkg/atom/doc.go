// Package atom implements the node lifecycle of the carbyne UI tree.
//
// A Node is one unit of the tree. Its Kind selects how it is represented in
// the host document:
//
//   - KindElement owns a host element.
//   - KindVirtual owns two comment markers delimiting its children.
//   - KindObserver is a virtual node whose content follows an observable.
//   - KindRepeater is a virtual node rendering one child per slice element.
//
// Nodes move through the states uninitialized, unmounted, mounted and
// destroyed. Host nodes are created on the first Mount; Unmount and Destroy
// first broadcast unmount:before or destroy:before to the whole subtree and
// wait for every Handle the listeners return before touching the document:
//
//	rt := atom.NewRuntime(doc)
//	name := observable.New("world")
//	root := atom.New("div", atom.Attrs{"class": "greeting"},
//	    "hello ", atom.Observe(name),
//	)
//	if err := rt.Mount(root, doc.Body(), nil); err != nil {
//	    return err
//	}
//	name.Set("carbyne")
//	err := rt.Loop().Wait(ctx, root.Destroy())
//
// All node methods must be called from the goroutine driving the runtime's
// loop. Observables feeding nodes must therefore be written on that
// goroutine too, for example through Loop.Dispatch.
package atom
