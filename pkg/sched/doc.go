// Package sched provides the cooperative scheduling primitives used by the
// node lifecycle.
//
// A Handle is the result of an asynchronous teardown step. A nil Handle is
// already resolved, which keeps the synchronous path allocation free:
//
//	h := sched.Join(childA.Unmount(), childB.Unmount())
//	loop.Then(h, func(err error) sched.Handle {
//	    parent.RemoveChild(el)
//	    return nil
//	})
//
// Join is the single point where a parent waits for the teardown of its
// subtree. Handles themselves may resolve on any goroutine, but every
// continuation registered through Loop.Then runs on the goroutine driving
// the Loop, so node state is only ever touched from one goroutine.
package sched
