// Package observable provides the reactive value graph for carbyne.
//
// An Observable is a boxed value with an ordered list of observers. Observers
// are replayed the current value when they subscribe and are then notified
// synchronously, in subscription order, every time the value actually
// changes:
//
//	count := observable.New(0)
//	stop := count.AddObserver(func(n int) { fmt.Println("count:", n) }) // prints 0
//	count.Set(1)                                                         // prints 1
//	count.Set(1)                                                         // no-op, returns false
//	stop()
//
// # Derived Observables
//
// Three kinds of observables are computed from others:
//
//   - PropObservable watches one dotted path of a parent value.
//   - TransformObservable is a function of one observable, optionally two-way.
//   - DependentObservable is a function of several observables and static values.
//
// All of them subscribe to their sources lazily. While a derived observable
// has no observers it holds no subscription upstream and Get recomputes the
// value on demand; the first observer establishes the upstream subscription
// and the last one to leave tears it down. Chains of derived observables are
// therefore reference counted back to their root.
//
// # Combinators
//
// Of wraps a single value; Combine and the typed Derive helpers build a value
// from several:
//
//	full := observable.Derive2(first, last, func(f, l string) string {
//	    return f + " " + l
//	})
//
// Slice and number conveniences (Push, Splice, Inc, ...) are free functions
// over *Observable[[]T] and *Observable[N]; each call emits exactly one
// notification.
//
// # Concurrency
//
// Values and observer lists are guarded by a mutex, but notifications run on
// the goroutine that committed the change. A Set issued while the same
// observable is already notifying is queued and delivered after the current
// round, so every committed value reaches every observer in order.
package observable
