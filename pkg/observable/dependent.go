package observable

import "sync"

// DependentObservable is a pure function of an ordered list of
// dependencies, each either a static value or an observable. It is
// read-only: there is no Set.
type DependentObservable[T any] struct {
	core[T]
	deps []any
	fn   func(args []any) T
	up   upstream

	// guarded by argsMu; resolved and missing only live while observed.
	argsMu        sync.Mutex
	resolved      []any
	missing       int
	bootstrapping bool
}

func newDependent[T any](fn func(args []any) T, deps []any, opts []Option[T]) *DependentObservable[T] {
	d := &DependentObservable[T]{deps: deps, fn: fn}
	var zero T
	d.init(zero, opts)
	d.onFirst = d.attach
	d.onLast = d.detach
	return d
}

// Get returns the combined value, recomputing it from the dependencies
// when nothing observes this observable.
func (d *DependentObservable[T]) Get() T {
	if !d.up.attached() {
		d.store(d.fn(d.pull()))
	}
	return d.load()
}

// GetAny returns the combined value as any.
func (d *DependentObservable[T]) GetAny() any {
	return d.Get()
}

// GetPath returns the value at path inside the combined value.
func (d *DependentObservable[T]) GetPath(path string) any {
	return PathGet(d.Get(), path)
}

// Dependencies returns the number of dependencies.
func (d *DependentObservable[T]) Dependencies() int {
	return len(d.deps)
}

func (d *DependentObservable[T]) pull() []any {
	args := make([]any, len(d.deps))
	for i, dep := range d.deps {
		if e, ok := dep.(Erased); ok {
			args[i] = e.GetAny()
		} else {
			args[i] = dep
		}
	}
	return args
}

// attach subscribes to every observable dependency. Updates are ignored
// until each of them has replayed its initial value, so the function never
// sees a partially resolved argument list.
func (d *DependentObservable[T]) attach() {
	d.argsMu.Lock()
	d.resolved = make([]any, len(d.deps))
	d.missing = 0
	d.bootstrapping = true
	for i, dep := range d.deps {
		if _, ok := dep.(Erased); ok {
			d.missing++
		} else {
			d.resolved[i] = dep
		}
	}
	d.argsMu.Unlock()

	d.up.open()
	for i, dep := range d.deps {
		e, ok := dep.(Erased)
		if !ok {
			continue
		}
		seen := false
		d.up.add(e.ObserveAny(func(v any) {
			d.argsMu.Lock()
			if d.resolved == nil {
				d.argsMu.Unlock()
				return
			}
			if !seen {
				seen = true
				d.missing--
			}
			d.resolved[i] = v
			d.argsMu.Unlock()
			d.refresh()
		}))
	}

	d.argsMu.Lock()
	d.bootstrapping = false
	d.argsMu.Unlock()
	d.refresh()
}

func (d *DependentObservable[T]) refresh() {
	d.argsMu.Lock()
	if d.bootstrapping || d.missing > 0 || d.resolved == nil {
		d.argsMu.Unlock()
		return
	}
	args := make([]any, len(d.resolved))
	copy(args, d.resolved)
	d.argsMu.Unlock()

	next := d.fn(args)
	if d.store(next) {
		d.emit(next, "")
	}
}

func (d *DependentObservable[T]) detach() {
	d.up.close()
	d.argsMu.Lock()
	d.resolved = nil
	d.missing = 0
	d.argsMu.Unlock()
}
