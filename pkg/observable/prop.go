package observable

import (
	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
)

// PropObservable watches one dotted path inside a parent observable.
//
// While it has no observers, Get pulls the value from the parent. While
// observed, it is subscribed to the parent and its cached value is pushed on
// every relevant parent change.
type PropObservable[T any] struct {
	core[T]
	parent Erased
	path   string
	up     upstream
}

// Prop creates a PropObservable watching path inside parent.
func Prop[T any](parent Erased, path string, opts ...Option[T]) *PropObservable[T] {
	p := &PropObservable[T]{parent: parent, path: path}
	var zero T
	p.init(zero, opts)
	p.onFirst = p.attach
	p.onLast = p.up.close
	return p
}

// Path returns the watched path.
func (p *PropObservable[T]) Path() string {
	return p.path
}

// Get returns the value at the watched path.
func (p *PropObservable[T]) Get() T {
	if !p.up.attached() {
		p.store(cast[T](p.parent.GetPath(p.path)))
	}
	return p.load()
}

// GetAny returns the value at the watched path as any.
func (p *PropObservable[T]) GetAny() any {
	return p.Get()
}

// GetPath returns the value at path below the watched path.
func (p *PropObservable[T]) GetPath(path string) any {
	return PathGet(p.Get(), path)
}

// Set writes value at the watched path of the parent. It panics with an E101
// error when the parent is read-only.
func (p *PropObservable[T]) Set(value T) bool {
	return p.SetPath("", value)
}

// SetPath writes value at path below the watched path.
func (p *PropObservable[T]) SetPath(path string, value any) bool {
	ps, ok := p.parent.(pathSetter)
	if !ok {
		panic(cerrors.New(cerrors.CodeReadOnly).WithDetailf("prop %q of %T", p.path, p.parent))
	}
	return ps.SetPath(PathJoin(p.path, path), value)
}

// ChangePath re-targets the observable to another path.
func (p *PropObservable[T]) ChangePath(path string) {
	p.path = path
	if p.up.attached() {
		p.refresh(PathAncestor, "")
	}
}

func (p *PropObservable[T]) attach() {
	p.up.open()
	p.up.add(p.parent.WatchAny(func(_ any, changed string) {
		rel := ClassifyPath(p.path, changed)
		if rel == PathUnrelated {
			return
		}
		p.refresh(rel, changed)
	}))
}

func (p *PropObservable[T]) refresh(rel PathRelation, changed string) {
	next := cast[T](p.parent.GetPath(p.path))
	differs := p.store(next)

	if rel == PathChild {
		p.emit(next, relativePath(p.path, changed))
		return
	}
	if differs {
		p.emit(next, "")
	}
}
