package observable

import (
	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
)

// Transformer converts values between a source type S and a derived type T.
// Set is the inverse of Get and may be nil for one-way transforms.
type Transformer[S, T any] struct {
	Get func(S) T
	Set func(T) S
}

// TransformObservable is a function of one source observable. With an
// inverse it is two-way: Set forwards the inverse-transformed value to the
// source.
type TransformObservable[S, T any] struct {
	core[T]
	src Readable[S]
	tf  Transformer[S, T]
	up  upstream
}

// Transform creates a TransformObservable over src.
func Transform[S, T any](src Readable[S], tf Transformer[S, T], opts ...Option[T]) *TransformObservable[S, T] {
	t := &TransformObservable[S, T]{src: src, tf: tf}
	var zero T
	t.init(zero, opts)
	t.onFirst = t.attach
	t.onLast = t.up.close
	return t
}

// Map creates a read-only transform of src.
func Map[S, T any](src Readable[S], fn func(S) T) *TransformObservable[S, T] {
	return Transform(src, Transformer[S, T]{Get: fn})
}

// Get returns the transformed value of the source.
func (t *TransformObservable[S, T]) Get() T {
	if !t.up.attached() {
		t.store(t.tf.Get(t.src.Get()))
	}
	return t.load()
}

// GetAny returns the transformed value as any.
func (t *TransformObservable[S, T]) GetAny() any {
	return t.Get()
}

// GetPath returns the value at path inside the transformed value.
func (t *TransformObservable[S, T]) GetPath(path string) any {
	return PathGet(t.Get(), path)
}

// Set forwards the inverse of value to the source. It panics with an E102
// error when the transformer has no inverse, and with E101 when the source
// cannot be written.
func (t *TransformObservable[S, T]) Set(value T) bool {
	if t.tf.Set == nil {
		panic(cerrors.New(cerrors.CodeNoInverse).WithDetailf("%T", t))
	}
	w, ok := t.src.(interface{ Set(S) bool })
	if !ok {
		panic(cerrors.New(cerrors.CodeReadOnly).WithDetailf("transform source %T", t.src))
	}
	return w.Set(t.tf.Set(value))
}

// SetPath with an empty path is Set. Any other path panics with E103: a
// transform cannot address inside its result.
func (t *TransformObservable[S, T]) SetPath(path string, value any) bool {
	if path == "" {
		return t.Set(cast[T](value))
	}
	panic(cerrors.New(cerrors.CodeTransformSubpath).WithDetail(path))
}

func (t *TransformObservable[S, T]) attach() {
	t.up.open()
	t.up.add(t.src.Watch(func(v S, _ string) {
		next := t.tf.Get(v)
		if t.store(next) {
			t.emit(next, "")
		}
	}))
}
