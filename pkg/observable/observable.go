package observable

import (
	"reflect"
	"sync"
	"sync/atomic"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
)

// Unsubscribe removes an observer. Calling it more than once is a no-op.
type Unsubscribe func()

// Observer is a path-aware change callback. path is the changed sub-path
// relative to the observed value, empty when the whole value changed.
type Observer[T any] func(value T, path string)

// Erased is the type-erased view of an observable used by code that does not
// know the value type, such as node attributes and appended children.
type Erased interface {
	GetAny() any
	GetPath(path string) any
	ObserveAny(fn func(any)) Unsubscribe
	WatchAny(fn func(value any, path string)) Unsubscribe
	ObserverCount() int
}

// Readable is an observable value that can be read and subscribed to.
type Readable[T any] interface {
	Erased
	Get() T
	AddObserver(fn func(T)) Unsubscribe
	Watch(fn Observer[T]) Unsubscribe
}

// Writable is a Readable that also accepts writes.
type Writable[T any] interface {
	Readable[T]
	Set(value T) bool
	SetPath(path string, value any) bool
}

// pathSetter is implemented by observables that can write below their root.
type pathSetter interface {
	SetPath(path string, value any) bool
}

// IsObservable reports whether v is an observable of any type.
func IsObservable(v any) bool {
	_, ok := v.(Erased)
	return ok
}

func noop() {}

type subscription[T any] struct {
	id     uint64
	fn     Observer[T]
	active atomic.Bool
}

type change[T any] struct {
	value T
	path  string
}

// core holds the state shared by every observable kind: the committed value,
// the ordered observer list and the notification queue.
type core[T any] struct {
	mu    sync.Mutex
	value T
	equal func(a, b T) bool

	subs []*subscription[T]
	seq  uint64

	notifying bool
	pending   []change[T]
	destroyed bool

	// onFirst and onLast fire on the 0->1 and 1->0 observer transitions.
	onFirst func()
	onLast  func()
}

func (c *core[T]) init(value T, opts []Option[T]) {
	c.value = value
	c.equal = identityEqual[T]
	for _, opt := range opts {
		opt(c)
	}
}

// Watch registers a path-aware observer. The observer is invoked with the
// current value before Watch returns.
func (c *core[T]) Watch(fn Observer[T]) Unsubscribe {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return noop
	}
	first := len(c.subs) == 0 && c.onFirst != nil
	c.mu.Unlock()

	if first {
		c.onFirst()
	}

	c.mu.Lock()
	c.seq++
	s := &subscription[T]{id: c.seq, fn: fn}
	s.active.Store(true)
	c.subs = append(c.subs, s)
	value := c.value
	c.mu.Unlock()

	fn(value, "")

	var once sync.Once
	return func() {
		once.Do(func() { c.unwatch(s) })
	}
}

// AddObserver registers fn and replays the current value to it.
func (c *core[T]) AddObserver(fn func(T)) Unsubscribe {
	return c.Watch(func(v T, _ string) { fn(v) })
}

// ObserveAny is the type-erased AddObserver.
func (c *core[T]) ObserveAny(fn func(any)) Unsubscribe {
	return c.Watch(func(v T, _ string) { fn(v) })
}

// WatchAny is the type-erased Watch.
func (c *core[T]) WatchAny(fn func(value any, path string)) Unsubscribe {
	return c.Watch(func(v T, p string) { fn(v, p) })
}

// ObserverCount returns the number of registered observers.
func (c *core[T]) ObserverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *core[T]) unwatch(s *subscription[T]) {
	c.mu.Lock()
	idx := -1
	for i, existing := range c.subs {
		if existing.id == s.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	s.active.Store(false)
	c.subs = append(c.subs[:idx], c.subs[idx+1:]...)
	last := len(c.subs) == 0 && c.onLast != nil
	c.mu.Unlock()

	if last {
		c.onLast()
	}
}

// Destroy permanently empties the observer list. Later subscriptions are
// ignored.
func (c *core[T]) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	had := len(c.subs) > 0
	for _, s := range c.subs {
		s.active.Store(false)
	}
	c.subs = nil
	c.pending = nil
	c.mu.Unlock()

	if had && c.onLast != nil {
		c.onLast()
	}
}

// IsDestroyed reports whether Destroy has been called.
func (c *core[T]) IsDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// store replaces the cached value and reports whether it differs.
func (c *core[T]) store(value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := !c.equal(c.value, value)
	c.value = value
	return changed
}

func (c *core[T]) load() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// emit delivers a change to every active observer. Changes committed while
// a delivery round is running are queued behind it.
func (c *core[T]) emit(value T, path string) {
	c.mu.Lock()
	c.pending = append(c.pending, change[T]{value: value, path: path})
	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true

	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			c.notifying = false
			c.pending = nil
			c.mu.Unlock()
			panic(r)
		}
	}()

	for len(c.pending) > 0 {
		ch := c.pending[0]
		c.pending = c.pending[1:]
		subs := make([]*subscription[T], len(c.subs))
		copy(subs, c.subs)
		c.mu.Unlock()

		for _, s := range subs {
			if s.active.Load() {
				s.fn(ch.value, ch.path)
			}
		}

		c.mu.Lock()
	}
	c.notifying = false
	c.mu.Unlock()
}

// Option configures an observable.
type Option[T any] func(*core[T])

// WithEqual sets the equality used for change suppression.
func WithEqual[T any](fn func(a, b T) bool) Option[T] {
	return func(c *core[T]) {
		if fn != nil {
			c.equal = fn
		}
	}
}

// DeepEqual switches change suppression to structural equality.
func DeepEqual[T any]() Option[T] {
	return WithEqual(func(a, b T) bool { return reflect.DeepEqual(a, b) })
}

// Observable is a mutable boxed value.
type Observable[T any] struct {
	core[T]
}

// New creates an observable holding value.
func New[T any](value T, opts ...Option[T]) *Observable[T] {
	o := &Observable[T]{}
	o.init(value, opts)
	return o
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	return o.load()
}

// GetAny returns the current value as any.
func (o *Observable[T]) GetAny() any {
	return o.Get()
}

// GetPath returns the value found at path inside the current value.
func (o *Observable[T]) GetPath(path string) any {
	return PathGet(o.Get(), path)
}

// Set commits value and notifies observers. It returns false, without
// notifying, when value equals the current value.
func (o *Observable[T]) Set(value T) bool {
	if !o.store(value) {
		return false
	}
	o.emit(value, "")
	return true
}

// Update computes the next value from the current one and sets it.
func (o *Observable[T]) Update(fn func(T) T) bool {
	return o.Set(fn(o.Get()))
}

// SetPath writes value at path inside the current value, in place, and
// notifies observers with the changed path. An empty path sets the whole
// value. It panics with an E105 error when the path cannot be written.
func (o *Observable[T]) SetPath(path string, value any) bool {
	if path == "" {
		return o.Set(cast[T](value))
	}

	o.mu.Lock()
	root := reflect.ValueOf(&o.value).Elem()
	next, changed, err := pathSet(root, splitPath(path), value)
	if err == nil && changed {
		root.Set(next)
	}
	current := o.value
	o.mu.Unlock()

	if err != nil {
		panic(cerrors.New(cerrors.CodeInvalidPath).WithDetail(path).Wrap(err))
	}
	if changed {
		o.emit(current, path)
	}
	return changed
}

// commit replaces the value and notifies unconditionally. The slice and
// number helpers use it so that every call yields exactly one notification.
func (o *Observable[T]) commit(value T) {
	o.mu.Lock()
	o.value = value
	o.mu.Unlock()
	o.emit(value, "")
}

// Prop returns a PropObservable watching path inside o.
func (o *Observable[T]) Prop(path string) *PropObservable[any] {
	return Prop[any](o, path)
}

// identityEqual compares by identity: == for comparable values, backing
// array and length for slices, pointer for maps. Functions are never equal
// unless both are nil.
func identityEqual[T any](a, b T) bool {
	return identical(any(a), any(b))
}

func identical(a, b any) (eq bool) {
	defer func() {
		// Interface-typed fields can hide incomparable values.
		if recover() != nil {
			eq = false
		}
	}()

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return !va.IsValid() && !vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	}

	if !va.Type().Comparable() {
		return false
	}
	return a == b
}

// cast converts v to T, returning the zero value when v is nil or cannot be
// converted.
func cast[T any](v any) T {
	var zero T
	if v == nil {
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}
	rv := reflect.ValueOf(v)
	target := reflect.TypeOf(&zero).Elem()
	if convertible(rv.Type(), target) {
		return rv.Convert(target).Interface().(T)
	}
	return zero
}

// convertible allows numeric conversions and conversions between types that
// share a kind, but not the int -> string rune conversion.
func convertible(from, to reflect.Type) bool {
	if to.Kind() == reflect.Interface || !from.ConvertibleTo(to) {
		return false
	}
	if isNumeric(from.Kind()) && isNumeric(to.Kind()) {
		return true
	}
	return from.Kind() == to.Kind()
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
