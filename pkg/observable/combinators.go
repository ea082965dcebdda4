package observable

import "reflect"

// O wraps v in a new Observable.
func O[T any](v T) *Observable[T] {
	return New(v)
}

// Of returns v as a Readable. An observable of type T is returned unchanged;
// an observable of another type is viewed through a Prop on its whole value;
// anything else is wrapped in a new Observable.
func Of[T any](v any) Readable[T] {
	switch x := v.(type) {
	case Readable[T]:
		return x
	case Erased:
		return Prop[T](x, "")
	}
	return New(cast[T](v))
}

// Combine returns an observable whose value is fn applied to the current
// values of deps. Each dependency is either a static value or an
// observable. When none of them is observable the result is computed once
// and held in a plain Observable.
func Combine[T any](fn func(args []any) T, deps ...any) Readable[T] {
	observed := false
	args := make([]any, len(deps))
	for i, d := range deps {
		if IsObservable(d) {
			observed = true
			break
		}
		args[i] = d
	}
	if !observed {
		return New(fn(args))
	}
	return newDependent(fn, deps, nil)
}

// Derive2 is the typed two-argument Combine.
func Derive2[A, B, T any](a, b any, fn func(A, B) T) Readable[T] {
	return Combine(func(args []any) T {
		return fn(cast[A](args[0]), cast[B](args[1]))
	}, a, b)
}

// Derive3 is the typed three-argument Combine.
func Derive3[A, B, C, T any](a, b, c any, fn func(A, B, C) T) Readable[T] {
	return Combine(func(args []any) T {
		return fn(cast[A](args[0]), cast[B](args[1]), cast[C](args[2]))
	}, a, b, c)
}

// Observe calls fn with v, or with every value of v if it is an observable.
func Observe[T any](v any, fn func(T)) Unsubscribe {
	if e, ok := v.(Erased); ok {
		return e.ObserveAny(func(x any) { fn(cast[T](x)) })
	}
	fn(cast[T](v))
	return noop
}

// ObserveAll calls fn with the values of vs once all of them are known, and
// again whenever one of the observables among them changes.
func ObserveAll(fn func(values []any), vs ...any) Unsubscribe {
	src := Combine(func(args []any) []any { return args }, vs...)
	return src.AddObserver(fn)
}

// Truthy reports whether v is set: nil and zero values are false, and so are
// empty slices, maps and strings.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return !rv.IsZero()
}

// And is true when every argument is truthy.
func And(vs ...any) Readable[bool] {
	return Combine(func(args []any) bool {
		for _, a := range args {
			if !Truthy(a) {
				return false
			}
		}
		return true
	}, vs...)
}

// Or is true when at least one argument is truthy.
func Or(vs ...any) Readable[bool] {
	return Combine(func(args []any) bool {
		for _, a := range args {
			if Truthy(a) {
				return true
			}
		}
		return false
	}, vs...)
}

// Not negates the truthiness of v.
func Not(v any) Readable[bool] {
	return Combine(func(args []any) bool { return !Truthy(args[0]) }, v)
}

// IsZero is true while v holds a falsy value.
func IsZero(v any) Readable[bool] {
	return Not(v)
}

// Equal is true while a and b are identical.
func Equal(a, b any) Readable[bool] {
	return Combine(func(args []any) bool { return identical(args[0], args[1]) }, a, b)
}
