package observable

import (
	"slices"
)

// The slice helpers below never modify the backing array in place: each
// builds a new slice, commits it and emits exactly one notification.

// Push appends items.
func Push[T any](o *Observable[[]T], items ...T) int {
	cur := o.Get()
	next := make([]T, 0, len(cur)+len(items))
	next = append(append(next, cur...), items...)
	o.commit(next)
	return len(next)
}

// Unshift prepends items.
func Unshift[T any](o *Observable[[]T], items ...T) int {
	cur := o.Get()
	next := make([]T, 0, len(cur)+len(items))
	next = append(append(next, items...), cur...)
	o.commit(next)
	return len(next)
}

// Pop removes and returns the last element. ok is false, and nothing is
// emitted, when the slice is empty.
func Pop[T any](o *Observable[[]T]) (v T, ok bool) {
	cur := o.Get()
	if len(cur) == 0 {
		return v, false
	}
	v = cur[len(cur)-1]
	o.commit(slices.Clone(cur[:len(cur)-1]))
	return v, true
}

// Shift removes and returns the first element.
func Shift[T any](o *Observable[[]T]) (v T, ok bool) {
	cur := o.Get()
	if len(cur) == 0 {
		return v, false
	}
	v = cur[0]
	o.commit(slices.Clone(cur[1:]))
	return v, true
}

// Splice removes count elements starting at start, inserts items there and
// returns the removed elements. start and count are clamped to the slice.
func Splice[T any](o *Observable[[]T], start, count int, items ...T) []T {
	cur := o.Get()
	start = max(0, min(start, len(cur)))
	end := max(start, min(start+count, len(cur)))

	removed := slices.Clone(cur[start:end])
	next := make([]T, 0, len(cur)-len(removed)+len(items))
	next = append(next, cur[:start]...)
	next = append(next, items...)
	next = append(next, cur[end:]...)
	o.commit(next)
	return removed
}

// RemoveAt removes the element at i. It reports false for an out of range
// index.
func RemoveAt[T any](o *Observable[[]T], i int) bool {
	if i < 0 || i >= len(o.Get()) {
		return false
	}
	Splice(o, i, 1)
	return true
}

// SortFunc sorts the slice with cmp.
func SortFunc[T any](o *Observable[[]T], cmp func(a, b T) int) {
	next := slices.Clone(o.Get())
	slices.SortStableFunc(next, cmp)
	o.commit(next)
}

// Reverse reverses the slice.
func Reverse[T any](o *Observable[[]T]) {
	next := slices.Clone(o.Get())
	slices.Reverse(next)
	o.commit(next)
}

// MapSlice is a read-only transform applying fn to every element.
func MapSlice[S, T any](src Readable[[]S], fn func(S) T) *TransformObservable[[]S, []T] {
	return Map(src, func(in []S) []T {
		out := make([]T, len(in))
		for i, v := range in {
			out[i] = fn(v)
		}
		return out
	})
}

// FilterSlice is a read-only transform keeping the elements for which keep
// returns true.
func FilterSlice[T any](src Readable[[]T], keep func(T) bool) *TransformObservable[[]T, []T] {
	return Map(src, func(in []T) []T {
		out := make([]T, 0, len(in))
		for _, v := range in {
			if keep(v) {
				out = append(out, v)
			}
		}
		return out
	})
}

// Number is the set of types the arithmetic helpers accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Add adds n and returns the new value. Like Set, it does not notify when
// the value is unchanged.
func Add[N Number](o *Observable[N], n N) N {
	o.Update(func(v N) N { return v + n })
	return o.Get()
}

// Sub subtracts n.
func Sub[N Number](o *Observable[N], n N) N {
	o.Update(func(v N) N { return v - n })
	return o.Get()
}

// Mul multiplies by n.
func Mul[N Number](o *Observable[N], n N) N {
	o.Update(func(v N) N { return v * n })
	return o.Get()
}

// Div divides by n. Integer division by zero panics as usual.
func Div[N Number](o *Observable[N], n N) N {
	o.Update(func(v N) N { return v / n })
	return o.Get()
}

// Inc adds one.
func Inc[N Number](o *Observable[N]) N {
	return Add(o, 1)
}

// Dec subtracts one.
func Dec[N Number](o *Observable[N]) N {
	return Sub(o, 1)
}
