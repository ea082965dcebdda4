package observable

import (
	"errors"
	"reflect"
	"testing"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
)

// spy wraps an Observable and counts upstream subscriptions made through it.
type spy[T any] struct {
	*Observable[T]
	subs   int
	unsubs int
}

func newSpy[T any](v T) *spy[T] {
	return &spy[T]{Observable: New(v)}
}

func (s *spy[T]) track(u Unsubscribe) Unsubscribe {
	s.subs++
	return func() {
		s.unsubs++
		u()
	}
}

func (s *spy[T]) Watch(fn Observer[T]) Unsubscribe {
	return s.track(s.Observable.Watch(fn))
}

func (s *spy[T]) WatchAny(fn func(any, string)) Unsubscribe {
	return s.track(s.Observable.WatchAny(fn))
}

func (s *spy[T]) ObserveAny(fn func(any)) Unsubscribe {
	return s.track(s.Observable.ObserveAny(fn))
}

// panicCode runs fn and returns the code of the *cerrors.Error it panics with.
func panicCode(t *testing.T, fn func()) (code string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
		var ce *cerrors.Error
		if !errors.As(err, &ce) {
			t.Fatalf("panic error %v is not a coded error", err)
		}
		code = ce.Code
	}()
	fn()
	return ""
}

func TestObservableReplay(t *testing.T) {
	o := New("a")
	var got []string
	o.AddObserver(func(v string) { got = append(got, v) })

	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected replay of %q, got %v", "a", got)
	}
}

func TestObservableSetSuppression(t *testing.T) {
	o := New(1)
	calls := 0
	o.AddObserver(func(int) { calls++ })

	if o.Set(1) {
		t.Error("Set with an equal value should return false")
	}
	if calls != 1 {
		t.Errorf("equal value should not notify, got %d calls", calls)
	}
	if !o.Set(2) {
		t.Error("Set with a new value should return true")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestObservableSubscriptionOrder(t *testing.T) {
	o := New(0)
	var order []string
	o.AddObserver(func(v int) {
		if v > 0 {
			order = append(order, "first")
		}
	})
	o.AddObserver(func(v int) {
		if v > 0 {
			order = append(order, "second")
		}
	})
	o.Set(1)

	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Errorf("unexpected order %v", order)
	}
}

func TestObservableUnsubscribeIdempotent(t *testing.T) {
	o := New(0)
	a := o.AddObserver(func(int) {})
	o.AddObserver(func(int) {})

	a()
	a()
	if n := o.ObserverCount(); n != 1 {
		t.Errorf("expected 1 observer, got %d", n)
	}
}

func TestObservableReentrantSet(t *testing.T) {
	o := New(0)
	var first, second []int
	o.AddObserver(func(v int) {
		first = append(first, v)
		if v == 1 {
			o.Set(2)
		}
	})
	o.AddObserver(func(v int) { second = append(second, v) })

	o.Set(1)

	want := []int{0, 1, 2}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("first observer: want %v, got %v", want, first)
	}
	if !reflect.DeepEqual(second, want) {
		t.Errorf("second observer: want %v, got %v", want, second)
	}
	if o.Get() != 2 {
		t.Errorf("expected final value 2, got %d", o.Get())
	}
}

func TestObservableObserverPanic(t *testing.T) {
	o := New(0)
	var seen []int
	o.AddObserver(func(v int) {
		if v == 1 {
			panic("boom")
		}
		seen = append(seen, v)
	})

	func() {
		defer func() { _ = recover() }()
		o.Set(1)
	}()

	o.Set(2)
	if !reflect.DeepEqual(seen, []int{0, 2}) {
		t.Errorf("observable should recover after a panicking observer, got %v", seen)
	}
}

func TestObservableDestroy(t *testing.T) {
	o := New(1)
	o.AddObserver(func(int) {})
	o.Destroy()

	if o.ObserverCount() != 0 {
		t.Errorf("expected no observers after Destroy")
	}

	replayed := false
	o.AddObserver(func(int) { replayed = true })
	if replayed {
		t.Error("a destroyed observable should not replay")
	}
	if !o.IsDestroyed() {
		t.Error("IsDestroyed should report true")
	}
}

func TestObservableSetPath(t *testing.T) {
	o := New(map[string]any{"user": map[string]any{"name": "ada"}})
	var paths []string
	o.Watch(func(_ map[string]any, path string) { paths = append(paths, path) })

	if !o.SetPath("user.name", "grace") {
		t.Fatal("SetPath should report a change")
	}
	if o.SetPath("user.name", "grace") {
		t.Error("SetPath with the same value should not report a change")
	}
	if got := o.GetPath("user.name"); got != "grace" {
		t.Errorf("expected grace, got %v", got)
	}
	if !reflect.DeepEqual(paths, []string{"", "user.name"}) {
		t.Errorf("unexpected notified paths %v", paths)
	}
}

func TestObservableSetPathStruct(t *testing.T) {
	type profile struct {
		Name string
		Age  int
	}
	o := New(profile{Name: "ada", Age: 36})
	o.SetPath("Age", 37)

	if o.Get().Age != 37 || o.Get().Name != "ada" {
		t.Errorf("unexpected value %+v", o.Get())
	}
}

func TestObservableSetPathInvalid(t *testing.T) {
	o := New(42)
	if code := panicCode(t, func() { o.SetPath("x", 1) }); code != cerrors.CodeInvalidPath {
		t.Errorf("expected %s, got %s", cerrors.CodeInvalidPath, code)
	}
}

func TestObservableEquality(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option[[]int]
		notify bool
	}{
		{name: "identity", notify: true},
		{name: "deep", opts: []Option[[]int]{DeepEqual[[]int]()}, notify: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New([]int{1, 2}, tt.opts...)
			if got := o.Set([]int{1, 2}); got != tt.notify {
				t.Errorf("Set of an equal copy: want %v, got %v", tt.notify, got)
			}
		})
	}
}

func TestIdentitySameSlice(t *testing.T) {
	s := []int{1, 2, 3}
	o := New(s)
	if o.Set(s) {
		t.Error("setting the same slice should not notify")
	}
	if !o.Set(s[:2]) {
		t.Error("a shorter view of the slice is a different value")
	}
}

func TestUpdate(t *testing.T) {
	o := New(2)
	o.Update(func(n int) int { return n * 10 })
	if o.Get() != 20 {
		t.Errorf("expected 20, got %d", o.Get())
	}
}

func TestIsObservable(t *testing.T) {
	if !IsObservable(New(1)) {
		t.Error("Observable should be observable")
	}
	if IsObservable(1) {
		t.Error("int should not be observable")
	}
}
