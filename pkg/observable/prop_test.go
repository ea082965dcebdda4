package observable

import (
	"reflect"
	"testing"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
)

type notice struct {
	value any
	path  string
}

func TestPropPullsWhenUnobserved(t *testing.T) {
	root := New(map[string]any{"a": map[string]any{"b": 1}})
	p := Prop[int](root, "a.b")

	if p.Get() != 1 {
		t.Fatalf("expected 1, got %d", p.Get())
	}
	root.SetPath("a.b", 2)
	if p.Get() != 2 {
		t.Errorf("expected 2, got %d", p.Get())
	}
	if root.ObserverCount() != 0 {
		t.Error("an unobserved prop must not subscribe to its parent")
	}
}

func TestPropLazySubscription(t *testing.T) {
	root := newSpy(map[string]any{"n": 1})
	p := Prop[int](root, "n")

	a := p.AddObserver(func(int) {})
	b := p.AddObserver(func(int) {})
	if root.subs != 1 {
		t.Fatalf("expected 1 upstream subscription, got %d", root.subs)
	}

	a()
	if root.unsubs != 0 {
		t.Errorf("upstream released while still observed")
	}
	b()
	if root.unsubs != 1 {
		t.Errorf("expected upstream release on last observer, got %d", root.unsubs)
	}

	c := p.AddObserver(func(int) {})
	c()
	if root.subs != 2 || root.unsubs != 2 {
		t.Errorf("expected 2 subscribe/unsubscribe cycles, got %d/%d", root.subs, root.unsubs)
	}
	if root.ObserverCount() != 0 {
		t.Errorf("parent still has %d observers", root.ObserverCount())
	}
}

func TestPropPathClassification(t *testing.T) {
	c := map[string]any{"d": 1}
	root := New(map[string]any{
		"a": map[string]any{"b": map[string]any{"c": c}},
		"x": 0,
	})
	p := Prop[any](root, "a.b.c")

	var got []notice
	p.Watch(func(v any, path string) { got = append(got, notice{v, path}) })
	got = nil

	// Descendant change always propagates with the relative path.
	root.SetPath("a.b.c.d", 2)
	if len(got) != 1 || got[0].path != "d" {
		t.Fatalf("expected one child notification at d, got %v", got)
	}

	// Unrelated change is ignored.
	got = nil
	root.SetPath("x", 5)
	if len(got) != 0 {
		t.Errorf("unrelated change notified: %v", got)
	}

	// Ancestor change that leaves the watched value identical is suppressed.
	root.SetPath("a", map[string]any{"b": map[string]any{"c": c}})
	if len(got) != 0 {
		t.Errorf("ancestor change without effect notified: %v", got)
	}

	// Ancestor change that replaces the watched value notifies.
	root.SetPath("a", map[string]any{"b": map[string]any{"c": "new"}})
	if len(got) != 1 || got[0].value != "new" || got[0].path != "" {
		t.Errorf("expected ancestor refresh to new, got %v", got)
	}
}

func TestPropSetForwardsToParent(t *testing.T) {
	root := New(map[string]any{"form": map[string]any{"email": ""}})
	p := Prop[string](root, "form.email")

	if !p.Set("a@b.c") {
		t.Fatal("Set should report a change")
	}
	if got := root.GetPath("form.email"); got != "a@b.c" {
		t.Errorf("parent not updated, got %v", got)
	}
}

func TestPropOfProp(t *testing.T) {
	root := New(map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}})
	outer := Prop[any](root, "a")
	inner := Prop[int](outer, "b.c")

	var seen []int
	inner.AddObserver(func(v int) { seen = append(seen, v) })
	inner.Set(3)

	if !reflect.DeepEqual(seen, []int{1, 3}) {
		t.Errorf("unexpected values %v", seen)
	}
	if root.GetPath("a.b.c") != 3 {
		t.Errorf("root not updated")
	}
}

func TestPropReadOnlyParent(t *testing.T) {
	dep := Combine(func(args []any) map[string]any {
		return map[string]any{"n": args[0]}
	}, New(1))
	p := Prop[int](dep, "n")

	if p.Get() != 1 {
		t.Errorf("expected 1, got %d", p.Get())
	}
	if code := panicCode(t, func() { p.Set(2) }); code != cerrors.CodeReadOnly {
		t.Errorf("expected %s, got %s", cerrors.CodeReadOnly, code)
	}
}

func TestPropChangePath(t *testing.T) {
	root := New(map[string]any{"a": 1, "b": 2})
	p := Prop[int](root, "a")
	var seen []int
	p.AddObserver(func(v int) { seen = append(seen, v) })

	p.ChangePath("b")
	if !reflect.DeepEqual(seen, []int{1, 2}) {
		t.Errorf("unexpected values %v", seen)
	}
	if p.Path() != "b" {
		t.Errorf("unexpected path %q", p.Path())
	}
}

func TestObservablePropMethod(t *testing.T) {
	root := New(map[string]any{"a": "x"})
	if got := root.Prop("a").Get(); got != "x" {
		t.Errorf("expected x, got %v", got)
	}
}
