package atom

import (
	"reflect"
	"testing"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/observable"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

type logController struct {
	ControllerBase
	log []string
}

func (c *logController) OnCreate(*Event) { c.log = append(c.log, "create") }
func (c *logController) OnMount(*Event)  { c.log = append(c.log, "mount") }
func (c *logController) OnUnmountBefore(*Event) sched.Handle {
	c.log = append(c.log, "unmount:before")
	return nil
}
func (c *logController) OnDestroy(*Event) { c.log = append(c.log, "destroy") }

type themeController struct {
	ControllerBase
	theme string
}

func TestControllerHooks(t *testing.T) {
	doc, rt := newTestRuntime(t)
	c := &logController{}
	n := Element("div", nil)
	n.AddController(c)
	if c.Node() != n {
		t.Fatal("controller should be attached")
	}

	mount(t, doc, rt, n)
	wait(t, rt, n.Destroy())

	want := []string{"create", "mount", "unmount:before", "destroy"}
	if !reflect.DeepEqual(c.log, want) {
		t.Errorf("got %v, want %v", c.log, want)
	}
	if c.Node() != nil {
		t.Error("controller should be released on destroy")
	}
}

func TestControllerClaimedOnce(t *testing.T) {
	c := &logController{}
	Element("div", nil).AddController(c)

	if code := panicCode(t, func() { Element("p", nil).AddController(c) }); code != cerrors.CodeControllerClaimed {
		t.Errorf("got %s, want %s", code, cerrors.CodeControllerClaimed)
	}

	dead := Element("p", nil)
	dead.Destroy()
	if code := panicCode(t, func() { dead.AddController(&logController{}) }); code != cerrors.CodeDestroyed {
		t.Errorf("got %s, want %s", code, cerrors.CodeDestroyed)
	}
}

func TestFindController(t *testing.T) {
	theme := &themeController{theme: "dark"}
	leaf := Element("b", nil)
	root := Element("div", nil, Element("span", nil, leaf))
	root.AddController(theme)

	got, ok := FindController[*themeController](leaf)
	if !ok || got != theme {
		t.Fatalf("expected the root controller, got %v", got)
	}
	if _, ok := OwnController[*themeController](leaf); ok {
		t.Error("leaf has no controller of its own")
	}
	if _, ok := FindController[*logController](leaf); ok {
		t.Error("found a controller that was never added")
	}
}

func TestControllerObserve(t *testing.T) {
	doc, rt := newTestRuntime(t)
	src := observable.New(1)
	c := &themeController{}
	n := Element("div", nil)
	n.AddController(c)

	var seen []any
	c.Observe(src, func(v any) { seen = append(seen, v) })
	src.Set(2)

	mount(t, doc, rt, n)
	wait(t, rt, n.Destroy())
	src.Set(3)

	if !reflect.DeepEqual(seen, []any{1, 2}) {
		t.Errorf("got %v", seen)
	}
	if src.ObserverCount() != 0 {
		t.Errorf("observation should end on destroy, got %d observers", src.ObserverCount())
	}
}
