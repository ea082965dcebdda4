package atom

import (
	"reflect"
	"testing"

	"github.com/carbyne-dev/carbyne/pkg/sched"
)

func TestEmitBubbles(t *testing.T) {
	leaf := Element("b", nil)
	mid := Element("span", nil, leaf)
	root := Element("div", nil, mid)

	var got []string
	listen := func(n *Node, stop bool) {
		n.On("ping", func(ev *Event) sched.Handle {
			got = append(got, ev.Current.Tag())
			if ev.Target != leaf {
				t.Errorf("target should stay the emitting node, got <%s>", ev.Target.Tag())
			}
			if stop {
				ev.StopPropagation()
			}
			return nil
		})
	}
	listen(leaf, false)
	listen(mid, true)
	listen(root, false)

	leaf.Emit("ping")
	if !reflect.DeepEqual(got, []string{"b", "span"}) {
		t.Errorf("got %v", got)
	}
}

func TestBroadcastPreOrder(t *testing.T) {
	a := Element("a", nil)
	b := Element("b", nil, Element("c", nil))
	root := Element("root", nil, a, b)

	var got []string
	for _, n := range []*Node{root, a, b, b.NodeChildren()[0]} {
		n.On("hello", func(ev *Event) sched.Handle {
			got = append(got, ev.Current.Tag())
			return nil
		})
	}
	root.Broadcast("hello")
	if !reflect.DeepEqual(got, []string{"root", "a", "b", "c"}) {
		t.Errorf("got %v", got)
	}
}

func TestTriggerArgsAndHandles(t *testing.T) {
	n := Element("div", nil)
	f := sched.NewFuture()
	n.On("x", func(ev *Event) sched.Handle {
		if len(ev.Args) != 1 || ev.Args[0] != 7 {
			t.Errorf("unexpected args %v", ev.Args)
		}
		return f
	})
	n.On("x", func(*Event) sched.Handle { return nil })

	h := n.Trigger("x", 7)
	if sched.IsResolved(h) {
		t.Fatal("trigger should wait for the listener handle")
	}
	f.Resolve(nil)
	<-h.Done()
	if h.Err() != nil {
		t.Errorf("unexpected error %v", h.Err())
	}
}

func TestOnceAndOff(t *testing.T) {
	n := Element("div", nil)
	once, always := 0, 0
	n.Once("x", func(*Event) sched.Handle { once++; return nil })
	off := n.On("x", func(*Event) sched.Handle { always++; return nil })

	n.Trigger("x")
	n.Trigger("x")
	off()
	n.Trigger("x")

	if once != 1 || always != 2 {
		t.Errorf("once=%d always=%d", once, always)
	}
	if n.ListenerCount("x") != 0 {
		t.Errorf("expected no listeners, got %d", n.ListenerCount("x"))
	}
}

func TestOnDestroyedIsIgnored(t *testing.T) {
	n := Element("div", nil)
	n.Destroy()
	off := n.On("x", func(*Event) sched.Handle { return nil })
	off()
	if n.ListenerCount("x") != 0 {
		t.Error("listener registered on a destroyed node")
	}
}
