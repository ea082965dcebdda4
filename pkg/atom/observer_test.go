package atom

import (
	"testing"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
	"github.com/carbyne-dev/carbyne/pkg/observable"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

func TestObserverTextInPlace(t *testing.T) {
	m := newFakeMetrics()
	doc, rt := newTestRuntime(t, WithMetrics(m))
	src := observable.New("a")
	p := Element("p", nil, src)
	mount(t, doc, rt, p)

	var muts []htmldom.Mutation
	stop := doc.Subscribe(func(m htmldom.Mutation) { muts = append(muts, m) })
	defer stop()

	src.Set("b")
	if got := p.Element().TextContent(); got != "b" {
		t.Errorf("got %q, want b", got)
	}
	if len(muts) != 1 || muts[0].Kind != htmldom.MutationText {
		t.Errorf("expected a single text mutation, got %+v", muts)
	}
	if m.bridge[BridgeInPlace] != 1 {
		t.Errorf("expected one in-place update, got %v", m.bridge)
	}
}

func TestObserverReplacesNodes(t *testing.T) {
	doc, rt := newTestRuntime(t)
	src := observable.New[any]("a")
	div := Element("div", nil, src)
	mount(t, doc, rt, div)

	first := Element("b", nil, "bold")
	src.Set(first)
	settle(t, rt)
	if got := doc.InnerHTML(div.Element()); got != "<!--[ observer--><b>bold</b><!--]-->" {
		t.Fatalf("unexpected html %q", got)
	}
	if !first.IsMounted() {
		t.Error("rendered node should be mounted")
	}

	src.Set(42)
	settle(t, rt)
	if got := div.Element().TextContent(); got != "42" {
		t.Errorf("got %q, want 42", got)
	}
	if first.State() != StateDestroyed {
		t.Errorf("replaced node should be destroyed, got %s", first.State())
	}
}

func TestObserverCoalesces(t *testing.T) {
	m := newFakeMetrics()
	doc, rt := newTestRuntime(t, WithMetrics(m))

	f := sched.NewFuture()
	slow := Element("em", nil, "a")
	slow.On(EventUnmountBefore, func(*Event) sched.Handle { return f })

	src := observable.New[any](slow)
	div := Element("div", nil, src)
	mount(t, doc, rt, div)

	var inserted []string
	stop := doc.Subscribe(func(m htmldom.Mutation) {
		if m.Kind == htmldom.MutationInsert {
			inserted = append(inserted, m.HTML)
		}
	})
	defer stop()

	src.Set("b")
	src.Set("c")
	if slow.State() == StateDestroyed {
		t.Fatal("slow node destroyed before its handle resolved")
	}

	f.Resolve(nil)
	settle(t, rt)

	for _, html := range inserted {
		if html == "b" {
			t.Errorf("intermediate value was rendered: %v", inserted)
		}
	}
	if got := div.Element().TextContent(); got != "c" {
		t.Errorf("got %q, want c", got)
	}
	if m.bridge[BridgeCoalesced] != 1 {
		t.Errorf("expected one coalesced update, got %v", m.bridge)
	}
}

func TestObserverDestroyCancelsReplace(t *testing.T) {
	m := newFakeMetrics()
	doc, rt := newTestRuntime(t, WithMetrics(m))

	f := sched.NewFuture()
	slow := Element("em", nil)
	slow.On(EventUnmountBefore, func(*Event) sched.Handle { return f })

	src := observable.New[any](slow)
	div := Element("div", nil, src)
	mount(t, doc, rt, div)

	var texts []string
	stop := doc.Subscribe(func(m htmldom.Mutation) {
		if m.Kind == htmldom.MutationInsert {
			texts = append(texts, m.HTML)
		}
	})
	defer stop()

	src.Set("b")
	wait(t, rt, div.Destroy())
	f.Resolve(nil)
	settle(t, rt)

	if len(texts) != 0 {
		t.Errorf("nothing should be inserted after destroy, got %v", texts)
	}
	if m.bridge[BridgeCancelled] != 1 {
		t.Errorf("expected a cancelled update, got %v", m.bridge)
	}
	if src.ObserverCount() != 0 {
		t.Errorf("observer left subscribed: %d", src.ObserverCount())
	}
}

func TestEndToEnd(t *testing.T) {
	doc, rt := newTestRuntime(t)
	label := observable.New("a")
	static := Element("span", nil, "static")
	live := Element("span", nil, label)
	div := Element("div", nil, static, live)
	mount(t, doc, rt, div)

	label.Set("x")
	if got := live.Element().TextContent(); got != "x" {
		t.Errorf("live span: got %q, want x", got)
	}
	if got := static.Element().TextContent(); got != "static" {
		t.Errorf("static span: got %q", got)
	}

	wait(t, rt, div.Destroy())
	if label.ObserverCount() != 0 {
		t.Errorf("expected no observers after destroy, got %d", label.ObserverCount())
	}
	if doc.InnerHTML(doc.Body()) != "" {
		t.Error("body should be empty")
	}
}

func TestNilSourcePanics(t *testing.T) {
	if code := panicCode(t, func() { Observe(nil) }); code != cerrors.CodeNotObservable {
		t.Errorf("Observe: code = %s", code)
	}
	code := panicCode(t, func() {
		Repeat[string](nil, func(*observable.PropObservable[string], int) any { return nil })
	})
	if code != cerrors.CodeNotObservable {
		t.Errorf("Repeat: code = %s", code)
	}
}
