package atom

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

func newTestRuntime(t *testing.T, opts ...Option) (*htmldom.Document, *Runtime) {
	t.Helper()
	doc := htmldom.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return doc, NewRuntime(doc, opts...)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func wait(t *testing.T, rt *Runtime, h sched.Handle) {
	t.Helper()
	if err := rt.Loop().Wait(testContext(t), h); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func settle(t *testing.T, rt *Runtime) {
	t.Helper()
	if err := rt.Loop().Settle(testContext(t)); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func mount(t *testing.T, doc *htmldom.Document, rt *Runtime, n *Node) {
	t.Helper()
	if err := rt.Mount(n, doc.Body(), nil); err != nil {
		t.Fatalf("mount: %v", err)
	}
}

// record registers a listener appending the event type to log for every
// lifecycle event.
func record(n *Node, log *[]string) {
	for _, name := range []string{
		EventCreateBefore, EventCreate, EventMountBefore, EventMount,
		EventUnmountBefore, EventUnmount, EventDestroyBefore, EventDestroy,
	} {
		n.On(name, func(ev *Event) sched.Handle {
			*log = append(*log, ev.Type)
			return nil
		})
	}
}

// fakeMetrics counts calls per method.
type fakeMetrics struct {
	created, mounted, unmounted, destroyed int
	teardowns                              map[string]int
	bridge                                 map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{teardowns: map[string]int{}, bridge: map[string]int{}}
}

func (m *fakeMetrics) NodeCreated(string)   { m.created++ }
func (m *fakeMetrics) NodeMounted(string)   { m.mounted++ }
func (m *fakeMetrics) NodeUnmounted(string) { m.unmounted++ }
func (m *fakeMetrics) NodeDestroyed(string) { m.destroyed++ }
func (m *fakeMetrics) TeardownObserved(op string, _ time.Duration, _ error) {
	m.teardowns[op]++
}
func (m *fakeMetrics) BridgeUpdate(mode string) { m.bridge[mode]++ }

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
