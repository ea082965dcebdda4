package atom

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carbyne-dev/carbyne/pkg/dom"
	"github.com/carbyne-dev/carbyne/pkg/sched"
)

const tracerName = "github.com/carbyne-dev/carbyne/pkg/atom"

// Metrics receives node lifecycle measurements.
type Metrics interface {
	NodeCreated(kind string)
	NodeMounted(kind string)
	NodeUnmounted(kind string)
	// NodeDestroyed is reported only for nodes that were created.
	NodeDestroyed(kind string)
	TeardownObserved(op string, d time.Duration, err error)
	BridgeUpdate(mode string)
}

type nopMetrics struct{}

func (nopMetrics) NodeCreated(string)                             {}
func (nopMetrics) NodeMounted(string)                             {}
func (nopMetrics) NodeUnmounted(string)                           {}
func (nopMetrics) NodeDestroyed(string)                           {}
func (nopMetrics) TeardownObserved(string, time.Duration, error) {}
func (nopMetrics) BridgeUpdate(string)                            {}

// Bridge update modes reported through Metrics.BridgeUpdate.
const (
	BridgeInPlace   = "in_place"
	BridgeReplace   = "replace"
	BridgeCoalesced = "coalesced"
	BridgeCancelled = "cancelled"
)

// Runtime is what a mounted tree needs from its environment: the host
// document, the loop continuations run on and the observability sinks.
// Nodes inherit the runtime of the node they are appended to.
type Runtime struct {
	host    dom.Host
	loop    *sched.Loop
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(rt *Runtime) {
		if m != nil {
			rt.metrics = m
		}
	}
}

// WithTracer sets the tracer used for teardown spans.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Runtime) {
		if t != nil {
			rt.tracer = t
		}
	}
}

// WithLoop sets the loop continuations are scheduled on.
func WithLoop(l *sched.Loop) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.loop = l
		}
	}
}

// NewRuntime creates a runtime for host.
func NewRuntime(host dom.Host, opts ...Option) *Runtime {
	rt := &Runtime{
		host:    host,
		logger:  slog.Default().With("component", "atom"),
		metrics: nopMetrics{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.loop == nil {
		rt.loop = sched.NewLoop(sched.WithLogger(rt.logger))
	}
	return rt
}

// Host returns the host document.
func (rt *Runtime) Host() dom.Host { return rt.host }

// Loop returns the runtime loop.
func (rt *Runtime) Loop() *sched.Loop { return rt.loop }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Mount attaches n to rt and mounts it into parent before before.
func (rt *Runtime) Mount(n *Node, parent, before dom.Node) error {
	n.adopt(rt)
	return n.Mount(parent, before)
}

// observe starts a span for a teardown operation and returns a function
// finishing it once the teardown handle resolves.
func (rt *Runtime) observe(op string, n *Node) func(err error) {
	start := time.Now()
	_, span := rt.tracer.Start(context.Background(), "atom."+op,
		trace.WithAttributes(
			attribute.String("carbyne.kind", n.kind.String()),
			attribute.String("carbyne.tag", n.tag),
		))
	return func(err error) {
		d := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			rt.logger.Warn("teardown failed", "op", op, "kind", n.kind.String(), "tag", n.tag, "error", err)
		}
		span.End()
		rt.metrics.TeardownObserved(op, d, err)
	}
}
