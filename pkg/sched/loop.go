package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrLoopClosed is returned when work is dispatched to a closed loop.
var ErrLoopClosed = errors.New("sched: loop closed")

// Loop is a single-goroutine task queue. Tasks may be dispatched from any
// goroutine but run one at a time on whichever goroutine drives the loop
// through Run, Wait or Settle. Only one goroutine may drive a loop at a time.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}

	// waiting counts continuations whose handle has not resolved yet.
	waiting atomic.Int64

	logger *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger sets the logger used for recovered task panics.
func WithLogger(l *slog.Logger) LoopOption {
	return func(loop *Loop) {
		if l != nil {
			loop.logger = l
		}
	}
}

// NewLoop creates an empty loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		logger: slog.Default().With("component", "loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch enqueues fn.
func (l *Loop) Dispatch(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do enqueues fn and blocks until it has run. It must not be called from
// the goroutine driving the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Dispatch(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Then runs fn once h has resolved and returns a handle for the handle fn
// returns. When h is already resolved fn runs immediately on the calling
// goroutine; otherwise it is scheduled on the loop.
func (l *Loop) Then(h Handle, fn func(err error) Handle) Handle {
	if IsResolved(h) {
		return fn(Err(h))
	}

	out := NewFuture()
	l.waiting.Add(1)
	go func() {
		<-h.Done()
		err := l.Dispatch(func() {
			defer l.waiting.Add(-1)
			next := l.call(fn, h.Err())
			if IsResolved(next) {
				out.Resolve(Err(next))
				return
			}
			l.Then(next, func(err error) Handle {
				out.Resolve(err)
				return nil
			})
		})
		if err != nil {
			l.waiting.Add(-1)
			out.Resolve(err)
		}
	}()
	return out
}

func (l *Loop) call(fn func(error) Handle, err error) (next Handle) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("continuation panic", "panic", r, "stack", string(debug.Stack()))
			next = Failed(fmt.Errorf("sched: continuation panicked: %v", r))
		}
	}()
	return fn(err)
}

// Pending reports whether tasks are queued or continuations are waiting.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	n := len(l.queue)
	l.mu.Unlock()
	return n > 0 || l.waiting.Load() > 0
}

// Run drives the loop until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if !l.drain() {
			return ErrLoopClosed
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Wait drives the loop on the calling goroutine until h resolves and
// returns its error.
func (l *Loop) Wait(ctx context.Context, h Handle) error {
	for {
		l.drain()
		if IsResolved(h) {
			return Err(h)
		}
		select {
		case <-h.Done():
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Settle drives the loop until no task is queued and no continuation is
// waiting.
func (l *Loop) Settle(ctx context.Context) error {
	for {
		l.drain()
		if !l.Pending() {
			return nil
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting tasks. Queued tasks are dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// drain runs queued tasks until the queue is empty. It reports false once the
// loop is closed.
func (l *Loop) drain() bool {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return false
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return true
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.run(task)
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
