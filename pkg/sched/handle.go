package sched

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Handle is a pending result. Done is closed once the result is known and
// Err then reports the failure, if any. A nil Handle is resolved.
type Handle interface {
	Done() <-chan struct{}
	Err() error
}

// Future is a Handle resolved explicitly by its owner.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewFuture returns an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future with err. Only the first call has an effect.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done implements Handle.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err implements Handle. It returns nil until the future is resolved.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Resolved returns a Handle that is already resolved without error.
func Resolved() Handle {
	f := NewFuture()
	f.Resolve(nil)
	return f
}

// Failed returns a Handle already resolved with err.
func Failed(err error) Handle {
	f := NewFuture()
	f.Resolve(err)
	return f
}

// After returns a Handle resolving once d has elapsed.
func After(d time.Duration) Handle {
	f := NewFuture()
	time.AfterFunc(d, func() { f.Resolve(nil) })
	return f
}

// Go runs fn on a new goroutine and resolves with its result.
func Go(ctx context.Context, fn func(ctx context.Context) error) Handle {
	f := NewFuture()
	go func() {
		f.Resolve(fn(ctx))
	}()
	return f
}

// IsResolved reports whether h is nil or resolved.
func IsResolved(h Handle) bool {
	if h == nil {
		return true
	}
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}

// Err returns the error of a resolved handle and nil otherwise.
func Err(h Handle) error {
	if h == nil {
		return nil
	}
	return h.Err()
}

// Join waits for every handle and combines their errors. It returns nil
// when all handles are nil or already resolved without error, so callers can
// stay synchronous in the common case. The handles are awaited concurrently;
// none of them is cancelled when another fails.
func Join(hs ...Handle) Handle {
	var pending []Handle
	var errs error
	for _, h := range hs {
		if h == nil {
			continue
		}
		select {
		case <-h.Done():
			errs = multierr.Append(errs, h.Err())
		default:
			pending = append(pending, h)
		}
	}

	if len(pending) == 0 {
		if errs != nil {
			return Failed(errs)
		}
		return nil
	}

	f := NewFuture()
	go func() {
		var (
			g  errgroup.Group
			mu sync.Mutex
		)
		for _, h := range pending {
			g.Go(func() error {
				<-h.Done()
				if err := h.Err(); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
		f.Resolve(errs)
	}()
	return f
}
