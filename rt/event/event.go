package event

import (
	"context"
	"sync"
	"time"

	"github.com/evan-idocoding/zrtos/rt/tick"
)

// Option configures an Event.
type Option func(*Event)

// WithPeriod sets the tick period used to convert wait timeouts. Default is tick.DefaultPeriod.
func WithPeriod(d time.Duration) Option {
	return func(e *Event) {
		if d > 0 {
			e.period = d
		}
	}
}

// Event is a manual-reset signal. It is safe for concurrent use.
type Event struct {
	period time.Duration

	mu        sync.Mutex
	ch        chan struct{} // closed while signaled
	signaled  bool
	destroyed bool
}

// New creates an Event in the not-signaled state.
func New(opts ...Option) *Event {
	e := &Event{period: tick.DefaultPeriod}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.ch = make(chan struct{})
	return e
}

// Set marks the Event signaled. It is idempotent.
func (e *Event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || e.signaled {
		return
	}
	e.signaled = true
	close(e.ch)
}

// Reset clears the signaled state. It is idempotent.
func (e *Event) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || !e.signaled {
		return
	}
	e.signaled = false
	e.ch = make(chan struct{})
}

// IsSet reports whether the Event is currently signaled.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.signaled && !e.destroyed
}

// Done returns a channel that is closed while the Event is signaled.
//
// The channel belongs to the current generation: after Reset, callers must call Done again
// to wait for the next Set. Done returns nil after Destroy.
func (e *Event) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return nil
	}
	return e.ch
}

// Wait blocks until the Event is signaled or timeout elapses, and reports whether it was
// signaled.
func (e *Event) Wait(timeout tick.Span) bool {
	ok, _ := e.WaitContext(context.Background(), timeout)
	return ok
}

// WaitContext is like Wait but also returns early with ctx.Err() if ctx is done.
//
// A timeout is not an error: it is reported as (false, nil).
func (e *Event) WaitContext(ctx context.Context, timeout tick.Span) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := e.Done()
	if ch == nil {
		return false, nil
	}

	select {
	case <-ch:
		return true, nil
	default:
	}
	if timeout == 0 {
		return false, nil
	}

	after, stop := tick.After(timeout, e.period)
	defer stop()
	select {
	case <-ch:
		return true, nil
	case <-after:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Destroy retires the Event. It is idempotent.
func (e *Event) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyed = true
}
