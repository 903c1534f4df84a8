package task

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/evan-idocoding/zrtos/rt/event"
	"github.com/evan-idocoding/zrtos/rt/safego"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

// Task is an owned goroutine running an entry function, held at a start gate until Start.
//
// The creator owns the handle and must eventually Delete it. Methods are safe for concurrent
// use.
type Task struct {
	id   uuid.UUID
	name string
	cfg  taskConfig
	log  *logrus.Entry
	self *Self

	// fn and arg are dropped by a successful Delete.
	fn  Func
	arg any

	state    atomic.Int32 // committed State
	claim    atomic.Int32 // who moved the task out of New: claimNone, claimStart or claimRetire
	stopReq  atomic.Bool
	panicked atomic.Bool
	released atomic.Bool

	stopOnce sync.Once
	stopCh   chan struct{}
	gate     *event.Event
	done     chan struct{} // closed when the backing goroutine exits

	mu      sync.Mutex
	created time.Time
	started time.Time
	stopped time.Time
}

const (
	claimNone int32 = iota
	claimStart
	claimRetire
)

// New creates a task in StateNew and spawns its backing goroutine, which waits at the start
// gate so that no entry code runs before Start.
//
// New panics if fn is nil (configuration error).
func New(name string, fn Func, arg any, opts ...Option) (*Task, error) {
	if fn == nil {
		panic("task: New called with nil Func")
	}
	c := defaultTaskConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	name = normalizeName(name)
	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}

	if c.slots != nil && !c.slots.TryAcquire(1) {
		return nil, fmt.Errorf("%w: no free task slot", ErrResourceExhausted)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		if c.slots != nil {
			c.slots.Release(1)
		}
		return nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}

	log := c.log
	if log == nil {
		log = logrus.WithField("component", "task")
	}
	t := &Task{
		id:      id,
		name:    name,
		cfg:     c,
		log:     log.WithFields(logrus.Fields{"task_id": id.String(), "task": name}),
		fn:      fn,
		arg:     arg,
		stopCh:  make(chan struct{}),
		gate:    event.New(event.WithPeriod(c.period)),
		done:    make(chan struct{}),
		created: time.Now(),
	}
	t.self = &Self{t: t}
	t.state.Store(int32(StateNew))

	safego.Go(t.run,
		safego.WithName(name),
		safego.WithTag("task_id", id.String()),
		safego.WithLogger(t.log),
		safego.WithFinally(func() { close(t.done) }),
	)
	t.log.WithFields(logrus.Fields{
		"stack_size_hint": c.stackSizeHint,
		"priority_hint":   c.priorityHint,
	}).Debug("task created")
	return t, nil
}

func (t *Task) run() {
	t.gate.Wait(tick.Infinite)

	if t.claim.Load() == claimRetire {
		// The gate was opened by Delete, not Start: exit without running the entry.
		t.log.Debug("task retired before start")
		t.finish()
		return
	}

	t.mu.Lock()
	t.started = time.Now()
	t.mu.Unlock()
	t.state.Store(int32(StateRunning))
	t.log.Debug("task running")

	panicked := safego.Run(func() { t.fn(t.self, t.arg) },
		safego.WithName(t.name),
		safego.WithTag("task_id", t.id.String()),
		safego.WithLogger(t.log),
		safego.WithPanicHandler(t.cfg.onPanic),
	)
	t.panicked.Store(panicked)
	t.finish()
}

func (t *Task) finish() {
	t.mu.Lock()
	t.stopped = time.Now()
	t.mu.Unlock()
	t.state.Store(int32(StateStopped))
	t.log.WithField("panicked", t.panicked.Load()).Debug("task stopped")

	if len(t.cfg.onExit) > 0 {
		st := t.Status()
		for _, fn := range t.cfg.onExit {
			fn(st)
		}
	}
}

// ID returns the task identity.
func (t *Task) ID() uuid.UUID { return t.id }

// Name returns the normalized task name (may be empty).
func (t *Task) Name() string { return t.name }

// State returns the committed lifecycle state: StateNew, StateRunning or StateStopped.
func (t *Task) State() State { return State(t.state.Load()) }

// Done returns a channel closed when the backing goroutine has exited.
func (t *Task) Done() <-chan struct{} { return t.done }

// Start releases the start gate.
//
// The first Start of a New task succeeds, whether or not a stop was already requested; in the
// latter case the entry observes ShouldStop()==true at its first poll. On failure the task is
// unchanged and the error wraps ErrInvalidTransition (ErrAlreadyStarted, or ErrDeleted once
// Delete has retired or released the task). StateRunning is recorded by the backing goroutine
// itself once it passes the gate.
func (t *Task) Start() error {
	if t.released.Load() {
		return ErrDeleted
	}
	if !t.claim.CompareAndSwap(claimNone, claimStart) {
		if t.claim.Load() == claimRetire {
			return ErrDeleted
		}
		return ErrAlreadyStarted
	}
	t.gate.Set()
	t.log.Debug("task start released")
	return nil
}

// RequestStop asks the task to stop. It is idempotent and never forces termination.
//
// It may be called before Start: the task stays New, a later Start still runs the entry, and
// the entry sees ShouldStop()==true immediately. A task that will never be started is cancelled
// with RequestStop followed by Delete.
func (t *Task) RequestStop() {
	if !t.stopReq.Swap(true) {
		t.log.Debug("task stop requested")
	}
	t.stopOnce.Do(func() { close(t.stopCh) })
}

// StopRequested reports whether RequestStop was called.
func (t *Task) StopRequested() bool { return t.stopReq.Load() }

// Delete waits up to timeout (tick.Infinite waits forever) for the backing goroutine to exit,
// then releases the task's resources exactly once.
//
// Delete does not request a stop. A never-started task whose stop was requested is retired:
// its goroutine leaves the gate without running the entry, and Start fails with ErrDeleted.
// If the timeout elapses first it returns ErrJoinTimeout and releases nothing: the goroutine
// keeps running and the handle stays valid, so the caller may retry or abandon it. After a
// successful Delete it returns ErrDeleted.
func (t *Task) Delete(timeout tick.Span) error {
	if t.released.Load() {
		return ErrDeleted
	}
	if t.stopReq.Load() && t.claim.CompareAndSwap(claimNone, claimRetire) {
		t.gate.Set()
	}

	select {
	case <-t.done:
	default:
		after, stop := tick.After(timeout, t.cfg.period)
		defer stop()
		select {
		case <-t.done:
		case <-after:
			t.log.WithFields(logrus.Fields{
				"timeout_ticks": timeout,
				"state":         t.State().String(),
			}).Warn("task delete timed out; task left running with its resources")
			return ErrJoinTimeout
		}
	}

	if !t.released.CompareAndSwap(false, true) {
		return ErrDeleted
	}
	t.gate.Destroy()
	t.fn = nil
	t.arg = nil
	if t.cfg.slots != nil {
		t.cfg.slots.Release(1)
	}
	for _, fn := range t.cfg.onDelete {
		fn(t)
	}
	t.log.Debug("task deleted")
	return nil
}

// Status returns a snapshot of the task.
func (t *Task) Status() Status {
	st := Status{
		ID:            t.id.String(),
		Name:          t.name,
		State:         t.State(),
		StopRequested: t.stopReq.Load(),
		Retired:       t.claim.Load() == claimRetire,
		Panicked:      t.panicked.Load(),
		Deleted:       t.released.Load(),
		StackSizeHint: t.cfg.stackSizeHint,
		PriorityHint:  t.cfg.priorityHint,
	}
	if st.State == StateRunning && st.StopRequested {
		st.State = StateStopping
	}

	t.mu.Lock()
	st.Created = t.created
	st.Started = t.started
	st.Stopped = t.stopped
	t.mu.Unlock()
	return st
}
