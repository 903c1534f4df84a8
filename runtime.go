package zrtos

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/evan-idocoding/zrtos/rt/event"
	"github.com/evan-idocoding/zrtos/rt/task"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

// Runtime owns a tick clock and creates events and tasks bound to its period.
//
// It tracks live tasks for observability but does not own them: callers stop and delete the
// tasks they create. A Runtime is safe for concurrent use.
type Runtime struct {
	cfg   Config
	log   *logrus.Entry
	clock *tick.Clock
	slots *semaphore.Weighted // nil when MaxTasks is 0

	mu    sync.Mutex
	tasks map[uuid.UUID]*task.Task
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConfig sets the configuration. Default is DefaultConfig().
func WithConfig(c Config) Option {
	return func(r *Runtime) { r.cfg = c }
}

// WithLogger sets the base logger. Components derive their loggers from it.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Runtime) { r.log = log }
}

// New creates a stopped Runtime.
//
// The configuration is not validated here; an unusable tick period makes Start fail.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		cfg:   DefaultConfig(),
		tasks: make(map[uuid.UUID]*task.Task),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.log == nil {
		r.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if r.cfg.MaxTasks > 0 {
		r.slots = semaphore.NewWeighted(r.cfg.MaxTasks)
	}
	r.clock = tick.NewClock(
		tick.WithPeriod(r.cfg.TickPeriod),
		tick.WithShutdownGrace(r.cfg.ShutdownGrace),
		tick.WithLogger(r.log.WithField("component", "clock")),
	)
	return r
}

// Config returns the configuration the Runtime was built with.
func (r *Runtime) Config() Config { return r.cfg }

// Clock returns the underlying clock.
func (r *Runtime) Clock() *tick.Clock { return r.clock }

// Start starts the tick clock.
//
// It returns tick.ErrAlreadyRunning if the clock is running, and an error wrapping
// tick.ErrResourceExhausted if the clock cannot be armed. Start after Shutdown is allowed and
// the tick count continues from its last value.
func (r *Runtime) Start() error {
	if err := r.clock.Start(); err != nil {
		return err
	}
	r.log.WithField("tick_period", r.cfg.TickPeriod.String()).Info("runtime started")
	return nil
}

// Shutdown stops the tick clock and waits for its driver to exit, bounded by the configured
// grace span and ctx.
//
// It returns nil on a clean stop (or when not running) and an error wrapping
// tick.ErrShutdownAbandoned when the bound was hit. Tasks are not touched.
func (r *Runtime) Shutdown(ctx context.Context) error {
	err := r.clock.Shutdown(ctx)
	entry := r.log.WithField("ticks", uint64(r.clock.Ticks()))
	if err != nil {
		entry.WithError(err).Warn("runtime shutdown incomplete")
		return err
	}
	entry.Info("runtime stopped")
	return nil
}

// Running reports whether the clock is running.
func (r *Runtime) Running() bool { return r.clock.Running() }

// Ticks returns the current tick count.
func (r *Runtime) Ticks() tick.Tick { return r.clock.Ticks() }

// Period returns the tick period.
func (r *Runtime) Period() time.Duration { return r.clock.Period() }

// Delay blocks for n ticks (forever for tick.Infinite).
func (r *Runtime) Delay(n tick.Span) { r.clock.Delay(n) }

// DelayContext is Delay that returns ctx.Err() if ctx ends first.
func (r *Runtime) DelayContext(ctx context.Context, n tick.Span) error {
	return r.clock.DelayContext(ctx, n)
}

// NewEvent creates an unsignaled manual-reset event whose timeouts use the runtime period.
func (r *Runtime) NewEvent(opts ...event.Option) *event.Event {
	return event.New(append([]event.Option{event.WithPeriod(r.clock.Period())}, opts...)...)
}

// NewTask creates a task in StateNew bound to the runtime period, logger and task budget.
//
// A non-empty name must not be used by another live task (task.ErrDuplicateName). The task is
// tracked until it is successfully deleted. opts are applied after the runtime defaults.
func (r *Runtime) NewTask(name string, fn task.Func, arg any, opts ...task.Option) (*task.Task, error) {
	base := []task.Option{
		task.WithPeriod(r.clock.Period()),
		task.WithLogger(r.log.WithField("component", "task")),
		task.WithOnDelete(r.forget),
	}
	if r.slots != nil {
		base = append(base, task.WithSlots(r.slots))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n := strings.TrimSpace(name); n != "" {
		if _, ok := r.lookupLocked(n); ok {
			return nil, fmt.Errorf("%w: %q", task.ErrDuplicateName, n)
		}
	}
	t, err := task.New(name, fn, arg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	r.tasks[t.ID()] = t
	return t, nil
}

func (r *Runtime) forget(t *task.Task) {
	r.mu.Lock()
	delete(r.tasks, t.ID())
	r.mu.Unlock()
}

// Lookup returns the live task with the given name, or, failing that, with the given ID.
// Unnamed tasks are reachable by ID only.
func (r *Runtime) Lookup(name string) (*task.Task, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.lookupLocked(name); ok {
		return t, true
	}
	if id, err := uuid.Parse(name); err == nil {
		t, ok := r.tasks[id]
		return t, ok
	}
	return nil, false
}

func (r *Runtime) lookupLocked(name string) (*task.Task, bool) {
	for _, t := range r.tasks {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Tasks returns a snapshot of live tasks ordered by creation time.
func (r *Runtime) Tasks() []task.Status {
	r.mu.Lock()
	out := make([]task.Status, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Status())
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
