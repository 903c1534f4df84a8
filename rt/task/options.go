package task

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/evan-idocoding/zrtos/rt/safego"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

type taskConfig struct {
	period time.Duration
	log    *logrus.Entry
	slots  *semaphore.Weighted

	// advisory only
	stackSizeHint int
	priorityHint  int

	onPanic  safego.PanicHandler
	onExit   []func(Status)
	onDelete []func(*Task)
}

// Option configures a task at creation.
type Option func(*taskConfig)

func defaultTaskConfig() taskConfig {
	return taskConfig{period: tick.DefaultPeriod}
}

// WithPeriod sets the tick period used to convert Delete timeouts. Default is tick.DefaultPeriod.
func WithPeriod(d time.Duration) Option {
	return func(c *taskConfig) {
		if d > 0 {
			c.period = d
		}
	}
}

// WithLogger sets the logger for lifecycle messages and entry panics.
func WithLogger(log *logrus.Entry) Option {
	return func(c *taskConfig) { c.log = log }
}

// WithSlots bounds live tasks: New takes one slot (failing with ErrResourceExhausted when none
// is free) and a successful Delete returns it.
func WithSlots(s *semaphore.Weighted) Option {
	return func(c *taskConfig) { c.slots = s }
}

// WithStackSizeHint records a stack size hint in bytes.
//
// Goroutine stacks grow on demand; the hint is kept for observability only.
func WithStackSizeHint(bytes int) Option {
	return func(c *taskConfig) { c.stackSizeHint = bytes }
}

// WithPriorityHint records a priority hint.
//
// There is no priority scheduler; the hint is kept for observability only.
func WithPriorityHint(p int) Option {
	return func(c *taskConfig) { c.priorityHint = p }
}

// WithPanicHandler sets the handler for entry panics. If not set, panics are logged.
func WithPanicHandler(h safego.PanicHandler) Option {
	return func(c *taskConfig) { c.onPanic = h }
}

// WithOnExit appends a hook called on the task goroutine once the task is Stopped.
//
// Hooks are called synchronously and must not block.
func WithOnExit(fn func(Status)) Option {
	return func(c *taskConfig) {
		if fn != nil {
			c.onExit = append(c.onExit, fn)
		}
	}
}

// WithOnDelete appends a hook called once, by the successful Delete.
func WithOnDelete(fn func(*Task)) Option {
	return func(c *taskConfig) {
		if fn != nil {
			c.onDelete = append(c.onDelete, fn)
		}
	}
}
