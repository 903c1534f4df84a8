package task

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Self is the capability a task's entry function receives for its own task.
type Self struct {
	t *Task
}

// ID returns the task identity.
func (s *Self) ID() uuid.UUID { return s.t.id }

// Name returns the task name (may be empty).
func (s *Self) Name() string { return s.t.name }

// ShouldStop reports whether a stop was requested. Entry functions poll it cooperatively;
// a task that never polls never stops.
func (s *Self) ShouldStop() bool { return s.t.stopReq.Load() }

// StopRequested returns a channel closed once a stop is requested, for use in select.
func (s *Self) StopRequested() <-chan struct{} { return s.t.stopCh }

// Yield gives up the rest of the current scheduling slice. It does not block for a determinate
// duration and gives no ordering guarantee about when control returns.
func (s *Self) Yield() { runtime.Gosched() }

// Logger returns the task's logger (carrying task_id and task fields).
func (s *Self) Logger() *logrus.Entry { return s.t.log }
