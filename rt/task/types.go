package task

import (
	"fmt"
	"time"
)

// Func is the entry function of a task.
//
// self is the task's own handle (use it to poll ShouldStop and to Yield); arg is the argument
// given to New.
type Func func(self *Self, arg any)

// State is the lifecycle state of a task.
//
// The committed states are New, Running and Stopped, and transitions are monotonic.
// Stopping is derived: it is reported by Status for a Running task whose stop was requested.
type State int32

const (
	StateNew State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is a task state snapshot.
type Status struct {
	ID    string
	Name  string
	State State

	StopRequested bool
	// Retired is true when Delete released a never-started, stop-requested task, which then
	// stopped without running its entry.
	Retired  bool
	Panicked bool
	Deleted  bool

	// Advisory hints recorded at creation. They are not enforced.
	StackSizeHint int
	PriorityHint  int

	Created time.Time
	Started time.Time
	Stopped time.Time
}
