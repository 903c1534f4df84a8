// Package task provides cooperative tasks: goroutines with an explicit
// create → start → stop → delete lifecycle.
//
// # Lifecycle
//
//	t, err := task.New("worker", func(self *task.Self, arg any) {
//		for !self.ShouldStop() {
//			// ... a slice of work ...
//			self.Yield()
//		}
//	}, nil)
//	if err != nil {
//		// ErrInvalidName / ErrResourceExhausted
//	}
//	_ = t.Start()
//	// ...
//	t.RequestStop()
//	if err := t.Delete(100); errors.Is(err, task.ErrJoinTimeout) {
//		// still running; retry later or abandon the goroutine
//	}
//
// New spawns the backing goroutine immediately, but holds it at a start gate: no entry code
// runs before Start. The state machine is
//
//	New --Start--> Running --(entry returns)--> Stopped
//	New --(RequestStop, then Delete; never started)--> Stopped
//
// Transitions are monotonic. Stopping is not a committed state; Status reports it for a Running
// task whose stop was requested.
//
// # Cooperative stop
//
// RequestStop sets a flag the entry polls via Self.ShouldStop (or selects on
// Self.StopRequested). It never forces termination: a task that never polls never stops.
//
// A stop may be requested before Start. Only Start moves a task out of New, so a later Start
// still succeeds and the entry observes ShouldStop()==true at its first poll. To cancel a task
// that will never run, call RequestStop and then Delete: Delete opens the gate and the task
// stops without running its entry.
//
// # Self
//
// The entry receives its own *Self explicitly. There is no ambient "current task".
//
// # Delete
//
// Delete joins the backing goroutine with a tick-denominated timeout. On timeout it returns
// ErrJoinTimeout and releases nothing, so the caller can tell a leak from a clean delete. The
// successful Delete releases everything exactly once; later calls return ErrDeleted.
//
// # Hints
//
// WithStackSizeHint and WithPriorityHint are recorded for observability and are not enforced.
// Goroutines are scheduled by the Go runtime with no priorities.
//
// # Panics
//
// A panicking entry is recovered (see rt/safego), logged, recorded in Status.Panicked, and the
// task still reaches Stopped.
package task
