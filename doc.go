// Package zrtos is a small cooperative task runtime built on goroutines.
//
// It provides three primitives, each usable on its own from its subpackage:
//   - rt/tick: a monotonic tick clock (default period 10ms) driven by one goroutine.
//   - rt/event: a manual-reset event with tick-denominated timeouts.
//   - rt/task: a task with an explicit create, start, stop and delete lifecycle and a
//     cooperative stop protocol.
//
// A Runtime ties them together: it owns the clock, creates events and tasks that share its
// period, logger and task budget, and keeps a registry of live tasks for the ops package.
//
// # Quick start
//
//	rt := zrtos.New()
//	if err := rt.Start(); err != nil {
//		return err
//	}
//	defer rt.Shutdown(context.Background())
//
//	t, err := rt.NewTask("worker", func(self *task.Self, _ any) {
//		for !self.ShouldStop() {
//			// do a bounded slice of work
//			self.Yield()
//		}
//	}, nil)
//	if err != nil {
//		return err
//	}
//	_ = t.Start()
//	rt.Delay(100)
//	t.RequestStop()
//	if err := t.Delete(100); errors.Is(err, task.ErrJoinTimeout) {
//		// the task did not exit within 100 ticks; it keeps its resources
//	}
//
// # Lifecycle
//
// Start brings up the clock. Starting a running Runtime returns tick.ErrAlreadyRunning.
// Shutdown stops the clock and waits a bounded time for the driver to exit; it returns
// tick.ErrShutdownAbandoned when the bound is hit. Start after Shutdown is allowed and the tick
// count continues from where it stopped.
//
// Shutdown does not stop tasks. Tasks are cooperative: request a stop, then Delete with a
// join timeout.
//
// # Configuration
//
// Config is loaded from YAML (LoadConfig, ParseConfig) on top of DefaultConfig. Logging uses
// logrus; ApplyLogging sets the level and format of the standard logger.
package zrtos
