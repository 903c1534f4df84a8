// Package safego runs functions with panic containment and logrus reporting.
//
// zrtos starts one goroutine per task plus one clock driver. A panic in any of them must not
// take the process down, and it must not leave the owner waiting forever on a completion
// signal. safego covers both: panics are recovered and reported, and WithFinally functions
// always run.
//
// # Synchronous vs asynchronous
//
// Go starts a new goroutine. Run executes synchronously (it does not start a goroutine).
//
//	done := make(chan struct{})
//	safego.Go(work,
//		safego.WithName("clock"),
//		safego.WithFinally(func() { close(done) }),
//	)
//
// # Panic policy
//
// By default, safego uses RecoverAndReport: it recovers panics and reports them via
// WithPanicHandler if provided, otherwise to the configured logrus entry at error level
// (logrus.StandardLogger() when none is set).
//
// Use RepanicAfterReport to report and then panic again, or RecoverOnly to recover silently.
//
// # Finalizers
//
// WithFinally functions are always executed (on success, panic, and repanic), in LIFO order.
// If a finalizer panics, the panic is contained (not rethrown) but reported.
package safego
