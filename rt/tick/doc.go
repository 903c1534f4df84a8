// Package tick provides the runtime's time base: a monotonic tick counter advanced by a single
// driver goroutine, and tick-denominated delays and timeouts.
//
// # Units
//
// Tick is a counter reading (how many periods the driver has observed). Span is a duration
// expressed in ticks; Infinite is the reserved "wait forever" value. The period is fixed when a
// Clock is constructed (DefaultPeriod is 10ms).
//
// # Lifecycle
//
//	c := tick.NewClock()
//	if err := c.Start(); err != nil {
//		// ErrAlreadyRunning / ErrResourceExhausted
//	}
//	defer c.Shutdown(context.Background())
//
// Start is not idempotent: a second Start without an intervening Shutdown returns
// ErrAlreadyRunning. Start after Shutdown is allowed; the counter continues from its last value.
//
// Shutdown is best-effort. It stops the driver and waits up to the configured grace span for the
// driver goroutine to exit. If the driver does not exit in time, Shutdown returns
// ErrShutdownAbandoned and the goroutine is left to exit on its own.
//
// # Delay vs counter
//
// Delay is a plain sleep of n*period. It does not wait for the counter to advance by n, so the
// counter observed after Delay(n) may differ from the one before it by n±1 (or more under load).
package tick
