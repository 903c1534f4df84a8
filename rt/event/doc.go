// Package event provides a manual-reset binary signal with tick-denominated wait timeouts.
//
// Once Set, an Event stays signaled for every current and future waiter until Reset. A single
// Set releases all concurrent waiters (broadcast). This is distinct from an auto-reset signal,
// which would release one waiter and re-arm.
//
//	ev := event.New(event.WithPeriod(10 * time.Millisecond))
//	go func() {
//		if ev.Wait(300) {
//			// signaled
//		}
//	}()
//	ev.Set()
//
// Set happens-before any Wait that observes it.
//
// Wait returns false only after the full timeout has elapsed. A timeout of 0 polls the current
// state without blocking; tick.Infinite waits forever.
//
// Destroy retires the Event: later Set/Reset are no-ops and later waits return false
// immediately. Destroy does not wake goroutines already blocked in Wait; do not destroy an
// Event that others may still be waiting on.
package event
