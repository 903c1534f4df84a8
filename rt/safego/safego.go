package safego

import (
	"fmt"
	"runtime/debug"
)

// Go starts fn in a new goroutine, applying the configured panic handling.
func Go(fn func(), opts ...Option) {
	go Run(fn, opts...)
}

// Run executes fn synchronously (it does not start a goroutine), applying the configured
// panic handling.
//
// It reports whether fn panicked. Under RepanicAfterReport, Run does not return normally.
func Run(fn func(), opts ...Option) (panicked bool) {
	c := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	// Always run finalizers (LIFO), even when we repanic.
	defer runFinalizers(c)

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		panicked = true

		if c.panicPolicy == RecoverOnly {
			return
		}
		report(c, PanicInfo{
			Name:  c.name,
			Tags:  cloneTags(c.tags),
			Value: p,
			Stack: debug.Stack(),
		})
		if c.panicPolicy == RepanicAfterReport {
			panic(p)
		}
	}()

	fn()
	return false
}

func report(c config, info PanicInfo) {
	if c.onPanic != nil {
		callPanicHandlerNoPanic(c, info)
		return
	}
	reportPanicToLog(c.logger(), info)
}

func runFinalizers(c config) {
	// LIFO, like defer.
	for i := len(c.finally) - 1; i >= 0; i-- {
		fn := c.finally[i]
		if fn == nil {
			continue
		}
		func() {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				report(c, PanicInfo{
					Name:  c.name,
					Tags:  cloneTags(c.tags),
					Value: fmt.Sprintf("safego: finalizer panicked: %v", p),
					Stack: debug.Stack(),
				})
			}()
			fn()
		}()
	}
}

func cloneTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

func callPanicHandlerNoPanic(c config, info PanicInfo) {
	defer func() {
		if p := recover(); p != nil {
			// Avoid secondary panics from user handlers taking down the program.
			reportPanicToLog(c.logger(), PanicInfo{
				Name:  info.Name,
				Tags:  info.Tags,
				Value: fmt.Sprintf("safego: panic handler panicked: %v", p),
				Stack: debug.Stack(),
			})
		}
	}()
	c.onPanic(info)
}
