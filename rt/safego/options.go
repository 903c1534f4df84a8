package safego

import "github.com/sirupsen/logrus"

type config struct {
	name string
	tags []Tag

	finally []func()

	log         *logrus.Entry
	onPanic     PanicHandler
	panicPolicy PanicPolicy
}

// Option configures a single Go/Run call.
type Option func(*config)

func defaultConfig() config {
	return config{
		panicPolicy: RecoverAndReport,
	}
}

// WithName sets a human-friendly name for the goroutine.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithTag appends a single tag (key/value) to reports.
func WithTag(key, value string) Option {
	return func(c *config) {
		c.tags = append(c.tags, Tag{Key: key, Value: value})
	}
}

// WithTags appends tags to reports (preserving order).
func WithTags(tags ...Tag) Option {
	return func(c *config) {
		if len(tags) == 0 {
			return
		}
		c.tags = append(c.tags, tags...)
	}
}

// WithFinally registers a function to be called when execution finishes.
//
// Finalizers are executed in LIFO order (like defer). A panicking finalizer is recovered
// and reported; it is not rethrown.
func WithFinally(fn func()) Option {
	return func(c *config) {
		if fn == nil {
			return
		}
		c.finally = append(c.finally, fn)
	}
}

// WithLogger sets the entry used for default panic reports.
func WithLogger(log *logrus.Entry) Option {
	return func(c *config) { c.log = log }
}

// WithPanicHandler sets the panic handler. If not set, panics are logged at error level
// (unless the policy is RecoverOnly).
//
// Panics in the handler are contained: they are recovered and logged.
func WithPanicHandler(h PanicHandler) Option {
	return func(c *config) { c.onPanic = h }
}

// WithPanicPolicy sets the panic handling policy.
func WithPanicPolicy(p PanicPolicy) Option {
	return func(c *config) { c.panicPolicy = p }
}
