package tick

import (
	"time"

	"github.com/sirupsen/logrus"
)

type clockConfig struct {
	period time.Duration
	grace  Span
	log    *logrus.Entry
}

// DefaultShutdownGrace is how long Shutdown waits for the driver to exit, in ticks.
const DefaultShutdownGrace Span = 10

// ClockOption configures a Clock.
type ClockOption func(*clockConfig)

// WithPeriod sets the tick period. Default is DefaultPeriod.
//
// A non-positive period makes Start fail with ErrResourceExhausted.
func WithPeriod(d time.Duration) ClockOption {
	return func(c *clockConfig) { c.period = d }
}

// WithShutdownGrace sets how many ticks Shutdown waits for the driver to exit.
// Default is DefaultShutdownGrace.
func WithShutdownGrace(s Span) ClockOption {
	return func(c *clockConfig) { c.grace = s }
}

// WithLogger sets the logger used for driver lifecycle messages.
func WithLogger(log *logrus.Entry) ClockOption {
	return func(c *clockConfig) { c.log = log }
}
