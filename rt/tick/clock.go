package tick

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evan-idocoding/zrtos/rt/safego"
)

// Clock is a monotonic tick counter advanced by a single driver goroutine.
//
// It is safe for concurrent use. Ticks may be called at any time, including before Start
// (it returns 0) and after Shutdown (it returns the frozen value).
type Clock struct {
	cfg clockConfig
	log *logrus.Entry

	count atomic.Uint64

	mu  sync.Mutex
	drv *driver // nil when not running

	// beforeExit runs on the driver goroutine after the ticker is stopped and before the
	// driver reports exit. Tests use it to hold the driver.
	beforeExit func()
}

type driver struct {
	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}
}

// NewClock creates a stopped Clock.
func NewClock(opts ...ClockOption) *Clock {
	cfg := clockConfig{
		period: DefaultPeriod,
		grace:  DefaultShutdownGrace,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	log := cfg.log
	if log == nil {
		log = logrus.WithField("component", "tick")
	}
	return &Clock{cfg: cfg, log: log}
}

// Period returns the configured tick period.
func (c *Clock) Period() time.Duration { return c.cfg.period }

// Ticks returns the current counter value. It never blocks.
func (c *Clock) Ticks() Tick {
	return Tick(c.count.Load())
}

// Running reports whether a driver is currently attached.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drv != nil
}

// Start spawns the driver goroutine and arms its periodic timer.
//
// Start is not idempotent: calling it while a driver is running returns ErrAlreadyRunning.
func (c *Clock) Start() error {
	if c.cfg.period <= 0 {
		return fmt.Errorf("%w: invalid period %s", ErrResourceExhausted, c.cfg.period)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drv != nil {
		return ErrAlreadyRunning
	}
	d := &driver{
		ticker: time.NewTicker(c.cfg.period),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	c.drv = d

	safego.Go(func() { c.drive(d) },
		safego.WithName("tick-driver"),
		safego.WithLogger(c.log),
		safego.WithFinally(func() { c.retire(d) }),
	)
	c.log.WithFields(logrus.Fields{
		"period": c.cfg.period,
		"ticks":  c.count.Load(),
	}).Debug("tick driver started")
	return nil
}

func (c *Clock) drive(d *driver) {
	for {
		select {
		case <-d.stop:
			return
		case <-d.ticker.C:
			// A firing that races with stop must not advance a stopped clock.
			select {
			case <-d.stop:
				return
			default:
			}
			c.count.Add(1)
		}
	}
}

func (c *Clock) retire(d *driver) {
	d.ticker.Stop()
	if c.beforeExit != nil {
		c.beforeExit()
	}
	c.mu.Lock()
	if c.drv == d {
		c.drv = nil
	}
	c.mu.Unlock()
	close(d.done)
}

// Shutdown stops the driver and waits up to the grace span for it to exit.
//
// It returns nil when the driver exited (or none was running). If the grace span elapses or
// ctx is done first, it returns ErrShutdownAbandoned (wrapping ctx.Err() in the latter case);
// the driver is detached and left to exit on its own.
//
// If ctx is nil, it is treated as context.Background().
func (c *Clock) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	d := c.drv
	c.drv = nil
	c.mu.Unlock()
	if d == nil {
		return nil
	}
	close(d.stop)

	timeout, stop := After(c.cfg.grace, c.cfg.period)
	defer stop()

	select {
	case <-d.done:
		c.log.WithField("ticks", c.count.Load()).Debug("tick driver stopped")
		return nil
	case <-timeout:
		c.log.WithField("grace_ticks", c.cfg.grace).Warn("tick driver did not exit in time; abandoned")
		return ErrShutdownAbandoned
	case <-ctx.Done():
		c.log.WithError(ctx.Err()).Warn("tick driver shutdown interrupted; abandoned")
		return fmt.Errorf("%w: %w", ErrShutdownAbandoned, ctx.Err())
	}
}

// Delay blocks the caller for n ticks of wall time, or forever if n is Infinite.
//
// It is a plain sleep and does not observe the counter.
func (c *Clock) Delay(n Span) {
	if n == Infinite {
		select {}
	}
	time.Sleep(n.Duration(c.cfg.period))
}

// DelayContext is like Delay but returns ctx.Err() early if ctx is done.
func (c *Clock) DelayContext(ctx context.Context, n Span) error {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout, stop := After(n, c.cfg.period)
	defer stop()
	select {
	case <-timeout:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
