package tick

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when a driver is already running.
	ErrAlreadyRunning = errors.New("tick: clock already running")
	// ErrResourceExhausted is returned by Start when the driver timer cannot be armed.
	ErrResourceExhausted = errors.New("tick: resource exhausted")
	// ErrShutdownAbandoned is returned by Shutdown when the driver did not exit within the
	// grace span. The driver is not forcibly reclaimed.
	ErrShutdownAbandoned = errors.New("tick: shutdown abandoned driver")
)
