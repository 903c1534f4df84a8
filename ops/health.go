package ops

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type healthConfig struct {
	format Format
}

// HealthOption configures HealthzHandler / ReadyzHandler.
type HealthOption func(*healthConfig)

// WithHealthDefaultFormat sets the default response format for health handlers.
//
// This default can be overridden per request by URL query (?format=json|text).
// Default is FormatText.
func WithHealthDefaultFormat(f Format) HealthOption {
	return func(c *healthConfig) { c.format = f }
}

func applyHealthOptions(opts []HealthOption) healthConfig {
	cfg := healthConfig{format: FormatText}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.format = normalizeFormat(cfg.format)
	return cfg
}

type healthResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HealthzHandler returns a liveness handler. It always responds 200 OK for GET/HEAD.
func HealthzHandler(opts ...HealthOption) http.Handler {
	cfg := applyHealthOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, r, format, "GET, HEAD", healthResponse{Error: "method not allowed"})
			return
		}
		writeResponse(w, r, format, http.StatusOK, healthResponse{OK: true}, "", func() string { return "ok\n" })
	})
}

// ReadyCheckFunc is a readiness check function.
//
// It should return nil when healthy. Implementations should be fast and must
// respect ctx cancellation.
type ReadyCheckFunc func(context.Context) error

// ReadyCheck is a named readiness check.
type ReadyCheck struct {
	Name    string
	Func    ReadyCheckFunc
	Timeout time.Duration // optional per-check timeout; <= 0 means "no extra timeout"
}

// ReadyCheckResult is a single check execution result.
type ReadyCheckResult struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	// Duration is encoded as an integer number of nanoseconds in JSON.
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	TimedOut bool          `json:"timed_out,omitempty"`
}

// ReadyzReport is a point-in-time readiness execution report.
type ReadyzReport struct {
	OK       bool               `json:"ok"`
	Duration time.Duration      `json:"duration"`
	Checks   []ReadyCheckResult `json:"checks,omitempty"`
}

// ErrClockStopped is reported by ClockRunningCheck while the clock is not running.
var ErrClockStopped = errors.New("ops: clock not running")

// ClockRunningCheck returns a readiness check that fails while src's clock is stopped.
func ClockRunningCheck(src ClockSource) ReadyCheck {
	if src == nil {
		panic("ops: nil ClockSource")
	}
	return ReadyCheck{
		Name: "clock",
		Func: func(context.Context) error {
			if !src.Running() {
				return ErrClockStopped
			}
			return nil
		},
	}
}

// ReadyzHandler returns a readiness handler that runs checks sequentially.
//
// It responds 200 OK if all checks pass, and 503 Service Unavailable if any check fails or
// times out. GET/HEAD only; other methods return 405.
func ReadyzHandler(checks []ReadyCheck, opts ...HealthOption) http.Handler {
	for i, c := range checks {
		if c.Name == "" {
			panic(fmt.Sprintf("ops: ready check[%d] has empty Name", i))
		}
		if c.Func == nil {
			panic(fmt.Sprintf("ops: ready check[%d] %q has nil Func", i, c.Name))
		}
	}
	cfg := applyHealthOptions(opts)
	snapshot := append([]ReadyCheck(nil), checks...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, r, format, "GET, HEAD", ReadyzReport{
				Checks: []ReadyCheckResult{{Name: "method", Error: "method not allowed"}},
			})
			return
		}

		rep := RunReadyzChecks(r.Context(), snapshot)
		code := http.StatusOK
		if !rep.OK {
			code = http.StatusServiceUnavailable
		}
		// Readiness failures list every failed check, so render text even for 503.
		w.Header().Set("Cache-Control", "no-store")
		if format == FormatJSON {
			writeResponse(w, r, format, code, rep, "", nil)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(code)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(renderReadyText(rep)))
		}
	})
}

func renderReadyText(rep ReadyzReport) string {
	if rep.OK {
		return "ok\n"
	}
	var l textLines
	for _, c := range rep.Checks {
		if c.OK {
			continue
		}
		if c.Error != "" {
			l.add("fail", c.Name, c.Error)
		} else {
			l.add("fail", c.Name)
		}
	}
	return l.String()
}

// RunReadyzChecks executes checks sequentially and returns a report.
func RunReadyzChecks(ctx context.Context, checks []ReadyCheck) ReadyzReport {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	out := ReadyzReport{
		OK:     true,
		Checks: make([]ReadyCheckResult, 0, len(checks)),
	}
	for _, c := range checks {
		cr := runOneCheck(ctx, c)
		out.Checks = append(out.Checks, cr)
		if !cr.OK {
			out.OK = false
		}
	}
	out.Duration = time.Since(start)
	return out
}

func runOneCheck(parent context.Context, c ReadyCheck) (cr ReadyCheckResult) {
	cr.Name = c.Name

	start := time.Now()
	ctx := parent
	cancel := func() {}
	if c.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, c.Timeout)
	}
	defer cancel()

	defer func() {
		cr.Duration = time.Since(start)
		if p := recover(); p != nil {
			cr.OK = false
			cr.Error = fmt.Sprintf("panic: %v", p)
		}
		if ctx.Err() == context.DeadlineExceeded {
			cr.TimedOut = true
			cr.OK = false
			if cr.Error == "" {
				cr.Error = "timeout"
			}
		}
	}()

	if err := c.Func(ctx); err != nil {
		cr.Error = err.Error()
		return cr
	}
	cr.OK = true
	return cr
}
