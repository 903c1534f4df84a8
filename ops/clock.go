package ops

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evan-idocoding/zrtos/rt/tick"
)

// ClockSource is the read side of a tick clock. *zrtos.Runtime and *tick.Clock implement it.
type ClockSource interface {
	Ticks() tick.Tick
	Period() time.Duration
	Running() bool
}

// ClockSnapshot is a point-in-time view of a clock.
type ClockSnapshot struct {
	Running bool   `json:"running"`
	Ticks   uint64 `json:"ticks"`
	// Period is encoded as an integer number of nanoseconds in JSON.
	Period time.Duration `json:"period"`
	// Elapsed is Ticks*Period, the nominal time the clock has been driven.
	Elapsed time.Duration `json:"elapsed"`
}

// Clock returns a snapshot of src.
func Clock(src ClockSource) ClockSnapshot {
	n := src.Ticks()
	p := src.Period()
	return ClockSnapshot{
		Running: src.Running(),
		Ticks:   uint64(n),
		Period:  p,
		Elapsed: time.Duration(n) * p,
	}
}

type clockResponse struct {
	OK    bool           `json:"ok"`
	Error string         `json:"error,omitempty"`
	Clock *ClockSnapshot `json:"clock,omitempty"`
}

// ClockHandler returns a handler that outputs the clock state.
//
// GET/HEAD only. Text output:
//
//	clock	running	true
//	clock	ticks	1234
//	clock	period	10ms
//	clock	elapsed	12.34s
func ClockHandler(src ClockSource, opts ...HealthOption) http.Handler {
	if src == nil {
		panic("ops: nil ClockSource")
	}
	cfg := applyHealthOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, r, format, "GET, HEAD", clockResponse{Error: "method not allowed"})
			return
		}
		snap := Clock(src)
		writeResponse(w, r, format, http.StatusOK, clockResponse{OK: true, Clock: &snap}, "", func() string {
			var l textLines
			l.add("clock", "running", strconv.FormatBool(snap.Running))
			l.add("clock", "ticks", strconv.FormatUint(snap.Ticks, 10))
			l.add("clock", "period", snap.Period.String())
			l.add("clock", "elapsed", snap.Elapsed.String())
			return l.String()
		})
	})
}
