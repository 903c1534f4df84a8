package ops

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Source is everything the ops router reads from. *zrtos.Runtime implements it.
type Source interface {
	ClockSource
	TaskSource
}

type routerConfig struct {
	format      Format
	logger      *logrus.Logger
	readOnly    bool
	writeGuards []Guard
	taskOpts    []TaskOption
	readyChecks []ReadyCheck
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

// WithDefaultFormat sets the default response format of every route. Default is FormatText.
func WithDefaultFormat(f Format) RouterOption {
	return func(c *routerConfig) { c.format = f }
}

// WithLogger sets the logger whose level the /log/level routes read and write, and which
// receives access logs. Default is logrus.StandardLogger().
func WithLogger(l *logrus.Logger) RouterOption {
	return func(c *routerConfig) { c.logger = l }
}

// WithReadOnly disables the write routes (POST /tasks/stop and POST /log/level).
func WithReadOnly() RouterOption {
	return func(c *routerConfig) { c.readOnly = true }
}

// WithWriteGuard admits write routes only through gs (for example TokenGuard and
// IPAllowList). Repeated guards all apply, in order.
func WithWriteGuard(gs ...Guard) RouterOption {
	return func(c *routerConfig) {
		for _, g := range gs {
			if g != nil {
				c.writeGuards = append(c.writeGuards, g)
			}
		}
	}
}

// WithTaskOptions passes options (such as name guards) to the task handlers.
func WithTaskOptions(opts ...TaskOption) RouterOption {
	return func(c *routerConfig) { c.taskOpts = append(c.taskOpts, opts...) }
}

// WithReadyChecks appends readiness checks run after the built-in clock check.
func WithReadyChecks(checks ...ReadyCheck) RouterOption {
	return func(c *routerConfig) { c.readyChecks = append(c.readyChecks, checks...) }
}

// NewRouter returns a chi router serving the ops surface of src:
//
//	GET  /healthz      liveness
//	GET  /readyz       readiness (fails while the clock is stopped)
//	GET  /clock        clock state
//	GET  /tasks        live tasks
//	POST /tasks/stop   ?name=<task>: request a cooperative stop
//	GET  /log/level    current log level
//	POST /log/level    ?level=<level>: set the log level
//
// Every route accepts ?format=text|json.
func NewRouter(src Source, opts ...RouterOption) chi.Router {
	if src == nil {
		panic("ops: nil Source")
	}
	cfg := routerConfig{format: FormatText}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	health := WithHealthDefaultFormat(cfg.format)
	taskOpts := append([]TaskOption{WithTaskDefaultFormat(cfg.format)}, cfg.taskOpts...)
	logOpt := WithLogLevelDefaultFormat(cfg.format)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(cfg.logger))
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/healthz", HealthzHandler(health))
	r.Method(http.MethodHead, "/healthz", HealthzHandler(health))

	checks := append([]ReadyCheck{ClockRunningCheck(src)}, cfg.readyChecks...)
	r.Method(http.MethodGet, "/readyz", ReadyzHandler(checks, health))
	r.Method(http.MethodGet, "/clock", ClockHandler(src, health))
	r.Method(http.MethodGet, "/tasks", TasksSnapshotHandler(src, taskOpts...))
	r.Method(http.MethodGet, "/log/level", LogLevelGetHandler(cfg.logger, logOpt))

	if !cfg.readOnly {
		r.Group(func(w chi.Router) {
			for _, g := range cfg.writeGuards {
				w.Use(g)
			}
			w.Method(http.MethodPost, "/tasks/stop", TaskStopHandler(src, taskOpts...))
			w.Method(http.MethodPost, "/log/level", LogLevelSetHandler(cfg.logger, logOpt))
		})
	}
	return r
}

func accessLog(l *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := l.WithFields(logrus.Fields{
				"component":  "ops",
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"duration":   time.Since(start).String(),
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("ops request failed")
				return
			}
			entry.Debug("ops request")
		})
	}
}
