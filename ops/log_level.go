package ops

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type logLevelConfig struct {
	format Format
}

// LogLevelOption configures LogLevelGetHandler / LogLevelSetHandler.
type LogLevelOption func(*logLevelConfig)

// WithLogLevelDefaultFormat sets the default response format for log level handlers.
//
// This default can be overridden per request by URL query (?format=json|text).
// Default is FormatText.
func WithLogLevelDefaultFormat(f Format) LogLevelOption {
	return func(c *logLevelConfig) { c.format = f }
}

func applyLogLevelOptions(opts []LogLevelOption) logLevelConfig {
	cfg := logLevelConfig{format: FormatText}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.format = normalizeFormat(cfg.format)
	return cfg
}

// LogLevelSnapshot is a point-in-time snapshot of a logrus logger level.
type LogLevelSnapshot struct {
	// Level is the logrus level name: panic, fatal, error, warning, info, debug or trace.
	Level string `json:"level"`
	// LevelValue is the numeric logrus level (panic=0 ... trace=6).
	LevelValue int `json:"level_value"`
}

// LogLevel returns a snapshot of l's level.
func LogLevel(l *logrus.Logger) LogLevelSnapshot {
	if l == nil {
		return LogLevelSnapshot{}
	}
	lvl := l.GetLevel()
	return LogLevelSnapshot{Level: lvl.String(), LevelValue: int(lvl)}
}

type logLevelGetResponse struct {
	OK    bool              `json:"ok"`
	Error string            `json:"error,omitempty"`
	Log   *LogLevelSnapshot `json:"log,omitempty"`
}

type logLevelSetResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	Old *LogLevelSnapshot `json:"old,omitempty"`
	New *LogLevelSnapshot `json:"new,omitempty"`
}

// LogLevelGetHandler returns a handler that outputs the current level of l.
//
// GET/HEAD only; other methods return 405.
func LogLevelGetHandler(l *logrus.Logger, opts ...LogLevelOption) http.Handler {
	if l == nil {
		panic("ops: nil logrus.Logger")
	}
	cfg := applyLogLevelOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, r, format, "GET, HEAD", logLevelGetResponse{Error: "method not allowed"})
			return
		}
		snap := LogLevel(l)
		writeResponse(w, r, format, http.StatusOK, logLevelGetResponse{OK: true, Log: &snap}, "", func() string {
			var t textLines
			t.add("log", "level", snap.Level)
			t.add("log", "level_value", strconv.Itoa(snap.LevelValue))
			return t.String()
		})
	})
}

// LogLevelSetHandler returns a handler that sets the level of l.
//
// Input:
//   - POST only
//   - URL query: ?level=<logrus level> (case-insensitive; "warn" and "warning" are equivalent)
//
// Output:
//   - Text or JSON (controlled by option or ?format=)
func LogLevelSetHandler(l *logrus.Logger, opts ...LogLevelOption) http.Handler {
	if l == nil {
		panic("ops: nil logrus.Logger")
	}
	cfg := applyLogLevelOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, r, format, "POST", logLevelSetResponse{Error: "method not allowed"})
			return
		}

		levelStr, _ := getQueryRequired(r, "level")
		lvl, err := logrus.ParseLevel(strings.TrimSpace(levelStr))
		if err != nil {
			const msg = "invalid level (want one of: panic, fatal, error, warn, info, debug, trace)"
			writeResponse(w, r, format, http.StatusBadRequest, logLevelSetResponse{Error: msg}, msg, nil)
			return
		}

		old := LogLevel(l)
		l.SetLevel(lvl)
		newSnap := LogLevel(l)
		l.WithFields(logrus.Fields{"old": old.Level, "new": newSnap.Level}).Info("log level changed")
		writeResponse(w, r, format, http.StatusOK, logLevelSetResponse{OK: true, Old: &old, New: &newSnap}, "", func() string {
			var t textLines
			t.add("log", "old_level", old.Level)
			t.add("log", "old_level_value", strconv.Itoa(old.LevelValue))
			t.add("log", "new_level", newSnap.Level)
			t.add("log", "new_level_value", strconv.Itoa(newSnap.LevelValue))
			return t.String()
		})
	})
}
