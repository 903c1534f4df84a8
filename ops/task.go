package ops

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evan-idocoding/zrtos/rt/task"
)

// TaskSource lists and looks up live tasks. *zrtos.Runtime implements it.
//
// Lookup accepts a task name or, for unnamed tasks, the task ID.
type TaskSource interface {
	Tasks() []task.Status
	Lookup(name string) (*task.Task, bool)
}

type taskOpsConfig struct {
	format Format

	guards []func(name string) bool
	guard  func(name string) bool
}

// TaskOption configures task ops handlers.
type TaskOption func(*taskOpsConfig)

// WithTaskDefaultFormat sets the default response format for task handlers.
//
// This default can be overridden per request by URL query (?format=json|text).
// Default is FormatText.
func WithTaskDefaultFormat(f Format) TaskOption {
	return func(c *taskOpsConfig) { c.format = f }
}

// WithTaskNameGuard appends a name guard.
//
// All guards are combined with AND: a name is allowed only if all guards allow it.
// This applies to both read and write handlers. Unnamed tasks are matched by their ID.
func WithTaskNameGuard(fn func(name string) bool) TaskOption {
	return func(c *taskOpsConfig) {
		if fn != nil {
			c.guards = append(c.guards, fn)
		}
	}
}

// WithTaskAllowPrefixes restricts task names to the provided prefixes.
//
// Safety note: if no non-empty prefix is provided, this option denies all names.
func WithTaskAllowPrefixes(prefixes ...string) TaskOption {
	var ps []string
	for _, p := range prefixes {
		if p != "" {
			ps = append(ps, p)
		}
	}
	return WithTaskNameGuard(func(name string) bool {
		for _, p := range ps {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	})
}

// WithTaskAllowNames restricts task names to the provided explicit set.
//
// Safety note: if no non-empty name is provided, this option denies all names.
func WithTaskAllowNames(names ...string) TaskOption {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return WithTaskNameGuard(func(name string) bool {
		_, ok := set[name]
		return ok
	})
}

func applyTaskOptions(opts []TaskOption) taskOpsConfig {
	cfg := taskOpsConfig{format: FormatText}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.format = normalizeFormat(cfg.format)
	if len(cfg.guards) > 0 {
		guards := cfg.guards
		cfg.guard = func(name string) bool {
			for _, g := range guards {
				if !g(name) {
					return false
				}
			}
			return true
		}
	}
	return cfg
}

func (c taskOpsConfig) allowed(name string) bool {
	return c.guard == nil || c.guard(name)
}

// TaskStatusSnapshot is the JSON shape of a task.Status.
type TaskStatusSnapshot struct {
	ID string `json:"id"`
	// Name is empty for unnamed tasks. DisplayName falls back to the ID.
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name"`
	State       string `json:"state"`

	StopRequested bool `json:"stop_requested"`
	Retired       bool `json:"retired,omitempty"`
	Panicked      bool `json:"panicked,omitempty"`

	StackSizeHint int `json:"stack_size_hint,omitempty"`
	PriorityHint  int `json:"priority_hint,omitempty"`

	Created time.Time  `json:"created"`
	Started *time.Time `json:"started,omitempty"`
	Stopped *time.Time `json:"stopped,omitempty"`
}

func toTaskStatusSnapshot(st task.Status) TaskStatusSnapshot {
	out := TaskStatusSnapshot{
		ID:            st.ID,
		Name:          st.Name,
		DisplayName:   displayName(st.Name, st.ID),
		State:         st.State.String(),
		StopRequested: st.StopRequested,
		Retired:       st.Retired,
		Panicked:      st.Panicked,
		StackSizeHint: st.StackSizeHint,
		PriorityHint:  st.PriorityHint,
		Created:       st.Created,
	}
	if !st.Started.IsZero() {
		t := st.Started
		out.Started = &t
	}
	if !st.Stopped.IsZero() {
		t := st.Stopped
		out.Stopped = &t
	}
	return out
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

type tasksSnapshotResponse struct {
	OK    bool                 `json:"ok"`
	Error string               `json:"error,omitempty"`
	Tasks []TaskStatusSnapshot `json:"tasks,omitempty"`
}

// TasksSnapshotHandler returns a handler that outputs the live tasks of src.
//
// Behavior:
//   - GET/HEAD only; other methods return 405.
//   - By default, it renders text. You can change the default with options.
//   - The response format can be overridden per request by URL query (?format=json|text).
//   - Tasks rejected by the name guards are omitted.
func TasksSnapshotHandler(src TaskSource, opts ...TaskOption) http.Handler {
	if src == nil {
		panic("ops: nil TaskSource")
	}
	cfg := applyTaskOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, r, format, "GET, HEAD", tasksSnapshotResponse{Error: "method not allowed"})
			return
		}

		var items []TaskStatusSnapshot
		for _, st := range src.Tasks() {
			if !cfg.allowed(displayName(st.Name, st.ID)) {
				continue
			}
			items = append(items, toTaskStatusSnapshot(st))
		}
		writeResponse(w, r, format, http.StatusOK, tasksSnapshotResponse{OK: true, Tasks: items}, "", func() string {
			return renderTasksText(items)
		})
	})
}

func renderTasksText(items []TaskStatusSnapshot) string {
	// Stable and greppable: task\t<display name>\t<field>\t<value>\n
	var l textLines
	for _, it := range items {
		n := it.DisplayName
		l.add("task", n, "id", it.ID)
		l.add("task", n, "state", it.State)
		l.add("task", n, "stop_requested", strconv.FormatBool(it.StopRequested))
		if it.Retired {
			l.add("task", n, "retired", "true")
		}
		if it.Panicked {
			l.add("task", n, "panicked", "true")
		}
		if it.StackSizeHint != 0 {
			l.add("task", n, "stack_size_hint", strconv.Itoa(it.StackSizeHint))
		}
		if it.PriorityHint != 0 {
			l.add("task", n, "priority_hint", strconv.Itoa(it.PriorityHint))
		}
		if it.Started != nil {
			l.add("task", n, "started", it.Started.UTC().Format(time.RFC3339Nano))
		}
		if it.Stopped != nil {
			l.add("task", n, "stopped", it.Stopped.UTC().Format(time.RFC3339Nano))
		}
	}
	return l.String()
}

type taskStopResponse struct {
	OK    bool                `json:"ok"`
	Error string              `json:"error,omitempty"`
	Task  *TaskStatusSnapshot `json:"task,omitempty"`
}

// TaskStopHandler returns a handler that requests a cooperative stop of one task.
//
// Input:
//   - POST only
//   - URL query: ?name=<task name>, or the task ID for an unnamed task (as listed)
//
// The name guard applies both to the query and to the display name of the task it resolves to.
//
// Output:
//   - 200 with the task status after the request (stop requests are idempotent)
//   - 400 missing name, 403 name not allowed, 404 unknown task
//
// It never deletes the task: its owner still joins it.
func TaskStopHandler(src TaskSource, opts ...TaskOption) http.Handler {
	if src == nil {
		panic("ops: nil TaskSource")
	}
	cfg := applyTaskOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := formatFromRequest(r, cfg.format)
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, r, format, "POST", taskStopResponse{Error: "method not allowed"})
			return
		}

		name, _ := getQueryRequired(r, "name")
		name = strings.TrimSpace(name)
		fail := func(code int, msg string) {
			writeResponse(w, r, format, code, taskStopResponse{Error: msg}, msg, nil)
		}
		switch {
		case name == "":
			fail(http.StatusBadRequest, "missing name")
			return
		case !cfg.allowed(name):
			fail(http.StatusForbidden, "name not allowed")
			return
		}
		t, ok := src.Lookup(name)
		if !ok {
			fail(http.StatusNotFound, "task not found")
			return
		}
		if !cfg.allowed(displayName(t.Name(), t.ID().String())) {
			fail(http.StatusForbidden, "name not allowed")
			return
		}

		t.RequestStop()
		snap := toTaskStatusSnapshot(t.Status())
		writeResponse(w, r, format, http.StatusOK, taskStopResponse{OK: true, Task: &snap}, "", func() string {
			var l textLines
			l.add("task", snap.DisplayName, "stop_requested", "true")
			l.add("task", snap.DisplayName, "state", snap.State)
			return l.String()
		})
	})
}
