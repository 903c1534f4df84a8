// Package ops provides net/http handlers for operating a zrtos runtime.
//
// Handlers can be mounted individually, or all at once with NewRouter, which returns a chi
// router with request IDs, panic recovery and access logging. ops does not start servers and
// makes no authn/authz decisions: protect it with your own middleware.
//
// # Formats
//
// Handlers render text by default. The default can be configured by options, and can be
// overridden per request by URL query:
//   - ?format=text
//   - ?format=json
//
// Text output is line-based and tab-separated (stable and greppable). JSON output is
// structured and suitable for tooling.
//
// # What ops provides
//
//   - health: HealthzHandler (liveness), ReadyzHandler (readiness checks), ClockRunningCheck
//   - clock: ClockHandler
//   - tasks: TasksSnapshotHandler, TaskStopHandler (cooperative stop request)
//   - logging: LogLevelGetHandler, LogLevelSetHandler (logrus)
//
// TaskStopHandler only requests a stop. Deleting (joining) a task stays with the code that
// created it. Restrict which tasks it may touch with WithTaskAllowNames or
// WithTaskAllowPrefixes.
package ops
