package task

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is the parent of lifecycle errors reported by Start.
	ErrInvalidTransition = errors.New("task: invalid state transition")
	// ErrAlreadyStarted is returned by Start when the task was already started.
	ErrAlreadyStarted = fmt.Errorf("%w: already started", ErrInvalidTransition)
	// ErrDeleted is returned by Start and Delete after a successful Delete, and by Start once
	// Delete has retired a never-started task.
	ErrDeleted = fmt.Errorf("%w: deleted", ErrInvalidTransition)

	// ErrJoinTimeout is returned by Delete when the backing goroutine did not exit in time.
	// The task keeps all of its resources; the caller may retry or abandon it.
	ErrJoinTimeout = errors.New("task: join timeout")

	// ErrResourceExhausted is returned by New when no task slot (or identity) is available.
	// A failed New holds no resources.
	ErrResourceExhausted = errors.New("task: resource exhausted")

	// ErrInvalidName is returned by New when a task name is invalid.
	//
	// Name rules:
	//   - name is optional (empty means unnamed)
	//   - non-empty name must match [A-Za-z0-9._-]
	//   - name is normalized by strings.TrimSpace before validation
	ErrInvalidName = errors.New("task: invalid name")

	// ErrDuplicateName is returned by registries (see zrtos.Runtime.NewTask) when a non-empty
	// name is already used by a live task.
	ErrDuplicateName = errors.New("task: duplicate name")
)
