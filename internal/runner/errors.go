package runner

import (
	"errors"
	"fmt"
)

// Sentinel errors for the runner.
var (
	// ErrTaskNotFound is returned when a requested task is not registered.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTask is returned for registrations without a name or function.
	ErrInvalidTask = errors.New("invalid task")

	// ErrNoTargets is returned when a multi task has no configured targets.
	ErrNoTargets = errors.New("no targets found")

	// ErrTargetNotFound is returned when a multi task target is not configured.
	ErrTargetNotFound = errors.New("target not found")

	// ErrNoTaskLoader is returned by LoadTasks when no loader is configured.
	ErrNoTaskLoader = errors.New("no task loader configured")

	// ErrTaskFailed is matched by every *TaskError.
	ErrTaskFailed = errors.New("task failed")
)

// TaskError reports a failed task run.
type TaskError struct {
	// Task is the requested name, including arguments.
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match TaskError with ErrTaskFailed.
func (e *TaskError) Is(target error) bool {
	return target == ErrTaskFailed
}
