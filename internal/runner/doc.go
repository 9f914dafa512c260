// Package runner is the host task runner tama extends.
//
// A Runner owns a registry of basic and multi tasks, the task configuration
// tree and three swappable entry points: RegisterTask, RegisterMultiTask and
// TaskPlusArgs. Callers always go through the entry points, so extensions
// installed with Install observe every registration and every lookup.
//
// # Task names
//
// Requested names are split on ':' into parts; "\:" keeps a literal colon.
// The longest prefix of parts naming a registered task wins and the remaining
// parts become the task arguments:
//
//	lint:src:fast   ->  task "lint", args ["src", "fast"] (if "lint:src" is not a task)
//
// # Multi tasks
//
// A multi task runs once per target. With a target argument only that target
// runs; without one every target in the task's config runs in key order.
// Keys starting with '_' and the "options" key are not targets.
package runner
