package runner

import (
	"context"
	"sort"
)

// TaskFunc is the body of a task.
type TaskFunc func(tc *Context) error

// Task is a registered task.
type Task struct {
	Name        string
	Description string
	Multi       bool
	Fn          TaskFunc

	// Alias lists the tasks an alias task runs.
	Alias []string

	// Source is the file the task was registered from, if known.
	Source string
}

// Thing is the result of a task lookup. Task is nil when nothing matched.
type Thing struct {
	Task     *Task
	NameArgs string
	Args     []string
}

// Context is passed to a running task.
type Context struct {
	context.Context

	// Name is the registered task name.
	Name string

	// NameArgs is the name as requested, including arguments.
	NameArgs string

	// Args are the colon separated arguments after the task name.
	Args []string

	// Target is the multi task target, empty for basic tasks.
	Target string

	// Data is the target config for multi tasks.
	Data any

	// Options is the merged task and target options for multi tasks.
	Options map[string]any

	// Runner runs the task.
	Runner *Runner
}

// Run runs other tasks from inside a task.
func (tc *Context) Run(names ...string) error {
	return tc.Runner.Run(tc.Context, names...)
}

// Tasks returns the registered tasks sorted by name.
func (r *Runner) Tasks() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks
}

// Task returns the task registered under name.
func (r *Runner) Task(name string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Exists reports whether a task is registered under name.
func (r *Runner) Exists(name string) bool {
	_, ok := r.Task(name)
	return ok
}
