package runner

import (
	"context"
	"fmt"
	"io/fs"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dshills/tama/internal/config/layer"
	"github.com/dshills/tama/internal/logger"
	"github.com/dshills/tama/internal/vfs"
)

// TaskLoader loads every task file in a directory into the runner.
type TaskLoader interface {
	LoadDir(dir string) error
}

// Runner is the host task runner.
type Runner struct {
	mu        sync.RWMutex
	tasks     map[string]*Task
	entries   Entries
	installed map[string]bool
	config    map[string]any
	source    string

	loader TaskLoader
	fs     *vfs.FS
	logger *log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger.Component(l, "runner")
	}
}

// WithFS sets the filesystem used by Expand and LoadTasks.
func WithFS(fsys *vfs.FS) Option {
	return func(r *Runner) {
		r.fs = fsys
	}
}

// WithTaskLoader sets the loader used by LoadTasks.
func WithTaskLoader(l TaskLoader) Option {
	return func(r *Runner) {
		r.loader = l
	}
}

// New creates a runner with its base entry points.
func New(opts ...Option) *Runner {
	r := &Runner{
		tasks:     make(map[string]*Task),
		installed: make(map[string]bool),
		config:    make(map[string]any),
		fs:        vfs.OS(),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.entries = r.BaseEntries()
	return r
}

// Logger returns the runner logger.
func (r *Runner) Logger() *log.Logger {
	return r.logger
}

// FS returns the runner filesystem.
func (r *Runner) FS() *vfs.FS {
	return r.fs
}

// SetTaskLoader sets the loader used by LoadTasks.
func (r *Runner) SetTaskLoader(l TaskLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loader = l
}

// BeginSource records path as the source of tasks registered until the
// returned function is called.
func (r *Runner) BeginSource(path string) (end func()) {
	r.mu.Lock()
	prev := r.source
	r.source = path
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		r.source = prev
		r.mu.Unlock()
	}
}

func (r *Runner) registerBasic(name, desc string, fn TaskFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: name and function are required", ErrInvalidTask)
	}

	r.mu.Lock()
	r.tasks[name] = &Task{
		Name:        name,
		Description: desc,
		Fn:          fn,
		Source:      r.source,
	}
	r.mu.Unlock()

	r.logger.Debug("registered task", "task", name)
	return nil
}

// registerMulti registers a dispatcher through the current basic entry point
// and marks the result as a multi task.
func (r *Runner) registerMulti(name, desc string, fn TaskFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: name and function are required", ErrInvalidTask)
	}
	if err := r.RegisterTask(name, desc, r.multi(fn)); err != nil {
		return err
	}

	r.mu.Lock()
	if t, ok := r.tasks[name]; ok {
		t.Multi = true
	}
	r.mu.Unlock()
	return nil
}

func (r *Runner) taskPlusArgs(name string) (Thing, error) {
	parts := SplitArgs(name)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(parts); i > 0; i-- {
		if t, ok := r.tasks[JoinArgs(parts[:i])]; ok {
			return Thing{Task: t, NameArgs: name, Args: parts[i:]}, nil
		}
	}
	return Thing{NameArgs: name, Args: parts}, nil
}

// RegisterAlias registers a basic task that runs tasks in order. Alias
// tasks bypass the entry points.
func (r *Runner) RegisterAlias(name, desc string, tasks ...string) error {
	if len(tasks) == 0 {
		return fmt.Errorf("%w: alias %q has no tasks", ErrInvalidTask, name)
	}
	list := append([]string(nil), tasks...)
	if desc == "" {
		desc = "Alias for " + strings.Join(quoteAll(list), ", ") + "."
	}

	err := r.registerBasic(name, desc, func(tc *Context) error {
		return tc.Run(list...)
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.tasks[name].Alias = list
	r.mu.Unlock()
	return nil
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}

// LoadTasks loads every task file in dir through the configured TaskLoader.
func (r *Runner) LoadTasks(dir string) error {
	r.mu.RLock()
	l := r.loader
	r.mu.RUnlock()

	if l == nil {
		return ErrNoTaskLoader
	}
	if !r.fs.IsDir(dir) {
		return fmt.Errorf("tasks directory %s: %w", dir, fs.ErrNotExist)
	}
	r.logger.Debug("loading tasks", "dir", dir)
	return l.LoadDir(dir)
}

// InitConfig replaces the task configuration with a copy of cfg.
func (r *Runner) InitConfig(cfg map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = layer.Clone(cfg)
	if r.config == nil {
		r.config = make(map[string]any)
	}
}

// Config returns the task configuration.
func (r *Runner) Config() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// ConfigGet returns the value at a dot separated path.
func (r *Runner) ConfigGet(path string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return layer.GetByPath(r.config, path)
}

// ConfigSet sets the value at a dot separated path.
func (r *Runner) ConfigSet(path string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	layer.SetByPath(r.config, path, value)
}

// Expand globs patterns under opts.Cwd.
func (r *Runner) Expand(opts vfs.ExpandOptions, patterns ...string) ([]string, error) {
	return r.fs.Expand(opts, patterns...)
}

// Targets returns the configured targets of a multi task in key order.
func (r *Runner) Targets(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.config[name].(map[string]any)
	if !ok {
		return nil
	}
	var targets []string
	for key := range cfg {
		if strings.HasPrefix(key, "_") || key == "options" {
			continue
		}
		targets = append(targets, key)
	}
	sort.Strings(targets)
	return targets
}

func (r *Runner) multi(fn TaskFunc) TaskFunc {
	return func(tc *Context) error {
		if len(tc.Args) > 0 {
			return r.runTarget(tc, fn, tc.Args[0], tc.Args[1:])
		}

		targets := r.Targets(tc.Name)
		if len(targets) == 0 {
			return fmt.Errorf("%w for %q", ErrNoTargets, tc.Name)
		}
		for _, target := range targets {
			if err := r.runTarget(tc, fn, target, nil); err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *Runner) runTarget(tc *Context, fn TaskFunc, target string, args []string) error {
	r.mu.RLock()
	taskCfg, _ := r.config[tc.Name].(map[string]any)
	data, ok := taskCfg[target]
	r.mu.RUnlock()

	if !ok || strings.HasPrefix(target, "_") || target == "options" {
		return fmt.Errorf("%w: %s:%s", ErrTargetNotFound, tc.Name, target)
	}

	options := map[string]any{}
	if opts, ok := taskCfg["options"].(map[string]any); ok {
		layer.DeepMerge(options, opts)
	}
	if m, ok := data.(map[string]any); ok {
		if opts, ok := m["options"].(map[string]any); ok {
			layer.DeepMerge(options, opts)
		}
	}

	child := *tc
	child.Target = target
	child.Args = args
	child.NameArgs = JoinArgs(append([]string{tc.Name, target}, args...))
	child.Data = layer.Clone(map[string]any{"data": data})["data"]
	child.Options = options

	r.logger.Debug("running target", "task", tc.Name, "target", target)
	return fn(&child)
}

// Run runs the named tasks in order through the current lookup entry point.
// It stops at the first failure.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	runID := uuid.NewString()
	l := r.logger.With("run", runID)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		thing, err := r.TaskPlusArgs(name)
		if err != nil {
			return err
		}
		if thing.Task == nil {
			return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
		}

		l.Info("running task", "task", name)
		start := time.Now()

		tc := &Context{
			Context:  ctx,
			Name:     thing.Task.Name,
			NameArgs: thing.NameArgs,
			Args:     thing.Args,
			Runner:   r,
		}
		if err := call(thing.Task.Fn, tc); err != nil {
			l.Error("task failed", "task", name, "err", err)
			return &TaskError{Task: name, Err: err}
		}
		l.Debug("task done", "task", name, "elapsed", time.Since(start))
	}
	return nil
}

func call(fn TaskFunc, tc *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return fn(tc)
}
