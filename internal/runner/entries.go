package runner

// RegisterFunc registers a task.
type RegisterFunc func(name, desc string, fn TaskFunc) error

// LookupFunc turns a requested name into a task and its arguments.
type LookupFunc func(name string) (Thing, error)

// Entries are the swappable runner entry points.
type Entries struct {
	RegisterTask      RegisterFunc
	RegisterMultiTask RegisterFunc
	TaskPlusArgs      LookupFunc
}

// Entries returns the current entry points.
func (r *Runner) Entries() Entries {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries
}

// SetEntries replaces the entry points. Nil slots are left unchanged.
func (r *Runner) SetEntries(e Entries) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.RegisterTask != nil {
		r.entries.RegisterTask = e.RegisterTask
	}
	if e.RegisterMultiTask != nil {
		r.entries.RegisterMultiTask = e.RegisterMultiTask
	}
	if e.TaskPlusArgs != nil {
		r.entries.TaskPlusArgs = e.TaskPlusArgs
	}
}

// Install wraps the current entry points with wrap once per name. It returns
// false and leaves the entry points unchanged if name is already installed.
func (r *Runner) Install(name string, wrap func(current Entries) Entries) bool {
	r.mu.Lock()
	if r.installed[name] {
		r.mu.Unlock()
		return false
	}
	r.installed[name] = true
	current := r.entries
	r.mu.Unlock()

	r.SetEntries(wrap(current))
	r.logger.Debug("entry points installed", "extension", name)
	return true
}

// Installed reports whether an extension was installed under name.
func (r *Runner) Installed(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.installed[name]
}

// BaseEntries returns the runner's own primitives, ignoring any installed
// extension.
func (r *Runner) BaseEntries() Entries {
	return Entries{
		RegisterTask:      r.registerBasic,
		RegisterMultiTask: r.registerMulti,
		TaskPlusArgs:      r.taskPlusArgs,
	}
}

// RegisterTask registers a basic task through the current entry point.
func (r *Runner) RegisterTask(name, desc string, fn TaskFunc) error {
	return r.Entries().RegisterTask(name, desc, fn)
}

// RegisterMultiTask registers a multi task through the current entry point.
func (r *Runner) RegisterMultiTask(name, desc string, fn TaskFunc) error {
	return r.Entries().RegisterMultiTask(name, desc, fn)
}

// TaskPlusArgs looks up name through the current entry point.
func (r *Runner) TaskPlusArgs(name string) (Thing, error) {
	return r.Entries().TaskPlusArgs(name)
}
