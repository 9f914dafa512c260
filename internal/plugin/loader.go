package plugin

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/event"
	"github.com/dshills/tama/internal/logger"
	plua "github.com/dshills/tama/internal/plugin/lua"
	"github.com/dshills/tama/internal/runner"
	"github.com/dshills/tama/internal/vfs"
)

// Loader loads located plugins into a runner.
type Loader struct {
	mu        sync.Mutex
	runner    *runner.Runner
	locator   *Locator
	fs        *vfs.FS
	hub       *event.Hub
	logger    *log.Logger
	timeout   time.Duration
	factories map[string]Factory
	states    []*plua.State
	closed    bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the filesystem modules are read from.
func WithFS(fsys *vfs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithHub exposes hub to Lua modules through tama.on.
func WithHub(h *event.Hub) LoaderOption {
	return func(l *Loader) {
		l.hub = h
	}
}

// WithLogger sets the loader logger.
func WithLogger(lg *log.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger.Component(lg, "plugin")
	}
}

// WithLuaTimeout bounds running a module file, a config fragment or a listener
// handler. Zero, the default, means no bound. Task bodies always run under
// the run context instead.
func WithLuaTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// NewLoader creates a loader for r using locator. It installs itself as the
// runner's task directory loader.
func NewLoader(r *runner.Runner, locator *Locator, opts ...LoaderOption) *Loader {
	l := &Loader{
		runner:    r,
		locator:   locator,
		fs:        vfs.OS(),
		logger:    logger.Discard(),
		factories: make(map[string]Factory),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.factories[".lua"] = l.luaFactory
	if r != nil {
		r.SetTaskLoader(l)
	}
	return l
}

// RegisterFactory handles files with extension ext using f. It replaces any
// existing factory for ext.
func (l *Loader) RegisterFactory(ext string, f Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[strings.ToLower(ext)] = f
}

func (l *Loader) factory(path string) (Factory, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ok := l.factories[filepathExt(path)]
	return f, ok
}

func filepathExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// LoadModule turns the file at path into a Capability.
func (l *Loader) LoadModule(path string) (Capability, error) {
	f, ok := l.factory(path)
	if !ok {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupportedModule, filepath.Ext(path))}
	}
	c, err := f(path)
	if err != nil {
		return nil, wrapLoad(path, err)
	}
	return c, nil
}

// Load loads a located plugin into r. Custom task files are loaded as a
// module; module directories go through r.LoadTasks.
func (l *Loader) Load(h Handle, r *runner.Runner) error {
	if r == nil {
		return errNoRunner
	}
	l.logger.Info("loading plugin", "plugin", h.Name, "kind", h.Kind, "path", h.Path)

	if h.Kind == ModuleTasks {
		return wrapLoad(h.Path, r.LoadTasks(h.Path))
	}
	return l.loadFile(h.Path, r)
}

func (l *Loader) loadFile(path string, r *runner.Runner) error {
	c, err := l.LoadModule(path)
	if err != nil {
		return err
	}
	end := r.BeginSource(path)
	defer end()
	return wrapLoad(path, c.RegisterInto(r))
}

// LoadPlugin locates name and loads it into the loader's runner. It returns
// false with no error when nothing was located.
func (l *Loader) LoadPlugin(name string) (bool, error) {
	if l.locator == nil || l.runner == nil {
		return false, errNoRunner
	}
	h, ok, err := l.locator.Locate(name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := l.Load(h, l.runner); err != nil {
		return true, err
	}
	return true, nil
}

// LoadDir loads every file directly inside dir that a factory handles, in
// lexical order.
func (l *Loader) LoadDir(dir string) error {
	if l.runner == nil {
		return errNoRunner
	}
	matches, err := l.fs.Expand(vfs.ExpandOptions{Cwd: dir, Filter: vfs.FilesOnly}, "*")
	if err != nil {
		return err
	}
	sort.Strings(matches)

	for _, name := range matches {
		if _, ok := l.factory(name); !ok {
			continue
		}
		if err := l.loadFile(absJoin(dir, name), l.runner); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every Lua state kept alive for registered tasks. Tasks
// from Lua modules fail after Close.
func (l *Loader) Close() error {
	l.mu.Lock()
	states := l.states
	l.states = nil
	l.closed = true
	l.mu.Unlock()

	for _, s := range states {
		_ = s.Close()
	}
	return nil
}
