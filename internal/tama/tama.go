package tama

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/aggregate"
	"github.com/dshills/tama/internal/config"
	"github.com/dshills/tama/internal/event"
	"github.com/dshills/tama/internal/hook"
	"github.com/dshills/tama/internal/logger"
	"github.com/dshills/tama/internal/plugin"
	"github.com/dshills/tama/internal/resolve"
	"github.com/dshills/tama/internal/runner"
	"github.com/dshills/tama/internal/vfs"
)

var (
	// ErrNilConfig is returned by New without a config.
	ErrNilConfig = errors.New("tama: nil config")

	// ErrEmptyListener is returned for a listener with neither a path nor a
	// function.
	ErrEmptyListener = errors.New("tama: empty listener")
)

// Tama is an initialised task runner with lazy plugin loading.
type Tama struct {
	cfg      *config.Config
	fs       *vfs.FS
	runner   *runner.Runner
	hub      *event.Hub
	resolver *resolve.Resolver
	locator  *plugin.Locator
	loader   *plugin.Loader
	agg      *aggregate.Aggregator
	multi    hook.MultiSet
	logger   *log.Logger

	closeOnce sync.Once
}

// Option configures New.
type Option func(*options)

type options struct {
	fs          *vfs.FS
	logger      *log.Logger
	runner      *runner.Runner
	hub         *event.Hub
	listeners   []Listener
	modulePaths []string
}

// WithFS sets the filesystem plugins and config fragments are read from.
func WithFS(fsys *vfs.FS) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRunner uses r instead of a new runner.
func WithRunner(r *runner.Runner) Option {
	return func(o *options) {
		o.runner = r
	}
}

// WithHub uses h instead of a new event hub.
func WithHub(h *event.Hub) Option {
	return func(o *options) {
		o.hub = h
	}
}

// WithListeners adds startup listeners. They run after the listeners named
// in the config.
func WithListeners(ls ...Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, ls...)
	}
}

// WithModulePaths replaces the default module search paths. The config's
// extra plugin paths are still searched after them.
func WithModulePaths(paths ...string) Option {
	return func(o *options) {
		o.modulePaths = append([]string{}, paths...)
	}
}

// New validates cfg and initialises an independent instance.
func New(cfg *config.Config, opts ...Option) (*Tama, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = vfs.OS()
	}
	if err := cfg.Validate(o.fs); err != nil {
		return nil, err
	}

	t := &Tama{
		cfg:      cfg,
		fs:       o.fs,
		hub:      o.hub,
		runner:   o.runner,
		resolver: resolve.New(cfg.TaskMaps),
		multi:    multiSet(cfg.BasicAsMultiTask),
		logger:   logger.Component(o.logger, "tama"),
	}
	if t.hub == nil {
		t.hub = event.NewHub(event.WithLogger(o.logger))
	}
	if t.runner == nil {
		t.runner = runner.New(runner.WithFS(o.fs), runner.WithLogger(o.logger))
	}

	modules := plugin.DefaultModulePaths(cfg.ExtraPluginPaths...)
	if o.modulePaths != nil {
		modules = append(o.modulePaths, cfg.ExtraPluginPaths...)
	}
	t.locator = plugin.NewLocator(
		plugin.SearchPaths{Custom: cfg.CustomTaskPaths, Modules: modules},
		plugin.WithLocatorFS(o.fs),
		plugin.WithLocatorHub(t.hub),
		plugin.WithLocatorLogger(o.logger),
	)
	t.loader = plugin.NewLoader(t.runner, t.locator,
		plugin.WithFS(o.fs),
		plugin.WithHub(t.hub),
		plugin.WithLogger(o.logger),
		plugin.WithLuaTimeout(cfg.LuaTimeout),
	)

	t.agg = aggregate.New(
		aggregate.WithFS(o.fs),
		aggregate.WithEvaluator(t.loader),
		aggregate.WithLogger(o.logger),
	)

	listeners := make([]Listener, 0, len(cfg.EventListeners)+len(o.listeners))
	for _, p := range cfg.EventListeners {
		listeners = append(listeners, LuaListener(p))
	}
	listeners = append(listeners, o.listeners...)

	if err := t.init(listeners, o.logger); err != nil {
		_ = t.loader.Close()
		return nil, err
	}
	return t, nil
}

func (t *Tama) init(listeners []Listener, l *log.Logger) error {
	if err := t.runListeners(listeners); err != nil {
		return err
	}
	if err := t.publish(event.BeforeHooks, t.cfg); err != nil {
		return err
	}

	hook.InstallRegistration(t.runner, t.hub, t.multi, hook.WithLogger(l))
	hook.InstallLookup(t.runner, t.resolver, t.loader, hook.WithLogger(l))

	if err := t.publish(event.BeforeInitConfig, t.cfg); err != nil {
		return err
	}

	if err := t.loadConfig(); err != nil {
		return err
	}
	return t.publish(event.AfterInitialized, t.cfg)
}

func (t *Tama) loadConfig() error {
	values, err := t.agg.Aggregate(t.cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading task config from %s: %w", t.cfg.ConfigPath, err)
	}
	t.runner.InitConfig(values)
	t.logger.Debug("task config loaded", "dir", t.cfg.ConfigPath, "keys", len(values))
	return nil
}

// Refresh reloads the task config and registers again the tasks of every
// changed file that tasks were loaded from. Values set by tasks are lost.
func (t *Tama) Refresh(changed []string) error {
	if err := t.loadConfig(); err != nil {
		return err
	}

	sources := make(map[string]bool)
	for _, task := range t.runner.Tasks() {
		if task.Source != "" {
			sources[task.Source] = true
		}
	}
	for _, path := range changed {
		if !sources[path] || !t.fs.Exists(path) {
			continue
		}
		h := plugin.Handle{
			Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Kind: plugin.CustomTask,
			Path: path,
		}
		if err := t.loader.Load(h, t.runner); err != nil {
			return err
		}
		delete(sources, path)
	}
	return nil
}

func (t *Tama) publish(kind event.Kind, payload any) error {
	t.logger.Debug("publishing event", "event", kind)
	return t.hub.Publish(kind, payload)
}

func multiSet(s config.MultiTaskSetting) hook.MultiSet {
	if s.All {
		return hook.AllTasks()
	}
	return hook.Names(s.Names...)
}

// Run runs the named tasks on the runner.
func (t *Tama) Run(ctx context.Context, names ...string) error {
	return t.runner.Run(ctx, names...)
}

// Resolve resolves name against the task map without loading anything.
func (t *Tama) Resolve(name string) (resolve.TaskSpec, bool) {
	return t.resolver.Resolve(name)
}

// Config returns the orchestrator config.
func (t *Tama) Config() *config.Config { return t.cfg }

// Runner returns the host runner.
func (t *Tama) Runner() *runner.Runner { return t.runner }

// Hub returns the event hub.
func (t *Tama) Hub() *event.Hub { return t.hub }

// Resolver returns the task map resolver.
func (t *Tama) Resolver() *resolve.Resolver { return t.resolver }

// Locator returns the plugin locator.
func (t *Tama) Locator() *plugin.Locator { return t.locator }

// Loader returns the plugin loader.
func (t *Tama) Loader() *plugin.Loader { return t.loader }

// MultiSet returns the basic task names registered as multi tasks.
func (t *Tama) MultiSet() hook.MultiSet { return t.multi }

// Close releases the Lua states held by loaded plugins.
func (t *Tama) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.loader.Close()
	})
	return err
}
