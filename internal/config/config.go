package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/tama/internal/config/layer"
	"github.com/dshills/tama/internal/config/loader"
	"github.com/dshills/tama/internal/vfs"
)

// DefaultFiles are tried in order when no config file is given.
var DefaultFiles = []string{"tama.toml", "tama.yaml", "tama.yml", "tama.json"}

// Config is the orchestrator configuration.
type Config struct {
	// ConfigPath is the directory holding task config fragments.
	ConfigPath string `mapstructure:"configPath" validate:"required,fsdir"`

	// ExtraPluginPaths are searched for module task directories after the
	// local and global tama_modules directories.
	ExtraPluginPaths []string `mapstructure:"extraPluginPaths" validate:"dive,required"`

	// CustomTaskPaths are searched for single task files before any module path.
	CustomTaskPaths []string `mapstructure:"customTaskPaths" validate:"dive,required"`

	// TaskMaps aliases public task names to plugin[:task[:args]] targets.
	TaskMaps map[string]string `mapstructure:"taskMaps" validate:"dive,keys,required,endkeys,required"`

	// BasicAsMultiTask redirects basic registrations to multi registrations.
	BasicAsMultiTask MultiTaskSetting `mapstructure:"basicAsMultiTask"`

	// EventListeners are Lua files subscribed to lifecycle events at startup.
	EventListeners []string `mapstructure:"eventListeners" validate:"dive,required"`

	LogLevel string `mapstructure:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`

	// LuaTimeout bounds loading a Lua module, evaluating a Lua fragment and
	// running a Lua listener. Zero means no bound. Task bodies are never
	// bounded; they stop only when the run is cancelled.
	LuaTimeout time.Duration `mapstructure:"luaTimeout" validate:"gte=0"`

	// File is the config file the values were read from, if any.
	File string `mapstructure:"-"`
}

// MultiTaskSetting is either "all basic tasks" or a list of task names.
type MultiTaskSetting struct {
	All   bool
	Names []string `validate:"dive,required"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        *vfs.FS
	file      string
	baseDir   string
	env       bool
	overrides map[string]any
}

// WithFS sets the filesystem config files and directories are read from.
func WithFS(fsys *vfs.FS) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithFile sets the config file. A missing explicit file is an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithBaseDir sets the directory default files are searched in and relative
// paths are resolved against when no config file is used.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithEnv enables or disables TAMA_ environment variable overrides.
func WithEnv(enable bool) Option {
	return func(o *options) {
		o.env = enable
	}
}

// WithOverrides layers values over file and environment values.
func WithOverrides(values map[string]any) Option {
	return func(o *options) {
		o.overrides = values
	}
}

// Load reads, decodes and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	o := options{env: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = vfs.OS()
	}
	if o.baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		o.baseDir = wd
	}

	file, err := findFile(o)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if file != "" {
		values, err := loader.New(o.fs).LoadMap(file)
		if err != nil {
			return nil, err
		}
		layer.DeepMerge(data, values)
	}

	if o.env {
		values, err := loader.NewEnvLoader(loader.EnvPrefix).Load()
		if err != nil {
			return nil, err
		}
		layer.DeepMerge(data, values)
	}

	if o.overrides != nil {
		layer.DeepMerge(data, o.overrides)
	}

	cfg, err := FromMap(data)
	if err != nil {
		return nil, err
	}
	cfg.File = file

	base := o.baseDir
	if file != "" {
		base = filepath.Dir(file)
	}
	cfg.Resolve(base)

	if err := cfg.Validate(o.fs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile(o options) (string, error) {
	if o.file != "" {
		path := o.file
		if !filepath.IsAbs(path) {
			path = filepath.Join(o.baseDir, path)
		}
		if !o.fs.Exists(path) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return path, nil
	}
	for _, name := range DefaultFiles {
		path := filepath.Join(o.baseDir, name)
		if o.fs.Exists(path) {
			return path, nil
		}
	}
	return "", nil
}

// FromMap decodes raw values into a Config with defaults applied. The result
// is not validated.
func FromMap(data map[string]any) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			multiTaskSettingHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, &ValidationError{Field: "config", Message: err.Error(), Err: ErrValidationFailed}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}
	return &cfg, nil
}

// Resolve makes relative paths absolute against base.
func (c *Config) Resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.ConfigPath = abs(c.ConfigPath)
	for i, p := range c.ExtraPluginPaths {
		c.ExtraPluginPaths[i] = abs(p)
	}
	for i, p := range c.CustomTaskPaths {
		c.CustomTaskPaths[i] = abs(p)
	}
	for i, p := range c.EventListeners {
		c.EventListeners[i] = abs(p)
	}
}

// Map returns the config under its file keys, the inverse of FromMap.
// basicAsMultiTask is true or a list of names and luaTimeout a duration
// string.
func (c *Config) Map() map[string]any {
	list := func(items []string) []any {
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out
	}
	maps := make(map[string]any, len(c.TaskMaps))
	for k, v := range c.TaskMaps {
		maps[k] = v
	}
	var multi any = list(c.BasicAsMultiTask.Names)
	if c.BasicAsMultiTask.All {
		multi = true
	}
	return map[string]any{
		"configPath":       c.ConfigPath,
		"extraPluginPaths": list(c.ExtraPluginPaths),
		"customTaskPaths":  list(c.CustomTaskPaths),
		"taskMaps":         maps,
		"basicAsMultiTask": multi,
		"eventListeners":   list(c.EventListeners),
		"logLevel":         c.LogLevel,
		"luaTimeout":       c.LuaTimeout.String(),
	}
}
