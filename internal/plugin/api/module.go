package api

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tama/internal/event"
	"github.com/dshills/tama/internal/logger"
	plua "github.com/dshills/tama/internal/plugin/lua"
	"github.com/dshills/tama/internal/runner"
)

// ModuleName is the name Lua code requires.
const ModuleName = "tama"

// Module implements the tama Lua module for one Lua state.
type Module struct {
	state  *plua.State
	runner *runner.Runner
	hub    *event.Hub
	source string
	logger *log.Logger

	table *lua.LTable
}

// Option configures a Module.
type Option func(*Module)

// WithHub enables tama.on.
func WithHub(h *event.Hub) Option {
	return func(m *Module) {
		m.hub = h
	}
}

// WithSource sets the file the state was loaded from. Relative paths given to
// loadTasks and expand are resolved against its directory.
func WithSource(path string) Option {
	return func(m *Module) {
		m.source = path
	}
}

// WithLogger sets the logger behind tama.log.
func WithLogger(l *log.Logger) Option {
	return func(m *Module) {
		m.logger = l
	}
}

// New creates the module for state and runner.
func New(state *plua.State, r *runner.Runner, opts ...Option) *Module {
	m := &Module{
		state:  state,
		runner: r,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.source != "" {
		m.logger = m.logger.With("source", filepath.Base(m.source))
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return ModuleName
}

// Register builds the module table and makes it available to require.
func (m *Module) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "registerTask", L.NewFunction(m.registerTask))
	L.SetField(mod, "registerMultiTask", L.NewFunction(m.registerMultiTask))
	L.SetField(mod, "loadTasks", L.NewFunction(m.loadTasks))
	L.SetField(mod, "config", L.NewFunction(m.config))
	L.SetField(mod, "setConfig", L.NewFunction(m.setConfig))
	L.SetField(mod, "expand", L.NewFunction(m.expand))
	L.SetField(mod, "on", L.NewFunction(m.on))
	L.SetField(mod, "log", m.logTable(L))

	m.table = mod
	m.state.Preload(ModuleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	return nil
}

// Table returns the module table. Register must have been called.
func (m *Module) Table() *lua.LTable {
	return m.table
}

func (m *Module) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.source == "" {
		return path
	}
	return filepath.Join(filepath.Dir(m.source), path)
}
