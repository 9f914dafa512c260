package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tama/internal/plugin/api"
	plua "github.com/dshills/tama/internal/plugin/lua"
	"github.com/dshills/tama/internal/runner"
)

// luaModule is a Lua task file.
type luaModule struct {
	loader *Loader
	path   string
}

func (l *Loader) luaFactory(path string) (Capability, error) {
	return &luaModule{loader: l, path: path}, nil
}

// RegisterInto runs the file in a fresh state. If the chunk returns a
// function it is called with the tama module. The state stays open until the
// loader is closed because registered tasks call back into it.
func (m *luaModule) RegisterInto(r *runner.Runner) error {
	_, err := m.loader.runLua(m.path, r, true)
	return err
}

// runLua executes path and returns the chunk result, calling it first when it
// is a function. The state is kept when keep is set and the run succeeded.
func (l *Loader) runLua(path string, r *runner.Runner, keep bool) (lua.LValue, error) {
	state, err := l.newState()
	if err != nil {
		return nil, err
	}

	mod := api.New(state, r,
		api.WithHub(l.hub),
		api.WithSource(path),
		api.WithLogger(l.logger),
	)
	if err := mod.Register(state.L); err != nil {
		state.Close()
		return nil, err
	}

	res, err := state.ExecFile(path)
	var value lua.LValue = lua.LNil
	if err == nil && len(res) > 0 {
		value = res[0]
	}
	if err == nil && value.Type() == lua.LTFunction {
		res, err = state.Call(value, mod.Table())
		value = lua.LNil
		if err == nil && len(res) > 0 {
			value = res[0]
		}
	}

	if err != nil || !keep {
		state.Close()
	}
	if err != nil {
		return nil, err
	}
	if keep {
		l.track(state)
	}
	return value, nil
}

// Evaluate runs a Lua config fragment and returns its value as Go data. A
// fragment returning a function is called with the tama module and its
// result is used. The state is closed afterwards.
func (l *Loader) Evaluate(path string) (any, error) {
	if filepathExt(path) != ".lua" {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: not a Lua file", ErrUnsupportedModule)}
	}
	if l.runner == nil {
		return nil, errNoRunner
	}
	value, err := l.runLua(path, l.runner, false)
	if err != nil {
		return nil, wrapLoad(path, err)
	}
	return plua.ToGo(value), nil
}

func (l *Loader) newState() (*plua.State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrLoaderClosed
	}
	return plua.NewState(plua.WithFS(l.fs), plua.WithExecutionTimeout(l.timeout)), nil
}

func (l *Loader) track(s *plua.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

// Exec runs a Lua script for its side effects, such as subscribing event
// handlers with tama.on. The state stays open until the loader is closed.
func (l *Loader) Exec(path string) error {
	if filepathExt(path) != ".lua" {
		return &LoadError{Path: path, Err: fmt.Errorf("%w: not a Lua file", ErrUnsupportedModule)}
	}
	if l.runner == nil {
		return errNoRunner
	}
	_, err := l.runLua(path, l.runner, true)
	return wrapLoad(path, err)
}
