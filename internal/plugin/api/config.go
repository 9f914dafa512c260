package api

import (
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/tama/internal/plugin/lua"
	"github.com/dshills/tama/internal/vfs"
)

// config([path]) -> value
// Without a path the whole task configuration is returned.
func (m *Module) config(L *lua.LState) int {
	path := L.OptString(1, "")
	if path == "" {
		L.Push(plua.ToLua(L, m.runner.Config()))
		return 1
	}
	v, ok := m.runner.ConfigGet(path)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(plua.ToLua(L, v))
	return 1
}

// setConfig(path, value)
func (m *Module) setConfig(L *lua.LState) int {
	path := L.CheckString(1)
	m.runner.ConfigSet(path, plua.ToGo(L.Get(2)))
	return 0
}

// expand(cwd, pattern...) -> {paths}
func (m *Module) expand(L *lua.LState) int {
	cwd := m.resolve(L.CheckString(1))
	patterns := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		patterns = append(patterns, L.CheckString(i))
	}

	matches, err := m.runner.Expand(vfs.ExpandOptions{Cwd: cwd}, patterns...)
	if err != nil {
		L.RaiseError("expand: %v", err)
		return 0
	}
	t := L.CreateTable(len(matches), 0)
	for i, match := range matches {
		t.RawSetInt(i+1, lua.LString(match))
	}
	L.Push(t)
	return 1
}
