package api

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

func (m *Module) logTable(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "debug", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug(message(L))
		return 0
	}))
	L.SetField(t, "info", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info(message(L))
		return 0
	}))
	L.SetField(t, "warn", L.NewFunction(func(L *lua.LState) int {
		m.logger.Warn(message(L))
		return 0
	}))
	L.SetField(t, "error", L.NewFunction(func(L *lua.LState) int {
		m.logger.Error(message(L))
		return 0
	}))
	L.SetField(t, "writeln", L.NewFunction(func(L *lua.LState) int {
		m.logger.Print(message(L))
		return 0
	}))
	return t
}

// message joins all arguments with spaces, like print.
func message(L *lua.LState) string {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, " ")
}
