package api

import (
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/tama/internal/plugin/lua"
	"github.com/dshills/tama/internal/runner"
)

// registerTask(name, [desc], fn | {tasks})
func (m *Module) registerTask(L *lua.LState) int {
	name, desc, body := taskArgs(L)

	switch v := body.(type) {
	case *lua.LFunction:
		if err := m.runner.RegisterTask(name, desc, m.taskFunc(v)); err != nil {
			L.RaiseError("registerTask %s: %v", name, err)
		}
	case *lua.LTable:
		tasks, err := plua.StringList(v)
		if err != nil {
			L.ArgError(L.GetTop(), err.Error())
			return 0
		}
		if err := m.runner.RegisterAlias(name, desc, tasks...); err != nil {
			L.RaiseError("registerTask %s: %v", name, err)
		}
	default:
		L.ArgError(L.GetTop(), "function or list of task names expected")
	}
	return 0
}

// registerMultiTask(name, [desc], fn)
func (m *Module) registerMultiTask(L *lua.LState) int {
	name, desc, body := taskArgs(L)

	fn, ok := body.(*lua.LFunction)
	if !ok {
		L.ArgError(L.GetTop(), "function expected")
		return 0
	}
	if err := m.runner.RegisterMultiTask(name, desc, m.taskFunc(fn)); err != nil {
		L.RaiseError("registerMultiTask %s: %v", name, err)
	}
	return 0
}

func taskArgs(L *lua.LState) (name, desc string, body lua.LValue) {
	name = L.CheckString(1)
	if L.GetTop() >= 3 {
		desc = L.OptString(2, "")
		return name, desc, L.Get(3)
	}
	return name, "", L.Get(2)
}

// loadTasks(dir)
func (m *Module) loadTasks(L *lua.LState) int {
	dir := m.resolve(L.CheckString(1))
	if err := m.runner.LoadTasks(dir); err != nil {
		L.RaiseError("loadTasks %s: %v", dir, err)
	}
	return 0
}

// taskFunc adapts a Lua function to a runner task. The body runs under the
// run context with no execution timeout.
func (m *Module) taskFunc(fn *lua.LFunction) runner.TaskFunc {
	return func(tc *runner.Context) error {
		L := m.state.L

		t := L.NewTable()
		t.RawSetString("name", lua.LString(tc.Name))
		t.RawSetString("nameArgs", lua.LString(tc.NameArgs))
		t.RawSetString("target", lua.LString(tc.Target))
		args := L.CreateTable(len(tc.Args), 0)
		for i, a := range tc.Args {
			args.RawSetInt(i+1, lua.LString(a))
		}
		t.RawSetString("args", args)
		t.RawSetString("data", plua.ToLua(L, tc.Data))
		t.RawSetString("options", plua.ToLua(L, tc.Options))

		res, err := m.state.CallContext(tc.Context, fn, t)
		if err != nil {
			return err
		}
		if len(res) > 0 && res[0] == lua.LFalse {
			return ErrTaskReturnedFalse
		}
		return nil
	}
}
