package api

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tama/internal/config"
	"github.com/dshills/tama/internal/event"
	plua "github.com/dshills/tama/internal/plugin/lua"
	"github.com/dshills/tama/internal/runner"
)

// on(event, fn)
// The handler receives the event payload: the config table for startup
// events, a path for load events and a {name, description, fn} table for
// registration events. Returning false or raising fails the publish.
func (m *Module) on(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	if m.hub == nil {
		L.RaiseError("on %s: %v", name, ErrNoEventHub)
		return 0
	}
	kind, err := event.ParseKind(name)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}

	_, err = m.hub.SubscribeFunc(kind, func(ev event.Event) error {
		res, err := m.state.Call(fn, m.payload(ev.Payload))
		if err != nil {
			return err
		}
		if len(res) > 0 && res[0] == lua.LFalse {
			return fmt.Errorf("%s listener returned false", ev.Kind)
		}
		return nil
	})
	if err != nil {
		L.RaiseError("on %s: %v", name, err)
	}
	return 0
}

func (m *Module) payload(p any) lua.LValue {
	L := m.state.L
	switch v := p.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(v)
	case *config.Config:
		return plua.ToLua(L, v.Map())
	case event.RegisterPayload:
		t := L.NewTable()
		t.RawSetString("name", lua.LString(v.Name))
		t.RawSetString("description", lua.LString(v.Description))
		if fn, ok := v.Fn.(runner.TaskFunc); ok && fn != nil {
			t.RawSetString("fn", L.NewFunction(m.callTask(v.Name, fn)))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

// callTask exposes a registered task body to Lua. fn(args...) runs it as a
// basic task with those arguments and raises on failure.
func (m *Module) callTask(name string, fn runner.TaskFunc) lua.LGFunction {
	return func(L *lua.LState) int {
		args := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.CheckString(i))
		}
		ctx := L.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		tc := &runner.Context{
			Context:  ctx,
			Name:     name,
			NameArgs: runner.JoinArgs(append([]string{name}, args...)),
			Args:     args,
			Runner:   m.runner,
		}
		if err := fn(tc); err != nil {
			L.RaiseError("%s: %v", name, err)
		}
		L.Push(lua.LTrue)
		return 1
	}
}
