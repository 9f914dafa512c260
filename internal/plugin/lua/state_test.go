package lua

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tama/internal/vfs"
)

func TestExecFileReturnsChunkValues(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/tasks/a.lua", []byte(`return 1, "two"`), 0o644))

	s := NewState(WithFS(vfs.New(mem)))
	defer s.Close()

	got, err := s.ExecFile("/tasks/a.lua")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, lua.LNumber(1), got[0])
	assert.Equal(t, lua.LString("two"), got[1])

	_, err = s.ExecFile("/tasks/missing.lua")
	assert.Error(t, err)
}

func TestExecStringErrors(t *testing.T) {
	s := NewState()
	defer s.Close()

	_, err := s.ExecString("syntax.lua", "return (")
	assert.Error(t, err)

	_, err = s.ExecString("runtime.lua", `error("nope")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestCall(t *testing.T) {
	s := NewState()
	defer s.Close()

	got, err := s.ExecString("fn.lua", `return function(a, b) return a + b end`)
	require.NoError(t, err)

	res, err := s.Call(got[0], lua.LNumber(2), lua.LNumber(3))
	require.NoError(t, err)
	assert.Equal(t, []lua.LValue{lua.LNumber(5)}, res)

	_, err = s.Call(lua.LString("x"))
	assert.ErrorIs(t, err, ErrNotFunction)
}

func TestExecutionTimeout(t *testing.T) {
	s := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	_, err := s.ExecString("loop.lua", `while true do end`)
	assert.ErrorIs(t, err, ErrExecutionTimeout)

	// The state stays usable after a timeout.
	got, err := s.ExecString("ok.lua", `return true`)
	require.NoError(t, err)
	assert.Equal(t, []lua.LValue{lua.LTrue}, got)
}

func TestCallContext(t *testing.T) {
	s := NewState(WithExecutionTimeout(time.Millisecond))
	defer s.Close()
	require.NoError(t, s.L.DoString(`
		function slow()
			local n = 0
			for i = 1, 3000000 do n = n + i end
			return n
		end
		function spin() while true do end end
	`))

	_, err := s.Call(s.L.GetGlobal("slow"))
	assert.ErrorIs(t, err, ErrExecutionTimeout)

	res, err := s.CallContext(context.Background(), s.L.GetGlobal("slow"))
	require.NoError(t, err)
	require.Len(t, res, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.CallContext(ctx, s.L.GetGlobal("spin"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s.L.Context())

	_, err = s.CallContext(context.Background(), lua.LString("x"))
	assert.ErrorIs(t, err, ErrNotFunction)
}

func TestSandbox(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os"} {
		got, err := s.ExecString("probe.lua", "return "+name)
		require.NoError(t, err)
		assert.Equal(t, lua.LNil, got[0], name)
	}

	_, err := s.ExecString("req.lua", `return require("os")`)
	assert.Error(t, err)

	got, err := s.ExecString("req.lua", `return require("string").upper("a")`)
	require.NoError(t, err)
	assert.Equal(t, lua.LString("A"), got[0])
}

func TestPreload(t *testing.T) {
	s := NewState()
	defer s.Close()

	s.Preload("greet", func(L *lua.LState) int {
		mod := L.NewTable()
		mod.RawSetString("name", lua.LString("tama"))
		L.Push(mod)
		return 1
	})

	got, err := s.ExecString("use.lua", `return require("greet").name`)
	require.NoError(t, err)
	assert.Equal(t, lua.LString("tama"), got[0])
	assert.True(t, s.sandbox.Allowed("greet"))
}

func TestClosedState(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.IsClosed())

	_, err := s.ExecString("x.lua", "return 1")
	assert.ErrorIs(t, err, ErrStateClosed)
}
