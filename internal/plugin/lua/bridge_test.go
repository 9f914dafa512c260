package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestToGo(t *testing.T) {
	s := NewState()
	defer s.Close()

	got, err := s.ExecString("v.lua", `
		local cyc = {}
		cyc.self = cyc
		return {
			list = {"a", "b"},
			map = {x = 1, y = 1.5},
			empty = {},
			sparse = {[1] = "a", [3] = "c"},
			fn = function() end,
			cyc = cyc,
		}`)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"list":   []any{"a", "b"},
		"map":    map[string]any{"x": int64(1), "y": 1.5},
		"empty":  map[string]any{},
		"sparse": map[string]any{"1": "a", "3": "c"},
		"fn":     nil,
		"cyc":    map[string]any{"self": nil},
	}, ToGo(got[0]))
}

func TestToLuaRoundTrip(t *testing.T) {
	s := NewState()
	defer s.Close()

	type target struct {
		Src    []string `json:"src"`
		Hidden string   `json:"-"`
		Force  bool
	}
	in := map[string]any{
		"n":      int64(3),
		"target": target{Src: []string{"a"}, Hidden: "x", Force: true},
		"ptr":    &target{},
	}

	out := ToGo(ToLua(s.L, in))
	assert.Equal(t, map[string]any{
		"n":      int64(3),
		"target": map[string]any{"src": []any{"a"}, "Force": true},
		"ptr":    map[string]any{"Force": false},
	}, out)
}

func TestStringList(t *testing.T) {
	s := NewState()
	defer s.Close()

	got, err := s.ExecString("l.lua", `return {"a", "b"}, {"a", 1}`)
	require.NoError(t, err)

	list, err := StringList(got[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)

	_, err = StringList(got[1])
	assert.Error(t, err)
	_, err = StringList(lua.LString("a"))
	assert.Error(t, err)

	assert.False(t, Truthy(lua.LNil))
	assert.False(t, Truthy(lua.LFalse))
	assert.True(t, Truthy(lua.LNumber(0)))
}
