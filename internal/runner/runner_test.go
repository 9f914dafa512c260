package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tama/internal/vfs"
)

func noop(*Context) error { return nil }

func TestTaskPlusArgsLongestPrefix(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterTask("lint", "", noop))
	require.NoError(t, r.RegisterTask("lint:src", "", noop))

	tests := []struct {
		name     string
		wantTask string
		wantArgs []string
	}{
		{"lint", "lint", []string{}},
		{"lint:src:fast", "lint:src", []string{"fast"}},
		{"lint:docs", "lint", []string{"docs"}},
		{`lint\:src`, "lint:src", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thing, err := r.TaskPlusArgs(tt.name)
			require.NoError(t, err)
			require.NotNil(t, thing.Task)
			assert.Equal(t, tt.wantTask, thing.Task.Name)
			assert.Equal(t, tt.wantArgs, thing.Args)
			assert.Equal(t, tt.name, thing.NameArgs)
		})
	}
}

func TestTaskPlusArgsMiss(t *testing.T) {
	r := New()
	thing, err := r.TaskPlusArgs("ghost:a")
	require.NoError(t, err)
	assert.Nil(t, thing.Task)
	assert.Equal(t, []string{"ghost", "a"}, thing.Args)
}

func TestRegisterInvalid(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.RegisterTask("", "", noop), ErrInvalidTask)
	assert.ErrorIs(t, r.RegisterTask("x", "", nil), ErrInvalidTask)
	assert.ErrorIs(t, r.RegisterMultiTask("x", "", nil), ErrInvalidTask)
}

func TestRunBasicTask(t *testing.T) {
	r := New()
	var got *Context
	require.NoError(t, r.RegisterTask("build", "Build it", func(tc *Context) error {
		got = tc
		return nil
	}))

	require.NoError(t, r.Run(context.Background(), "build:fast:x"))
	require.NotNil(t, got)
	assert.Equal(t, "build", got.Name)
	assert.Equal(t, "build:fast:x", got.NameArgs)
	assert.Equal(t, []string{"fast", "x"}, got.Args)
}

func TestRunErrors(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	require.NoError(t, r.RegisterTask("fail", "", func(*Context) error { return boom }))
	require.NoError(t, r.RegisterTask("panics", "", func(*Context) error { panic("oops") }))

	err := r.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = r.Run(context.Background(), "fail")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrTaskFailed)
	var terr *TaskError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "fail", terr.Task)

	err = r.Run(context.Background(), "panics")
	assert.ErrorIs(t, err, ErrTaskFailed)
	assert.Contains(t, err.Error(), "oops")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx, "fail"), context.Canceled)
}

func TestRunMultiTaskTargets(t *testing.T) {
	r := New()
	r.InitConfig(map[string]any{
		"copy": map[string]any{
			"options": map[string]any{"mode": "fast", "verbose": false},
			"_meta":   "skip me",
			"b":       map[string]any{"src": "b/*", "options": map[string]any{"verbose": true}},
			"a":       map[string]any{"src": "a/*"},
		},
	})

	type call struct {
		target  string
		args    []string
		data    any
		options map[string]any
	}
	var calls []call
	require.NoError(t, r.RegisterMultiTask("copy", "Copy files", func(tc *Context) error {
		calls = append(calls, call{tc.Target, tc.Args, tc.Data, tc.Options})
		return nil
	}))

	task, ok := r.Task("copy")
	require.True(t, ok)
	assert.True(t, task.Multi)
	assert.Equal(t, []string{"a", "b"}, r.Targets("copy"))

	require.NoError(t, r.Run(context.Background(), "copy"))
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].target)
	assert.Equal(t, map[string]any{"mode": "fast", "verbose": false}, calls[0].options)
	assert.Equal(t, "b", calls[1].target)
	assert.Equal(t, map[string]any{"mode": "fast", "verbose": true}, calls[1].options)

	calls = nil
	require.NoError(t, r.Run(context.Background(), "copy:b:extra"))
	require.Len(t, calls, 1)
	assert.Equal(t, "b", calls[0].target)
	assert.Equal(t, []string{"extra"}, calls[0].args)
	assert.Equal(t, map[string]any{"src": "b/*", "options": map[string]any{"verbose": true}}, calls[0].data)

	assert.ErrorIs(t, r.Run(context.Background(), "copy:zzz"), ErrTargetNotFound)
	assert.ErrorIs(t, r.Run(context.Background(), "copy:_meta"), ErrTargetNotFound)
}

func TestRunMultiTaskWithoutTargets(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterMultiTask("empty", "", noop))
	assert.ErrorIs(t, r.Run(context.Background(), "empty"), ErrNoTargets)
}

func TestRegisterAlias(t *testing.T) {
	r := New()
	var order []string
	for _, name := range []string{"a", "b"} {
		require.NoError(t, r.RegisterTask(name, "", func(tc *Context) error {
			order = append(order, tc.NameArgs)
			return nil
		}))
	}
	require.NoError(t, r.RegisterAlias("default", "", "a", "b:x"))

	require.NoError(t, r.Run(context.Background(), "default"))
	assert.Equal(t, []string{"a", "b:x"}, order)

	task, _ := r.Task("default")
	assert.Equal(t, []string{"a", "b:x"}, task.Alias)
	assert.Equal(t, `Alias for "a", "b:x".`, task.Description)

	assert.ErrorIs(t, r.RegisterAlias("empty", ""), ErrInvalidTask)
}

func TestInstallIsIdempotent(t *testing.T) {
	r := New()
	wraps := 0
	wrap := func(cur Entries) Entries {
		wraps++
		return Entries{RegisterTask: func(name, desc string, fn TaskFunc) error {
			return cur.RegisterTask(name+"!", desc, fn)
		}}
	}

	assert.True(t, r.Install("bang", wrap))
	assert.False(t, r.Install("bang", wrap))
	assert.True(t, r.Installed("bang"))
	assert.Equal(t, 1, wraps)

	require.NoError(t, r.RegisterTask("x", "", noop))
	assert.True(t, r.Exists("x!"))
	assert.False(t, r.Exists("x!!"))
}

type dirLoader struct {
	dirs []string
}

func (l *dirLoader) LoadDir(dir string) error {
	l.dirs = append(l.dirs, dir)
	return nil
}

func TestLoadTasks(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/mods/x/tasks", 0o755))
	r := New(WithFS(vfs.New(mem)))

	assert.ErrorIs(t, r.LoadTasks("/mods/x/tasks"), ErrNoTaskLoader)

	l := &dirLoader{}
	r.SetTaskLoader(l)
	require.NoError(t, r.LoadTasks("/mods/x/tasks"))
	assert.Equal(t, []string{"/mods/x/tasks"}, l.dirs)
	assert.Error(t, r.LoadTasks("/mods/missing"))
}

func TestConfigAccess(t *testing.T) {
	r := New()
	src := map[string]any{"lint": map[string]any{"src": []any{"a"}}}
	r.InitConfig(src)
	src["lint"] = "mutated"

	v, ok := r.ConfigGet("lint.src")
	require.True(t, ok)
	assert.Equal(t, []any{"a"}, v)

	r.ConfigSet("lint.opts.x", 1)
	v, ok = r.ConfigGet("lint.opts.x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestBeginSource(t *testing.T) {
	r := New()
	end := r.BeginSource("/tasks/a.lua")
	require.NoError(t, r.RegisterTask("a", "", noop))
	end()
	require.NoError(t, r.RegisterTask("b", "", noop))

	a, _ := r.Task("a")
	b, _ := r.Task("b")
	assert.Equal(t, "/tasks/a.lua", a.Source)
	assert.Empty(t, b.Source)

	names := []string{}
	for _, task := range r.Tasks() {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}
