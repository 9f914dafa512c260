package plugin

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tama/internal/event"
	"github.com/dshills/tama/internal/vfs"
)

func memFS(t *testing.T, files map[string]string, dirs ...string) *vfs.FS {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, mem.MkdirAll(d, 0o755))
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(mem, name, []byte(content), 0o644))
	}
	return vfs.New(mem)
}

func TestLocate(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/custom2/nested/lint.lua":       "",
		"/custom2/other/lint.lua":        "",
		"/custom3/lint.lua":              "",
		"/mods1/tama-lint/tasks/a.lua":   "",
		"/mods2/tama-deploy/tasks/a.lua": "",
		"/mods2/tama-deploy/readme.md":   "",
		"/custom2/weird[1].lua":          "",
		"/custom2/weird1.lua":            "",
	}, "/custom1")

	loc := NewLocator(SearchPaths{
		Custom:  []string{"/custom1", "/missing", "/custom2", "/custom3"},
		Modules: []string{"/mods1", "/mods2"},
	}, WithLocatorFS(fsys))

	tests := []struct {
		name     string
		plugin   string
		wantOK   bool
		wantKind HandleKind
		wantPath string
	}{
		{"first custom dir with a hit wins", "lint", true, CustomTask, "/custom2/nested/lint.lua"},
		{"module directory", "deploy", true, ModuleTasks, "/mods2/tama-deploy/tasks"},
		{"escaped name", "weird[1]", true, CustomTask, "/custom2/weird[1].lua"},
		{"miss", "ghost", false, 0, ""},
		{"empty name", "", false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok, err := loc.Locate(tt.plugin)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.plugin, h.Name)
			assert.Equal(t, tt.wantKind, h.Kind)
			assert.Equal(t, tt.wantPath, h.Path)
		})
	}
}

func TestLocatePublishesBeforeReturning(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/custom/lint.lua":              "",
		"/mods/tama-deploy/tasks/a.lua": "",
	})
	hub := event.NewHub()
	var got []string
	for _, kind := range []event.Kind{event.BeforeLoadCustomTask, event.BeforeLoadModuleTasks} {
		_, err := hub.SubscribeFunc(kind, func(ev event.Event) error {
			got = append(got, ev.Kind.String()+" "+ev.Payload.(string))
			return nil
		})
		require.NoError(t, err)
	}

	loc := NewLocator(SearchPaths{Custom: []string{"/custom"}, Modules: []string{"/mods"}},
		WithLocatorFS(fsys), WithLocatorHub(hub))

	_, ok, err := loc.Locate("lint")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = loc.Locate("deploy")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = loc.Locate("ghost")
	require.NoError(t, err)
	require.False(t, ok)

	assert.Equal(t, []string{
		"beforeLoadCustomTask /custom/lint.lua",
		"beforeLoadModuleTasks /mods/tama-deploy/tasks",
	}, got)
}

func TestLocateListenerError(t *testing.T) {
	fsys := memFS(t, map[string]string{"/custom/lint.lua": ""})
	hub := event.NewHub()
	boom := errors.New("boom")
	_, err := hub.SubscribeFunc(event.BeforeLoadCustomTask, func(event.Event) error { return boom })
	require.NoError(t, err)

	loc := NewLocator(SearchPaths{Custom: []string{"/custom"}}, WithLocatorFS(fsys), WithLocatorHub(hub))
	_, _, err = loc.Locate("lint")
	assert.ErrorIs(t, err, boom)
}

func TestDefaultModulePaths(t *testing.T) {
	t.Setenv(PathEnv, "/g1"+string(os.PathListSeparator)+"/g2")
	t.Setenv("HOME", "/home/me")

	paths := DefaultModulePaths("/extra")
	require.GreaterOrEqual(t, len(paths), 5)

	idx := func(p string) int {
		for i, v := range paths {
			if v == p {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx("/extra"), idx("/g1"))
	assert.Less(t, idx("/g1"), idx("/g2"))
	assert.Less(t, idx("/g2"), idx("/home/me/.tama_modules"))
	assert.Less(t, idx("/home/me/.tama_modules"), idx("/home/me/.tama_libraries"))
	assert.Contains(t, paths[0], ModulesDir)
}
