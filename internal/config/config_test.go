package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tama/internal/vfs"
)

func testFS(t *testing.T, files map[string]string, dirs ...string) *vfs.FS {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, dir := range dirs {
		require.NoError(t, mem.MkdirAll(dir, 0o755))
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(mem, name, []byte(content), 0o644))
	}
	return vfs.New(mem)
}

func TestLoadTOML(t *testing.T) {
	fsys := testFS(t, map[string]string{
		"/proj/tama.toml": `
configPath = "config"
customTaskPaths = ["tasks"]
basicAsMultiTask = ["lint", "test"]
luaTimeout = "5s"

[taskMaps]
"deploy:prod" = "deployer:release"
`,
	}, "/proj/config", "/proj/tasks")

	cfg, err := Load(WithFS(fsys), WithBaseDir("/proj"), WithEnv(false))
	require.NoError(t, err)

	assert.Equal(t, "/proj/tama.toml", cfg.File)
	assert.Equal(t, "/proj/config", cfg.ConfigPath)
	assert.Equal(t, []string{"/proj/tasks"}, cfg.CustomTaskPaths)
	assert.Equal(t, map[string]string{"deploy:prod": "deployer:release"}, cfg.TaskMaps)
	assert.Equal(t, MultiTaskSetting{Names: []string{"lint", "test"}}, cfg.BasicAsMultiTask)
	assert.Equal(t, 5*time.Second, cfg.LuaTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAMLBoolMulti(t *testing.T) {
	fsys := testFS(t, map[string]string{
		"/proj/tama.yaml": "configPath: /proj/config\nbasicAsMultiTask: true\nlogLevel: debug\n",
	}, "/proj/config")

	cfg, err := Load(WithFS(fsys), WithBaseDir("/proj"), WithEnv(false))
	require.NoError(t, err)
	assert.True(t, cfg.BasicAsMultiTask.All)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Zero(t, cfg.LuaTimeout)
}

func TestLoadPrecedence(t *testing.T) {
	fsys := testFS(t, map[string]string{
		"/proj/tama.json": `{"configPath": "/proj/a", "logLevel": "warn"}`,
	}, "/proj/a", "/proj/b")

	t.Setenv("TAMA_CONFIG_PATH", "/proj/b")
	t.Setenv("TAMA_LOG_LEVEL", "error")

	cfg, err := Load(WithFS(fsys), WithBaseDir("/proj"), WithOverrides(map[string]any{"logLevel": "debug"}))
	require.NoError(t, err)
	assert.Equal(t, "/proj/b", cfg.ConfigPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadWithoutFile(t *testing.T) {
	fsys := testFS(t, nil, "/proj/config")

	cfg, err := Load(WithFS(fsys), WithBaseDir("/proj"), WithEnv(false),
		WithOverrides(map[string]any{"configPath": "config"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "/proj/config", cfg.ConfigPath)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		opts    []Option
		wantErr error
		field   string
	}{
		{
			name:    "explicit file missing",
			opts:    []Option{WithFile("missing.toml")},
			wantErr: ErrFileNotFound,
		},
		{
			name:    "configPath missing",
			files:   map[string]string{"/proj/tama.toml": `logLevel = "info"`},
			wantErr: ErrInvalidConfigPath,
			field:   "configPath",
		},
		{
			name:    "configPath not a directory",
			files:   map[string]string{"/proj/tama.toml": `configPath = "tama.toml"`},
			wantErr: ErrInvalidConfigPath,
			field:   "configPath",
		},
		{
			name: "empty task map target",
			files: map[string]string{"/proj/tama.toml": `configPath = "config"
[taskMaps]
x = ""`},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "bad log level",
			files:   map[string]string{"/proj/tama.toml": "configPath = \"config\"\nlogLevel = \"loud\""},
			wantErr: ErrValidationFailed,
			field:   "logLevel",
		},
		{
			name:    "bad basicAsMultiTask",
			files:   map[string]string{"/proj/tama.json": `{"configPath": "config", "basicAsMultiTask": [1]}`},
			wantErr: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testFS(t, tt.files, "/proj/config")
			opts := append([]Option{WithFS(fsys), WithBaseDir("/proj"), WithEnv(false)}, tt.opts...)

			_, err := Load(opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			if tt.field != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestMultiTaskSettingHook(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want MultiTaskSetting
	}{
		{"nil", nil, MultiTaskSetting{}},
		{"true", true, MultiTaskSetting{All: true}},
		{"false string", "false", MultiTaskSetting{}},
		{"comma list", "a, b", MultiTaskSetting{Names: []string{"a", "b"}}},
		{"list", []any{"a"}, MultiTaskSetting{Names: []string{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromMap(map[string]any{"basicAsMultiTask": tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.BasicAsMultiTask)
		})
	}
}

func TestConfigMap(t *testing.T) {
	cfg := &Config{
		ConfigPath:       "/proj/config",
		CustomTaskPaths:  []string{"/proj/tasks"},
		TaskMaps:         map[string]string{"hi": "greet:hello"},
		BasicAsMultiTask: MultiTaskSetting{Names: []string{"copy"}},
		LogLevel:         "debug",
		LuaTimeout:       5 * time.Second,
	}

	assert.Equal(t, map[string]any{
		"configPath":       "/proj/config",
		"extraPluginPaths": []any{},
		"customTaskPaths":  []any{"/proj/tasks"},
		"taskMaps":         map[string]any{"hi": "greet:hello"},
		"basicAsMultiTask": []any{"copy"},
		"eventListeners":   []any{},
		"logLevel":         "debug",
		"luaTimeout":       "5s",
	}, cfg.Map())

	cfg.BasicAsMultiTask = MultiTaskSetting{All: true}
	assert.Equal(t, true, cfg.Map()["basicAsMultiTask"])

	back, err := FromMap(cfg.Map())
	require.NoError(t, err)
	assert.Equal(t, cfg.ConfigPath, back.ConfigPath)
	assert.Equal(t, cfg.TaskMaps, back.TaskMaps)
	assert.True(t, back.BasicAsMultiTask.All)
	assert.Equal(t, cfg.LuaTimeout, back.LuaTimeout)
}
