package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tama/internal/tama"
)

const greetPlugin = `
local tama = require("tama")
tama.registerTask("hello", "Say hello", function(t)
	tama.log.writeln("hello " .. (t.args[1] or "nobody"))
end)
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func project(t *testing.T) string {
	return writeProject(t, map[string]string{
		"tama.toml": `
configPath = "config"
customTaskPaths = ["tasks"]

[taskMaps]
hi = "greet:hello"
`,
		"config/build.json": `{"dist": {}}`,
		"tasks/greet.lua":   greetPlugin,
		"listen.lua":        `require("tama").registerTask("default", {"hi:world"})`,
	})
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{stdout: &out, stderr: &errOut, newTama: tama.New}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	code = report(&errOut, cmd.ExecuteContext(context.Background()))
	return code, out.String(), errOut.String()
}

func TestRunThroughTaskMap(t *testing.T) {
	dir := project(t)

	code, _, stderr := execute(t, "-c", filepath.Join(dir, "tama.toml"), "hi:world")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "hello world")
}

func TestRunDefaultTask(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(dir, "tama.toml")
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, append([]byte(`eventListeners = ["listen.lua"]`+"\n"), data...), 0o644))

	code, _, stderr := execute(t, "-c", cfg)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "hello world")
}

func TestRunMissingTask(t *testing.T) {
	dir := project(t)

	code, _, stderr := execute(t, "-c", filepath.Join(dir, "tama.toml"), "ghost")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "'ghost' task cannot be loaded or is missing!")
	assert.Contains(t, stderr, "Missing or corrupted plugin")
}

func TestConfigErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{"tama.toml": `configPath = "missing"`})

	code, _, stderr := execute(t, "-c", filepath.Join(dir, "tama.toml"), "build")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "configPath")

	code, _, _ = execute(t, "-c", filepath.Join(dir, "nope.toml"), "build")
	assert.Equal(t, 2, code)
}

func TestResolveCommand(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(dir, "tama.toml")

	code, stdout, _ := execute(t, "-c", cfg, "resolve", "hi:there:now")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "greet")
	assert.Contains(t, stdout, "hello")
	assert.Contains(t, stdout, "there, now")
	assert.Contains(t, stdout, "hello:there:now")

	code, stdout, _ = execute(t, "-c", cfg, "resolve", "build")
	require.Equal(t, 0, code)
	assert.Equal(t, "no task map for \"build\"\n", stdout)
}

func TestTasksCommand(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(dir, "tama.toml")

	code, stdout, _ := execute(t, "-c", cfg, "tasks")
	require.Equal(t, 0, code)
	assert.Equal(t, "no tasks registered\n", stdout)

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, append([]byte(`eventListeners = ["listen.lua"]`+"\n"), data...), 0o644))

	code, stdout, _ = execute(t, "-c", cfg, "tasks")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "default")
	assert.Contains(t, stdout, "alias")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand(Options{Stdout: &out, Build: BuildInfo{Version: "1.2.3", Commit: "abc", Date: "2026-01-01"}})
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "tama 1.2.3 (abc, 2026-01-01)\n", out.String())
}

func TestRootFlags(t *testing.T) {
	cmd := NewRootCommand(Options{})
	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("json-logs"))
}
