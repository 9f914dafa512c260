package plugin

import (
	"os"
	"path/filepath"
)

// ModulesDir is the directory name searched for module plugins.
const ModulesDir = "tama_modules"

// PathEnv lists extra global module directories.
const PathEnv = "TAMA_PATH"

// SearchPaths are the ordered directories the locator searches.
type SearchPaths struct {
	// Custom task paths, searched first for <name>.* files.
	Custom []string

	// Module paths, searched for *<name>/tasks directories.
	Modules []string
}

// DefaultModulePaths returns the module search order: the local and
// executable tama_modules directories, then extra, then global paths.
func DefaultModulePaths(extra ...string) []string {
	paths := make([]string, 0, 6+len(extra))

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ModulesDir))
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ModulesDir))
	}
	paths = append(paths, extra...)
	paths = append(paths, GlobalPaths()...)
	return dedupe(paths)
}

// GlobalPaths returns the TAMA_PATH entries followed by ~/.tama_modules and
// ~/.tama_libraries.
func GlobalPaths() []string {
	var paths []string
	for _, p := range filepath.SplitList(os.Getenv(PathEnv)) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".tama_modules"),
			filepath.Join(home, ".tama_libraries"),
		)
	}
	return paths
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
