// Package vfs wraps an afero filesystem with the glob expansion primitive the
// task runner, plugin locator and config aggregator share.
package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Filter restricts which entries Expand returns.
type Filter int

const (
	// Any returns files and directories.
	Any Filter = iota
	// FilesOnly drops directories.
	FilesOnly
	// DirsOnly drops everything but directories.
	DirsOnly
)

// ExpandOptions configures Expand.
type ExpandOptions struct {
	// Cwd is the directory patterns are matched against. Results are relative to it.
	Cwd string

	// Filter restricts results by entry type.
	Filter Filter
}

// ErrBadPattern is returned for malformed glob patterns.
var ErrBadPattern = errors.New("vfs: bad glob pattern")

// FS is the filesystem used by tama components.
type FS struct {
	fs afero.Fs
}

// New wraps an afero filesystem.
func New(fsys afero.Fs) *FS {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FS{fs: fsys}
}

// OS returns an FS backed by the real operating system.
func OS() *FS {
	return New(afero.NewOsFs())
}

// Afero returns the underlying afero filesystem.
func (f *FS) Afero() afero.Fs {
	return f.fs
}

// ReadFile reads a whole file.
func (f *FS) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(f.fs, name)
}

// IsDir reports whether name exists and is a directory.
func (f *FS) IsDir(name string) bool {
	ok, err := afero.IsDir(f.fs, name)
	return err == nil && ok
}

// Exists reports whether name exists.
func (f *FS) Exists(name string) bool {
	ok, err := afero.Exists(f.fs, name)
	return err == nil && ok
}

// Expand returns the paths under opts.Cwd matching patterns, relative to
// opts.Cwd and using forward slashes. Patterns are applied in order; a pattern
// prefixed with "!" removes earlier matches. Order of first appearance is kept
// and duplicates are dropped. A missing Cwd yields no matches.
func (f *FS) Expand(opts ExpandOptions, patterns ...string) ([]string, error) {
	cwd := opts.Cwd
	if cwd == "" {
		cwd = "."
	}
	if abs, err := filepath.Abs(cwd); err == nil {
		cwd = abs
	}
	if !f.IsDir(cwd) {
		return nil, nil
	}

	root := afero.NewIOFS(afero.NewBasePathFs(f.fs, cwd))

	var (
		result []string
		seen   = make(map[string]bool)
	)
	for _, pattern := range patterns {
		exclude := strings.HasPrefix(pattern, "!")
		pattern = strings.TrimPrefix(pattern, "!")
		pattern = strings.TrimPrefix(path.Clean(filepath.ToSlash(pattern)), "./")

		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
		}

		if exclude {
			kept := result[:0]
			for _, match := range result {
				if ok, _ := doublestar.Match(pattern, match); ok {
					delete(seen, match)
					continue
				}
				kept = append(kept, match)
			}
			result = kept
			continue
		}

		matches, err := doublestar.Glob(root, pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q in %s: %w", pattern, cwd, err)
		}
		for _, match := range matches {
			if seen[match] || !keep(root, match, opts.Filter) {
				continue
			}
			seen[match] = true
			result = append(result, match)
		}
	}
	return result, nil
}

func keep(root fs.FS, name string, filter Filter) bool {
	if filter == Any {
		return true
	}
	info, err := fs.Stat(root, name)
	if err != nil {
		return false
	}
	if filter == DirsOnly {
		return info.IsDir()
	}
	return !info.IsDir()
}

// EscapeGlob escapes glob metacharacters so s matches itself literally.
func EscapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
