package plugin

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/event"
	"github.com/dshills/tama/internal/logger"
	"github.com/dshills/tama/internal/vfs"
)

// HandleKind tells a custom task file from a module task directory.
type HandleKind int

const (
	CustomTask HandleKind = iota
	ModuleTasks
)

func (k HandleKind) String() string {
	if k == ModuleTasks {
		return "module"
	}
	return "custom"
}

// Handle is a located plugin.
type Handle struct {
	Name string
	Kind HandleKind
	Path string
}

// Locator searches the filesystem for plugins.
type Locator struct {
	paths  SearchPaths
	fs     *vfs.FS
	hub    *event.Hub
	logger *log.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithLocatorFS sets the filesystem searched.
func WithLocatorFS(fsys *vfs.FS) LocatorOption {
	return func(l *Locator) {
		l.fs = fsys
	}
}

// WithLocatorHub sets the hub load events are published on.
func WithLocatorHub(h *event.Hub) LocatorOption {
	return func(l *Locator) {
		l.hub = h
	}
}

// WithLocatorLogger sets the locator logger.
func WithLocatorLogger(lg *log.Logger) LocatorOption {
	return func(l *Locator) {
		l.logger = logger.Component(lg, "locator")
	}
}

// NewLocator creates a locator over paths.
func NewLocator(paths SearchPaths, opts ...LocatorOption) *Locator {
	l := &Locator{
		paths:  paths,
		fs:     vfs.OS(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Paths returns the search paths.
func (l *Locator) Paths() SearchPaths {
	return l.paths
}

// Locate finds the plugin called name. Custom paths are searched before
// module paths and the first directory with a match wins. A miss returns
// false and no error.
func (l *Locator) Locate(name string) (Handle, bool, error) {
	if name == "" {
		return Handle{}, false, nil
	}
	escaped := vfs.EscapeGlob(name)

	for _, dir := range l.paths.Custom {
		matches, err := l.fs.Expand(vfs.ExpandOptions{Cwd: dir, Filter: vfs.FilesOnly}, "**/"+escaped+".*")
		if err != nil {
			return Handle{}, false, err
		}
		if len(matches) == 0 {
			continue
		}
		h := Handle{Name: name, Kind: CustomTask, Path: absJoin(dir, matches[0])}
		return h, true, l.found(h, event.BeforeLoadCustomTask)
	}

	for _, dir := range l.paths.Modules {
		matches, err := l.fs.Expand(vfs.ExpandOptions{Cwd: dir, Filter: vfs.DirsOnly}, "*"+escaped+"/tasks")
		if err != nil {
			return Handle{}, false, err
		}
		if len(matches) == 0 {
			continue
		}
		h := Handle{Name: name, Kind: ModuleTasks, Path: absJoin(dir, matches[0])}
		return h, true, l.found(h, event.BeforeLoadModuleTasks)
	}

	l.logger.Debug("plugin not found", "plugin", name)
	return Handle{}, false, nil
}

func (l *Locator) found(h Handle, kind event.Kind) error {
	l.logger.Debug("plugin located", "plugin", h.Name, "kind", h.Kind, "path", h.Path)
	if l.hub == nil {
		return nil
	}
	if err := l.hub.Publish(kind, h.Path); err != nil {
		return fmt.Errorf("locating %s: %w", h.Name, err)
	}
	return nil
}

func absJoin(dir, rel string) string {
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
