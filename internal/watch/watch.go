// Package watch reruns work when files change.
//
// A Watcher turns fsnotify notifications for a set of directory trees into
// Events. Debounce coalesces bursts of events into batches, and Loop hands
// each batch to a callback on a single goroutine so reruns never overlap.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dshills/tama/internal/logger"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("path does not exist")
)

// Op is a set of file operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

func (op Op) String() string {
	if op == 0 {
		return "NONE"
	}
	names := []string{"CREATE", "WRITE", "REMOVE", "RENAME", "CHMOD"}
	var s string
	for i, n := range names {
		if op&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += n
		}
	}
	return s
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to one path.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// DefaultIgnore matches editor and VCS noise.
var DefaultIgnore = []string{".git", "*.swp", "*.swx", "*~", "4913", ".DS_Store"}

// Watcher watches directory trees with fsnotify.
type Watcher struct {
	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	paths  map[string]bool
	ignore []string
	logger *log.Logger

	events  chan Event
	errors  chan error
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore replaces the ignore patterns. Patterns are doublestar globs
// matched against the base name and the full slash separated path.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) {
		w.ignore = append([]string(nil), patterns...)
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger.Component(l, "watch")
	}
}

// New starts a watcher with nothing watched.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fsw:     fsw,
		paths:   make(map[string]bool),
		ignore:  DefaultIgnore,
		logger:  logger.Discard(),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add watches path. Directories are watched with all their subdirectories;
// directories created later are added as they appear.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPathNotExist, abs)
		}
		return err
	}
	if !info.IsDir() {
		return w.add(abs)
	}

	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != abs && w.ignored(p) {
			return filepath.SkipDir
		}
		return w.add(p)
	})
}

func (w *Watcher) add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.paths[path] {
		return nil
	}
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	w.paths[path] = true
	return nil
}

// Paths returns the watched paths in sorted order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Events returns the event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(fe)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("dropping watcher error", "err", err)
			}
		}
	}
}

func (w *Watcher) handle(fe fsnotify.Event) {
	op := convertOp(fe.Op)
	if op == 0 || w.ignored(fe.Name) {
		return
	}

	if op.Has(OpCreate) {
		if info, err := os.Stat(fe.Name); err == nil && info.IsDir() {
			if err := w.Add(fe.Name); err != nil {
				w.logger.Warn("watching new directory", "path", fe.Name, "err", err)
			}
		}
	}

	ev := Event{Path: fe.Name, Op: op, Time: time.Now()}
	select {
	case w.events <- ev:
	case <-w.closeCh:
	}
}

func (w *Watcher) ignored(path string) bool {
	slash := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, slash); ok {
			return true
		}
	}
	return false
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
